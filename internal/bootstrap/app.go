package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"advisorbot/internal/app"
	"advisorbot/internal/backend"
	"advisorbot/internal/config"
	"advisorbot/internal/events"
	"advisorbot/internal/model"
	"advisorbot/internal/observability"
	databaseClient "advisorbot/internal/platform/database"
	rabbitmqClient "advisorbot/internal/platform/rabbitmq"
	redisClient "advisorbot/internal/platform/redis"
	"advisorbot/internal/repository"
	"advisorbot/internal/storage"
	"advisorbot/internal/worker"
)

type Options struct {
	// StartWorker runs the transcript archive consumer in this process.
	StartWorker bool
}

type App struct {
	Config *config.Config
	Logger *zap.Logger

	DB     *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection
	Store  storage.Store

	Backend      *backend.Client
	Credentials  *app.Credentials
	Sessions     *app.SessionController
	Synchronizer *app.Synchronizer
	Exchange     *app.ExchangeService
	Account      *app.AccountService
	Preferences  *app.Preferences
	Transcripts  *repository.TranscriptRepository

	TranscriptWorker *worker.TranscriptWorker

	StartedAt time.Time
}

func New(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	a, err := Build(ctx, cfg, logger, opts)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return a, nil
}

// Build wires every component from cfg. Resources opened before a failure
// are closed.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger, StartedAt: time.Now()}
	if err := a.build(ctx, opts); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context, opts Options) error {
	cfg := a.Config

	if cfg.NeedsDatabase() {
		db, err := databaseClient.New(ctx, cfg)
		if err != nil {
			return err
		}
		a.DB = db
		if err := db.AutoMigrate(&model.KVEntry{}, &model.Transcript{}); err != nil {
			return fmt.Errorf("auto migrate tables failed: %w", err)
		}
		a.Transcripts = repository.NewTranscriptRepository(db)
	}

	switch cfg.Storage.Backend {
	case config.StorageDatabase:
		a.Store = storage.NewSQLStore(repository.NewKVRepository(a.DB))
	case config.StorageRedis:
		client, err := redisClient.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		a.Redis = client
		a.Store = storage.NewRedisStore(client, cfg.Storage.KeyPrefix)
	default:
		a.Store = storage.NewMemoryStore()
	}

	var publisher app.ExchangePublisher
	if cfg.RabbitMQ.URL != "" {
		conn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.ExchangeQueue)
		if err != nil {
			return err
		}
		a.MQConn = conn
		publisher = events.NewPublisher(conn, cfg.RabbitMQ.ExchangeQueue)

		if opts.StartWorker {
			a.TranscriptWorker = worker.NewTranscriptWorker(conn, a.Transcripts, cfg.RabbitMQ.ExchangeQueue, a.Logger)
			if err := a.TranscriptWorker.Start(ctx); err != nil {
				return fmt.Errorf("start transcript worker failed: %w", err)
			}
		}
	}

	a.Backend = backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.ChatPath, cfg.BackendTimeout())
	a.Credentials = app.NewCredentials(a.Store)
	a.Preferences = app.NewPreferences(a.Store)

	sessions, err := app.NewSessionController(ctx, app.NewSessionStore(a.Store, a.Logger), a.Logger)
	if err != nil {
		return err
	}
	a.Sessions = sessions
	a.Synchronizer = app.NewSynchronizer(a.Backend, sessions, a.Logger)
	a.Exchange = app.NewExchangeService(a.Backend, sessions, a.Credentials, publisher, a.Logger)
	a.Account = app.NewAccountService(a.Backend, a.Credentials, a.Synchronizer, a.Logger)

	a.Logger.Info("advisorbot ready",
		zap.String("backend", cfg.Backend.BaseURL),
		zap.String("storage", cfg.Storage.Backend),
		zap.Bool("events", publisher != nil),
	)
	return nil
}

// EventsEnabled reports whether completed exchanges are published.
func (a *App) EventsEnabled() bool {
	return a.MQConn != nil
}

func (a *App) Close() error {
	var closeErr error
	if a.TranscriptWorker != nil {
		a.TranscriptWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return closeErr
}
