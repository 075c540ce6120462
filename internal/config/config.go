package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const DefaultBackendBaseURL = "http://localhost:5000"

const (
	StorageDatabase = "database"
	StorageRedis    = "redis"
	StorageMemory   = "memory"

	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	App      AppConfig      `toml:"app"`
	Backend  BackendConfig  `toml:"backend"`
	Storage  StorageConfig  `toml:"storage"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
	Log      LogConfig      `toml:"log"`
}

type AppConfig struct {
	Name    string `toml:"name"`
	Env     string `toml:"env"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	GinMode string `toml:"gin_mode"`
}

// BackendConfig points at the external advising API. BaseURL is resolved
// once here and injected into every network-calling component.
type BackendConfig struct {
	BaseURL        string `toml:"base_url"`
	ChatPath       string `toml:"chat_path"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type StorageConfig struct {
	Backend   string `toml:"backend"`
	KeyPrefix string `toml:"key_prefix"`
}

type DatabaseConfig struct {
	Driver     string `toml:"driver"`
	SQLitePath string `toml:"sqlite_path"`
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	User       string `toml:"user"`
	Password   string `toml:"password"`
	DB         string `toml:"db"`
	Params     string `toml:"params"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// RabbitMQConfig enables exchange events when URL is set.
type RabbitMQConfig struct {
	URL           string `toml:"url"`
	ExchangeQueue string `toml:"exchange_queue"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	if getEnv("APP_ENV", "") != "production" {
		envFile := getEnv("ENV_FILE", ".env")
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("load env file failed: %w", err)
			}
		}
	}

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	cfg.Backend.BaseURL = ResolveBaseURL(cfg.Backend.BaseURL)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolveBaseURL applies the single fallback rule for the backend address.
func ResolveBaseURL(raw string) string {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if raw == "" {
		return DefaultBackendBaseURL
	}
	return raw
}

func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("%w: app.port %d out of range", ErrInvalidConfig, c.App.Port)
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: backend.base_url %q is not an http(s) url", ErrInvalidConfig, c.Backend.BaseURL)
	}
	switch c.Storage.Backend {
	case StorageDatabase, StorageRedis, StorageMemory:
	default:
		return fmt.Errorf("%w: unknown storage.backend %q", ErrInvalidConfig, c.Storage.Backend)
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverMySQL:
	default:
		return fmt.Errorf("%w: unknown database.driver %q", ErrInvalidConfig, c.Database.Driver)
	}
	return nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DB,
		c.Database.Params,
	)
}

// NeedsDatabase reports whether any component opens the gorm database.
func (c *Config) NeedsDatabase() bool {
	return c.Storage.Backend == StorageDatabase || c.RabbitMQ.URL != ""
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "advisorbot",
			Env:     "dev",
			Host:    "127.0.0.1",
			Port:    8080,
			GinMode: "debug",
		},
		Backend: BackendConfig{
			BaseURL:        DefaultBackendBaseURL,
			ChatPath:       "/chat",
			TimeoutSeconds: 90,
		},
		Storage: StorageConfig{
			Backend:   StorageDatabase,
			KeyPrefix: "advisorbot",
		},
		Database: DatabaseConfig{
			Driver:     DriverSQLite,
			SQLitePath: "data/advisorbot.db",
			Host:       "127.0.0.1",
			Port:       3306,
			User:       "root",
			DB:         "advisorbot",
			Params:     "parseTime=true&loc=Local&charset=utf8mb4",
		},
		Redis: RedisConfig{
			Addr: "127.0.0.1:6379",
		},
		RabbitMQ: RabbitMQConfig{
			ExchangeQueue: "advisor.exchange.completed",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)

	cfg.Backend.BaseURL = getEnv("BACKEND_BASE_URL", cfg.Backend.BaseURL)
	cfg.Backend.ChatPath = getEnv("BACKEND_CHAT_PATH", cfg.Backend.ChatPath)
	cfg.Backend.TimeoutSeconds = getEnvAsInt("BACKEND_TIMEOUT_SECONDS", cfg.Backend.TimeoutSeconds)

	cfg.Storage.Backend = getEnv("STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.KeyPrefix = getEnv("STORAGE_KEY_PREFIX", cfg.Storage.KeyPrefix)

	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.SQLitePath = getEnv("SQLITE_PATH", cfg.Database.SQLitePath)
	cfg.Database.Host = getEnv("MYSQL_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvAsInt("MYSQL_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("MYSQL_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("MYSQL_PASSWORD", cfg.Database.Password)
	cfg.Database.DB = getEnv("MYSQL_DB", cfg.Database.DB)
	cfg.Database.Params = getEnv("MYSQL_PARAMS", cfg.Database.Params)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)

	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.ExchangeQueue = getEnv("RABBITMQ_EXCHANGE_QUEUE", cfg.RabbitMQ.ExchangeQueue)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
