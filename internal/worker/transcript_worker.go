package worker

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"advisorbot/internal/events"
	"advisorbot/internal/model"
	"advisorbot/internal/platform/rabbitmq"
)

type TranscriptSink interface {
	Create(ctx context.Context, transcript *model.Transcript) error
}

// TranscriptWorker archives exchange events into the transcript table.
type TranscriptWorker struct {
	conn      *amqp.Connection
	sink      TranscriptSink
	queueName string
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewTranscriptWorker(conn *amqp.Connection, sink TranscriptSink, queueName string, logger *zap.Logger) *TranscriptWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptWorker{
		conn:      conn,
		sink:      sink,
		queueName: queueName,
		logger:    logger,
	}
}

func (w *TranscriptWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if _, err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.Handle(workerCtx, d.Body); err != nil {
					w.logger.Warn("archive exchange failed", zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	w.logger.Info("transcript worker started", zap.String("queue", w.queueName))
	return nil
}

// Handle stores one delivery body as a transcript row.
func (w *TranscriptWorker) Handle(ctx context.Context, body []byte) error {
	event, err := events.Decode(body)
	if err != nil {
		return err
	}
	return w.sink.Create(ctx, &model.Transcript{
		SessionID:  event.SessionID,
		Email:      event.Email,
		Query:      event.Query,
		Reply:      event.Reply,
		Failed:     event.Failed,
		OccurredAt: event.OccurredAt,
	})
}

func (w *TranscriptWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
