package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"catalog/internal/config"
	"catalog/internal/logger"

	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Worker consumes job events from Kafka and runs them one at a time.
type Worker struct {
	logger  *logger.Logger
	reader  messageReader
	handler Handler
}

func New(cfg *config.Config, logger *logger.Logger, handler Handler) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokerList(),
		GroupID:        cfg.KafkaGroupID,
		Topic:          cfg.KafkaTopic,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return &Worker{
		logger:  logger,
		reader:  reader,
		handler: handler,
	}
}

// Start blocks until ctx is cancelled or the reader is closed.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Worker started, listening for events...")

	for {
		if ctx.Err() != nil {
			return
		}

		readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		message, err := w.reader.ReadMessage(readCtx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				continue
			}
			// kafka-go returns io.EOF once the reader is closed.
			if errors.Is(err, io.EOF) {
				return
			}
			w.logger.Error("Failed to read message: %v", err)
			continue
		}

		w.logger.Debug("Received message: %s", string(message.Value))
		w.handle(ctx, message.Value)
	}
}

func (w *Worker) handle(ctx context.Context, value []byte) {
	var event Event
	if err := json.Unmarshal(value, &event); err != nil {
		w.logger.Error("Failed to parse event: %v", err)
		return
	}

	if err := w.handler.Process(ctx, event); err != nil {
		w.logger.Error("Failed to process event %s: %v", event.Type, err)
		return
	}

	w.logger.Debug("Event %s processed successfully", event.Type)
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.reader.Close()
}
