package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"catalog/internal/logger"
	"catalog/internal/worker/processors"

	"github.com/segmentio/kafka-go"
)

type Event = processors.Event

// Handler runs one event. *processors.EventProcessor satisfies it.
type Handler interface {
	Process(ctx context.Context, event Event) error
}

// Dispatcher hands a background job to whoever runs it.
type Dispatcher interface {
	Dispatch(ctx context.Context, event Event) error
	Close() error
}

// LocalDispatcher runs each event in its own goroutine, detached from the
// caller's context.
type LocalDispatcher struct {
	handler Handler
	logger  *logger.Logger
}

func NewLocalDispatcher(handler Handler, logger *logger.Logger) *LocalDispatcher {
	return &LocalDispatcher{handler: handler, logger: logger}
}

func (d *LocalDispatcher) Dispatch(_ context.Context, event Event) error {
	go func() {
		if err := d.handler.Process(context.Background(), event); err != nil {
			d.logger.Error("Background job %s failed: %v", event.Type, err)
		}
	}()
	return nil
}

func (d *LocalDispatcher) Close() error { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaDispatcher publishes events for cmd/worker to consume.
type KafkaDispatcher struct {
	writer messageWriter
	topic  string
	logger *logger.Logger
}

func NewKafkaDispatcher(brokers []string, topic string, logger *logger.Logger) *KafkaDispatcher {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	logger.Info("Kafka dispatcher initialized topic=%s brokers=%v", topic, brokers)
	return &KafkaDispatcher{writer: w, topic: topic, logger: logger}
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(event.Type),
		Value: data,
	}
	if err := d.writer.WriteMessages(ctx, msg); err != nil {
		d.logger.Error("Failed to publish %s to %s: %v", event.Type, d.topic, err)
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	d.logger.Debug("Published %s to %s", event.Type, d.topic)
	return nil
}

func (d *KafkaDispatcher) Close() error {
	return d.writer.Close()
}
