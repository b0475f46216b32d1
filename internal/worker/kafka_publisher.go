package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/RealCodeCrafter/trt-backend/internal/config"
	"github.com/RealCodeCrafter/trt-backend/internal/events"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher forwards catalog events to a Kafka topic as JSON.
type KafkaPublisher struct {
	writer messageWriter
	logger *zap.Logger
}

// NewKafkaPublisher returns nil when no brokers are configured.
// The writer is async: Handle never waits on the broker, delivery failures are logged.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *zap.Logger) *KafkaPublisher {
	if len(cfg.Brokers) == 0 {
		return nil
	}
	p := &KafkaPublisher{logger: logger}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		Completion:   p.delivered,
	}
	return p
}

func (p *KafkaPublisher) delivered(msgs []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, msg := range msgs {
		p.logger.Warn("kafka delivery failed",
			zap.String("event", headerValue(msg, "event_type")),
			zap.ByteString("key", msg.Key),
			zap.Error(err),
		)
	}
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// Start subscribes the publisher to every catalog event.
func (p *KafkaPublisher) Start(dispatcher events.Dispatcher) {
	if p == nil || dispatcher == nil {
		return
	}
	events.SubscribeAll(dispatcher, events.CatalogEventTypes, p.Handle)
}

// Handle writes one event keyed by entity id so changes to one row stay ordered.
func (p *KafkaPublisher) Handle(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.EntityID, 10)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(context.WithoutCancel(ctx), msg); err != nil {
		p.logger.Warn("kafka publish failed", zap.String("event", string(event.Type)), zap.Error(err))
		return fmt.Errorf("kafka: write: %w", err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
