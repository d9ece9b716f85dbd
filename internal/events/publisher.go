package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/microfix/dashboard/internal/infrastructure/logger"
)

const defaultWriteTimeout = 5 * time.Second

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes LinkChanged events to one topic, keyed by link id so
// changes to the same link stay ordered within a partition.
type KafkaPublisher struct {
	writer       messageWriter
	topic        string
	writeTimeout time.Duration
}

// NewKafkaPublisher returns an async publisher: PublishLinkChanged only
// enqueues, and delivery failures are logged when the batch completes.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           10 * time.Millisecond,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			Async:                  true,
			Completion:             logCompletion(logger.Named("events"), topic),
		},
		topic:        topic,
		writeTimeout: defaultWriteTimeout,
	}
}

func logCompletion(log *zap.Logger, topic string) func([]kafka.Message, error) {
	return func(messages []kafka.Message, err error) {
		if err == nil {
			log.Debug("link events delivered", zap.String("topic", topic), zap.Int("count", len(messages)))
			return
		}
		keys := make([]string, len(messages))
		for i, m := range messages {
			keys[i] = string(m.Key)
		}
		log.Warn("failed to deliver link events",
			zap.String("topic", topic),
			zap.Strings("link_ids", keys),
			zap.Error(err),
		)
	}
}

func (p *KafkaPublisher) PublishLinkChanged(ctx context.Context, evt LinkChanged) error {
	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal link changed: %w", err)
	}

	ctx, span := otel.Tracer("link-events").Start(ctx,
		"kafka.publish.link_changed",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", p.topic),
			attribute.String("messaging.operation", "publish"),
			attribute.String("messaging.message.id", evt.EventID),
			attribute.String("messaging.kafka.message_key", evt.LinkID),
		),
	)
	defer span.End()

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	writeCtx, cancel := context.WithTimeout(ctx, p.writeTimeout)
	defer cancel()

	err = p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:     []byte(evt.LinkID),
		Value:   value,
		Time:    time.Now().UTC(),
		Headers: carrierToKafkaHeaders(carrier),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "kafka publish failed")
		return err
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func carrierToKafkaHeaders(carrier propagation.MapCarrier) []kafka.Header {
	headers := make([]kafka.Header, 0, len(carrier))
	for key, value := range carrier {
		if strings.TrimSpace(value) == "" {
			continue
		}
		headers = append(headers, kafka.Header{
			Key:   key,
			Value: []byte(value),
		})
	}
	return headers
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishLinkChanged(context.Context, LinkChanged) error { return nil }
