package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/angelmondragon/orderdesk-backend/pkg/config"
	"github.com/angelmondragon/orderdesk-backend/pkg/eventbus"
	"github.com/angelmondragon/orderdesk-backend/pkg/logger"
)

const (
	defaultHandlerAttempts = 3
	defaultRetryBackoff    = 500 * time.Millisecond
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads one topic as part of a consumer group. Kafka has no
// per-message nack, so a failing handler is retried in place and the offset
// is committed once attempts run out.
type Consumer struct {
	reader   messageReader
	logg     *logger.Logger
	attempts int
	backoff  time.Duration
}

func NewConsumer(cfg config.KafkaConfig, topic, groupID string, logg *logger.Logger) (*Consumer, error) {
	brokers := cfg.BrokerList()
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if topic == "" || groupID == "" {
		return nil, errors.New("kafka topic and group id are required")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{
		reader:   reader,
		logg:     logg,
		attempts: defaultHandlerAttempts,
		backoff:  defaultRetryBackoff,
	}, nil
}

// Receive blocks until ctx is cancelled or the reader fails.
func (c *Consumer) Receive(ctx context.Context, handler eventbus.Handler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		c.deliver(ctx, handler, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

func (c *Consumer) deliver(ctx context.Context, handler eventbus.Handler, raw kafka.Message) {
	msg := toEventbusMessage(raw)
	var err error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return
		}
		if eventbus.IsPermanent(err) || attempt == c.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.backoff * time.Duration(attempt)):
		}
	}
	if c.logg != nil {
		logCtx := c.logg.WithEvent(ctx, msg.ID, msg.Attr(eventbus.AttrEventType))
		logCtx = c.logg.WithFields(logCtx, map[string]any{
			"topic":     raw.Topic,
			"partition": raw.Partition,
			"offset":    raw.Offset,
		})
		c.logg.Error(logCtx, "kafka handler failed, committing offset", err)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

func toEventbusMessage(raw kafka.Message) eventbus.Message {
	attrs := make(map[string]string, len(raw.Headers))
	for _, header := range raw.Headers {
		attrs[header.Key] = string(header.Value)
	}
	return eventbus.Message{
		ID:          attrs[eventbus.AttrEventID],
		Data:        raw.Value,
		Attributes:  attrs,
		PublishTime: raw.Time,
	}
}
