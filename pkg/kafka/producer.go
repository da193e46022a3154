// Package kafka implements the eventbus interfaces on top of segmentio/kafka-go.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/angelmondragon/orderdesk-backend/pkg/config"
	"github.com/angelmondragon/orderdesk-backend/pkg/eventbus"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes to any topic through a single shared writer.
type Producer struct {
	writer  messageWriter
	brokers []string
	dial    func(ctx context.Context, network, address string) (net.Conn, error)
}

func NewProducer(cfg config.KafkaConfig) (*Producer, error) {
	brokers := cfg.BrokerList()
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 10 * time.Millisecond
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           batchTimeout,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: false,
	}
	dialer := &kafka.Dialer{Timeout: 5 * time.Second}
	return &Producer{
		writer:  writer,
		brokers: brokers,
		dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, address)
			if err != nil {
				return nil, err
			}
			return conn, nil
		},
	}, nil
}

// Publish writes msg to topic keyed by aggregate id so one order's events stay ordered.
func (p *Producer) Publish(ctx context.Context, topic string, msg eventbus.Message) error {
	if topic == "" {
		return eventbus.Permanent(errors.New("kafka topic is required"))
	}
	headers := make([]kafka.Header, 0, len(msg.Attributes))
	for key, value := range msg.Attributes {
		headers = append(headers, kafka.Header{Key: key, Value: []byte(value)})
	}
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic:   topic,
		Key:     []byte(msg.Attr(eventbus.AttrAggregateID)),
		Value:   msg.Data,
		Headers: headers,
		Time:    time.Now().UTC(),
	})
	if err != nil {
		return classifyWriteError(err)
	}
	return nil
}

// Ping dials the first reachable broker.
func (p *Producer) Ping(ctx context.Context) error {
	var lastErr error
	for _, broker := range p.brokers {
		conn, err := p.dial(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		_ = conn.Close()
		return nil
	}
	return fmt.Errorf("no kafka broker reachable: %w", lastErr)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

var permanentCodes = []kafka.Error{
	kafka.MessageSizeTooLarge,
	kafka.InvalidTopic,
	kafka.TopicAuthorizationFailed,
	kafka.ClusterAuthorizationFailed,
	kafka.InvalidMessage,
}

func classifyWriteError(err error) error {
	var writeErrs kafka.WriteErrors
	if errors.As(err, &writeErrs) {
		for _, inner := range writeErrs {
			if inner != nil && isPermanentCode(inner) {
				return eventbus.Permanent(err)
			}
		}
		return err
	}
	if isPermanentCode(err) {
		return eventbus.Permanent(err)
	}
	return err
}

func isPermanentCode(err error) bool {
	for _, code := range permanentCodes {
		if errors.Is(err, code) {
			return true
		}
	}
	return false
}
