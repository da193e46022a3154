// Package transport builds the configured eventbus implementation.
package transport

import (
	"context"
	"fmt"

	"github.com/angelmondragon/orderdesk-backend/pkg/config"
	"github.com/angelmondragon/orderdesk-backend/pkg/eventbus"
	"github.com/angelmondragon/orderdesk-backend/pkg/kafka"
	"github.com/angelmondragon/orderdesk-backend/pkg/logger"
	"github.com/angelmondragon/orderdesk-backend/pkg/pubsub"
)

// NewPublisher returns a publisher for the configured driver.
func NewPublisher(ctx context.Context, cfg *config.Config, logg *logger.Logger) (eventbus.Publisher, error) {
	if cfg.EventBus.UsesKafka() {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		return producer, nil
	}
	client, err := pubsub.NewClient(ctx, cfg.GCP, logg)
	if err != nil {
		return nil, err
	}
	return pubsub.NewBus(client), nil
}

// NewSubscriber returns a subscriber for the named subscription. With Kafka the
// subscription maps to its topic and a consumer group derived from the name.
func NewSubscriber(ctx context.Context, cfg *config.Config, logg *logger.Logger, subscription string) (eventbus.Subscriber, error) {
	if cfg.EventBus.UsesKafka() {
		topic, err := kafkaTopicFor(cfg.PubSub, subscription)
		if err != nil {
			return nil, err
		}
		return kafka.NewConsumer(cfg.Kafka, topic, KafkaGroupID(cfg.Kafka, subscription), logg)
	}
	client, err := pubsub.NewClient(ctx, cfg.GCP, logg, subscription)
	if err != nil {
		return nil, err
	}
	return pubsub.NewBus(client).Subscriber(subscription), nil
}

// KafkaGroupID scopes the consumer group to the subscription.
func KafkaGroupID(cfg config.KafkaConfig, subscription string) string {
	return cfg.ConsumerGroup + "-" + subscription
}

func kafkaTopicFor(cfg config.PubSubConfig, subscription string) (string, error) {
	switch subscription {
	case cfg.OrdersSubscription:
		return cfg.OrdersTopic, nil
	case cfg.AnalyticsSubscription:
		return cfg.AnalyticsTopic, nil
	default:
		return "", fmt.Errorf("no topic mapped for subscription %q", subscription)
	}
}
