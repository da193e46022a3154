package pubsub

import (
	"context"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/orderdesk-backend/pkg/eventbus"
)

// Bus adapts Client to the eventbus interfaces.
type Bus struct {
	client *Client
}

func NewBus(client *Client) *Bus {
	return &Bus{client: client}
}

// Publish sends msg to topic and waits for the server-assigned message ID.
func (b *Bus) Publish(ctx context.Context, topic string, msg eventbus.Message) error {
	pub := b.client.Publisher(topic)
	if pub == nil {
		return eventbus.Permanent(fmt.Errorf("publisher not configured for topic %s", topic))
	}
	result := pub.Publish(ctx, &pubsub.Message{
		Data:       msg.Data,
		Attributes: msg.Attributes,
	})
	if _, err := result.Get(ctx); err != nil {
		return classifyPublishError(err)
	}
	return nil
}

func (b *Bus) Ping(ctx context.Context) error {
	return b.client.Ping(ctx)
}

func (b *Bus) Close() error {
	return b.client.Close()
}

// Subscriber returns an eventbus.Subscriber bound to the named subscription.
func (b *Bus) Subscriber(name string) eventbus.Subscriber {
	return &subscriber{client: b.client, name: name}
}

type subscriber struct {
	client *Client
	name   string
}

func (s *subscriber) Receive(ctx context.Context, handler eventbus.Handler) error {
	sub := s.client.Subscription(s.name)
	if sub == nil {
		return fmt.Errorf("subscription %q not configured", s.name)
	}
	return sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		err := handler(ctx, eventbus.Message{
			ID:          msg.ID,
			Data:        msg.Data,
			Attributes:  msg.Attributes,
			PublishTime: msg.PublishTime,
		})
		if err != nil {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (s *subscriber) Close() error {
	return nil
}

func classifyPublishError(err error) error {
	switch status.Code(err) {
	case codes.NotFound, codes.PermissionDenied, codes.InvalidArgument, codes.FailedPrecondition:
		return eventbus.Permanent(err)
	default:
		return err
	}
}
