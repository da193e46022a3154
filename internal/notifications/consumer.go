package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
	"github.com/angelmondragon/orderdesk-backend/pkg/eventbus"
	"github.com/angelmondragon/orderdesk-backend/pkg/logger"
	"github.com/angelmondragon/orderdesk-backend/pkg/messaging"
	"github.com/angelmondragon/orderdesk-backend/pkg/outbox"
)

// ConsumerName scopes the idempotency keys of this consumer.
const ConsumerName = "order-notifications"

type deduper interface {
	Claim(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Release(ctx context.Context, consumer string, eventID uuid.UUID) error
}

type payloadDecoder interface {
	DecodeMessage(eventType enums.OutboxEventType, data []byte) (outbox.PayloadEnvelope, interface{}, error)
}

type noticeSender interface {
	Send(ctx context.Context, phone, body string) (messaging.DeliveryStatus, int, error)
}

// ConsumerParams wires the notifier.
type ConsumerParams struct {
	Subscriber eventbus.Subscriber
	Decoder    payloadDecoder
	Dedupe     deduper
	Sender     noticeSender
	Logger     *logger.Logger
}

// Consumer turns order events into chat messages to buyers and vendors.
// Delivery is best effort: a message that still fails after the sender's
// retries is logged and acknowledged.
type Consumer struct {
	subscriber eventbus.Subscriber
	decoder    payloadDecoder
	dedupe     deduper
	sender     noticeSender
	logg       *logger.Logger
}

func NewConsumer(params ConsumerParams) (*Consumer, error) {
	if params.Subscriber == nil {
		return nil, fmt.Errorf("subscriber required")
	}
	if params.Decoder == nil {
		return nil, fmt.Errorf("payload decoder required")
	}
	if params.Dedupe == nil {
		return nil, fmt.Errorf("deduper required")
	}
	if params.Sender == nil {
		return nil, fmt.Errorf("sender required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		subscriber: params.Subscriber,
		decoder:    params.Decoder,
		dedupe:     params.Dedupe,
		sender:     params.Sender,
		logg:       params.Logger,
	}, nil
}

// Run receives messages until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscriber.Receive(ctx, c.Handle)
}

// Handle processes one message. A non-nil error asks for redelivery.
func (c *Consumer) Handle(ctx context.Context, msg eventbus.Message) error {
	eventType := enums.OutboxEventType(msg.Attr(eventbus.AttrEventType))
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id":   msg.ID,
		"event_type":   eventType,
		"aggregate_id": msg.Attr(eventbus.AttrAggregateID),
	})

	if !eventType.IsValid() {
		c.logg.Info(logCtx, "notifications.skip_unknown_event")
		return nil
	}

	envelope, payload, err := c.decoder.DecodeMessage(eventType, msg.Data)
	if err != nil {
		c.logg.Error(logCtx, "notifications.decode_failed", err)
		return nil
	}

	notice, ok := Render(payload)
	if !ok {
		c.logg.Info(logCtx, "notifications.no_message")
		return nil
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "notifications.invalid_event_id", err)
		return nil
	}
	logCtx = c.logg.WithFields(logCtx, map[string]any{
		"event_id":     eventID.String(),
		"audience":     notice.Audience,
		"phone_digest": PhoneDigest(notice.Recipient),
	})

	claimed, err := c.dedupe.Claim(ctx, ConsumerName, eventID)
	if err != nil {
		c.logg.Error(logCtx, "notifications.idempotency_failed", err)
		return err
	}
	if !claimed {
		c.logg.Info(logCtx, "notifications.duplicate")
		return nil
	}

	started := time.Now()
	status, attempts, err := c.sender.Send(ctx, notice.Recipient, notice.Body)
	logCtx = c.logg.WithFields(logCtx, map[string]any{
		"attempts":    attempts,
		"status":      status,
		"duration_ms": time.Since(started).Milliseconds(),
	})
	if err != nil {
		if ctx.Err() != nil {
			_ = c.dedupe.Release(context.WithoutCancel(ctx), ConsumerName, eventID)
			return ctx.Err()
		}
		c.logg.Error(logCtx, "notifications.send_failed", err)
		return nil
	}
	c.logg.Info(logCtx, "notifications.sent")
	return nil
}
