package analytics

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
	"github.com/angelmondragon/orderdesk-backend/pkg/eventbus"
	"github.com/angelmondragon/orderdesk-backend/pkg/logger"
	"github.com/angelmondragon/orderdesk-backend/pkg/outbox"
)

// ConsumerName scopes the idempotency keys of the analytics sink.
const ConsumerName = "analytics-order-events"

type rowWriter interface {
	Write(ctx context.Context, row OrderEventRow) error
}

type payloadDecoder interface {
	DecodeMessage(eventType enums.OutboxEventType, data []byte) (outbox.PayloadEnvelope, interface{}, error)
}

type deduper interface {
	Claim(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Release(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// ConsumerParams wires the analytics sink.
type ConsumerParams struct {
	Subscriber eventbus.Subscriber
	Decoder    payloadDecoder
	Writer     rowWriter
	Dedupe     deduper
	Logger     *logger.Logger
}

// Consumer writes one BigQuery row per order event.
type Consumer struct {
	subscriber eventbus.Subscriber
	decoder    payloadDecoder
	writer     rowWriter
	dedupe     deduper
	logg       *logger.Logger
}

func NewConsumer(params ConsumerParams) (*Consumer, error) {
	if params.Subscriber == nil {
		return nil, fmt.Errorf("subscriber required")
	}
	if params.Decoder == nil {
		return nil, fmt.Errorf("payload decoder required")
	}
	if params.Writer == nil {
		return nil, fmt.Errorf("row writer required")
	}
	if params.Dedupe == nil {
		return nil, fmt.Errorf("deduper required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		subscriber: params.Subscriber,
		decoder:    params.Decoder,
		writer:     params.Writer,
		dedupe:     params.Dedupe,
		logg:       params.Logger,
	}, nil
}

// Run receives messages until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscriber.Receive(ctx, c.Handle)
}

// Handle writes the message's row. Malformed messages are acked and logged;
// write failures release the dedupe claim and request redelivery.
func (c *Consumer) Handle(ctx context.Context, msg eventbus.Message) error {
	eventType := enums.OutboxEventType(msg.Attr(eventbus.AttrEventType))
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id":     msg.ID,
		"event_type":     eventType,
		"aggregate_type": msg.Attr(eventbus.AttrAggregateType),
		"aggregate_id":   msg.Attr(eventbus.AttrAggregateID),
	})

	if !eventType.IsValid() {
		c.logg.Warn(logCtx, "analytics.skip_unknown_event")
		return nil
	}
	envelope, payload, err := c.decoder.DecodeMessage(eventType, msg.Data)
	if err != nil {
		c.logg.Error(logCtx, "analytics.decode_failed", err)
		return nil
	}
	if envelope.EventID == "" {
		envelope.EventID = msg.Attr(eventbus.AttrEventID)
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "analytics.invalid_event_id", err)
		return nil
	}
	logCtx = c.logg.WithEvent(logCtx, eventID.String(), string(eventType))

	row, err := BuildRow(eventType, msg.Attr(eventbus.AttrAggregateType), msg.Attr(eventbus.AttrAggregateID), envelope, payload)
	if err != nil {
		c.logg.Error(logCtx, "analytics.row_failed", err)
		return nil
	}

	claimed, err := c.dedupe.Claim(ctx, ConsumerName, eventID)
	if err != nil {
		c.logg.Error(logCtx, "analytics.idempotency_failed", err)
		return err
	}
	if !claimed {
		c.logg.Info(logCtx, "analytics.duplicate")
		return nil
	}

	if err := c.writer.Write(ctx, row); err != nil {
		c.logg.Error(logCtx, "analytics.write_failed", err)
		_ = c.dedupe.Release(context.WithoutCancel(ctx), ConsumerName, eventID)
		return err
	}
	c.logg.Info(logCtx, "analytics.row_written")
	return nil
}
