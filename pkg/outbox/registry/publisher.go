package registry

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/orderdesk-backend/pkg/config"
	"github.com/angelmondragon/orderdesk-backend/pkg/db/models"
	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
	"github.com/angelmondragon/orderdesk-backend/pkg/outbox"
	"github.com/angelmondragon/orderdesk-backend/pkg/outbox/payloads"
)

// EventDescriptor links an event type to its aggregate/topic/payload schema.
type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateType  enums.OutboxAggregateType
	Topic          string
	PayloadFactory func() interface{}
}

// ResolvedEvent is the result of decoding an outbox row.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    interface{}
}

// EventRegistry maps each supported event type to its descriptor.
type EventRegistry struct {
	entries        map[enums.OutboxEventType]EventDescriptor
	analyticsTopic string
}

// NonRetryableError signals the dispatcher should stop retrying a row.
type NonRetryableError struct {
	Err error
}

// Error implements error.
func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

// Unwrap exposes the wrapped error.
func (e NonRetryableError) Unwrap() error {
	return e.Err
}

// NewEventRegistry builds the registry with the configured topic names.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	if cfg.OrdersTopic == "" {
		return nil, fmt.Errorf("orders topic is required")
	}

	reg := &EventRegistry{
		entries:        make(map[enums.OutboxEventType]EventDescriptor),
		analyticsTopic: cfg.AnalyticsTopic,
	}

	for _, desc := range orderEventDescriptors() {
		desc.Topic = cfg.OrdersTopic
		reg.entries[desc.EventType] = desc
	}

	return reg, nil
}

// orderEventDescriptors lists every event type this service publishes.
func orderEventDescriptors() []EventDescriptor {
	return []EventDescriptor{
		describe[payloads.OrderCreatedEvent](enums.EventOrderCreated, enums.AggregateOrder),
		describe[payloads.OrderReviewRequestedEvent](enums.EventOrderReviewRequested, enums.AggregateOrder),
		describe[payloads.OrderDecidedEvent](enums.EventOrderDecided, enums.AggregateOrder),
		describe[payloads.OrderCancelledEvent](enums.EventOrderCancelled, enums.AggregateOrder),
		describe[payloads.OrderExpiredEvent](enums.EventOrderExpired, enums.AggregateOrder),
		describe[payloads.OrderReviewStaleEvent](enums.EventOrderReviewStale, enums.AggregateOrder),
		describe[payloads.OrderFulfillmentUpdatedEvent](enums.EventOrderFulfillmentUpdated, enums.AggregateOrder),
		describe[payloads.StockRestockedEvent](enums.EventStockRestocked, enums.AggregateProduct),
	}
}

// describe builds a descriptor whose factory allocates a fresh *T.
func describe[T any](eventType enums.OutboxEventType, aggregate enums.OutboxAggregateType) EventDescriptor {
	return EventDescriptor{
		EventType:      eventType,
		AggregateType:  aggregate,
		PayloadFactory: func() interface{} { return new(T) },
	}
}

// AnalyticsTopic returns the topic every event is mirrored to, or "" when mirroring is off.
func (r *EventRegistry) AnalyticsTopic() string {
	return r.analyticsTopic
}

// Resolve validates the row and decodes its typed payload.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.entries[event.EventType]
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("unsupported event type %s", event.EventType))
	}
	if desc.AggregateType != event.AggregateType {
		return nil, NewNonRetryableError(fmt.Errorf("aggregate mismatch: expected %s got %s", desc.AggregateType, event.AggregateType))
	}
	if event.AggregateID == uuid.Nil {
		return nil, NewNonRetryableError(fmt.Errorf("missing aggregate_id"))
	}

	envelope, err := outbox.ParseEnvelope(event.Payload)
	if err != nil {
		return nil, NewNonRetryableError(err)
	}
	if !envelope.HasData() {
		return nil, NewNonRetryableError(fmt.Errorf("payload missing for %s", event.EventType))
	}

	payload := desc.PayloadFactory()
	if err := json.Unmarshal(envelope.Data, payload); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode %s payload: %w", event.EventType, err))
	}

	return &ResolvedEvent{
		Descriptor: desc,
		Envelope:   envelope,
		Payload:    payload,
	}, nil
}

// NewNonRetryableError wraps an error to signal no retries.
func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}
