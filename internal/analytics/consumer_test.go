package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
	"github.com/angelmondragon/orderdesk-backend/pkg/eventbus"
	"github.com/angelmondragon/orderdesk-backend/pkg/logger"
	"github.com/angelmondragon/orderdesk-backend/pkg/outbox"
	"github.com/angelmondragon/orderdesk-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/orderdesk-backend/pkg/outbox/registry"
)

type memoryIdempotency struct {
	seen    map[uuid.UUID]bool
	deleted int
}

func (m *memoryIdempotency) Claim(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	if m.seen[eventID] {
		return false, nil
	}
	m.seen[eventID] = true
	return true, nil
}

func (m *memoryIdempotency) Release(ctx context.Context, consumer string, eventID uuid.UUID) error {
	m.deleted++
	delete(m.seen, eventID)
	return nil
}

type recordingWriter struct {
	rows []OrderEventRow
	err  error
}

func (r *recordingWriter) Write(ctx context.Context, row OrderEventRow) error {
	if r.err != nil {
		return r.err
	}
	r.rows = append(r.rows, row)
	return nil
}

type idleSubscriber struct{}

func (idleSubscriber) Receive(ctx context.Context, handler eventbus.Handler) error { return nil }
func (idleSubscriber) Close() error                                                { return nil }

func newTestConsumer(t *testing.T, writer rowWriter, idem *memoryIdempotency) *Consumer {
	t.Helper()
	consumer, err := NewConsumer(ConsumerParams{
		Subscriber: idleSubscriber{},
		Decoder:    registry.NewOrderDecoderRegistry(),
		Writer:     writer,
		Dedupe:     idem,
		Logger:     logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}
	return consumer
}

func decidedMessage(t *testing.T, eventID uuid.UUID) (eventbus.Message, payloads.OrderDecidedEvent) {
	t.Helper()
	name, phone := "Ana", "5512345678"
	actor := uuid.New()
	event := payloads.OrderDecidedEvent{
		OrderSnapshot: payloads.OrderSnapshot{
			OrderID:       uuid.New(),
			StoreID:       uuid.New(),
			Token:         "tok",
			Status:        enums.OrderStatusConfirmed,
			PaymentStatus: enums.PaymentStatusPaid,
			BuyerKind:     enums.BuyerKindGuest,
			BuyerName:     &name,
			BuyerPhone:    &phone,
			TotalCents:    4500,
			Currency:      "MXN",
		},
		Outcome:   enums.DecisionAcceptCash,
		DecidedBy: actor,
		DecidedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	envelope, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID.String(),
		OccurredAt: event.DecidedAt,
		Actor:      &outbox.ActorRef{UserID: &actor, Role: string(enums.MemberRoleVendor)},
		Data:       data,
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return eventbus.Message{
		ID:   "m1",
		Data: envelope,
		Attributes: map[string]string{
			eventbus.AttrEventType:     string(enums.EventOrderDecided),
			eventbus.AttrAggregateType: string(enums.AggregateOrder),
			eventbus.AttrAggregateID:   event.OrderID.String(),
		},
	}, event
}

func TestConsumerWritesFlattenedRowOnce(t *testing.T) {
	writer := &recordingWriter{}
	consumer := newTestConsumer(t, writer, &memoryIdempotency{seen: map[uuid.UUID]bool{}})
	eventID := uuid.New()
	msg, event := decidedMessage(t, eventID)

	for i := 0; i < 2; i++ {
		if err := consumer.Handle(context.Background(), msg); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}
	if len(writer.rows) != 1 {
		t.Fatalf("expected one row, got %d", len(writer.rows))
	}
	row := writer.rows[0]
	if row.EventID != eventID.String() || row.EventType != string(enums.EventOrderDecided) {
		t.Fatalf("unexpected identity %+v", row)
	}
	if row.OrderID == nil || *row.OrderID != event.OrderID.String() {
		t.Fatalf("unexpected order id %v", row.OrderID)
	}
	if row.Outcome == nil || *row.Outcome != string(enums.DecisionAcceptCash) {
		t.Fatalf("unexpected outcome %v", row.Outcome)
	}
	if row.TotalCents == nil || *row.TotalCents != 4500 {
		t.Fatalf("unexpected total %v", row.TotalCents)
	}
	if row.ActorRole == nil || *row.ActorRole != string(enums.MemberRoleVendor) {
		t.Fatalf("unexpected actor role %v", row.ActorRole)
	}
	if !row.OccurredAt.Equal(event.DecidedAt) {
		t.Fatalf("unexpected occurred_at %s", row.OccurredAt)
	}
	if !row.Payload.Valid || strings.Contains(row.Payload.JSONVal, "5512345678") || strings.Contains(row.Payload.JSONVal, "Ana") {
		t.Fatalf("payload must be present and redacted: %s", row.Payload.JSONVal)
	}
}

func TestConsumerRedeliversWriteFailures(t *testing.T) {
	idem := &memoryIdempotency{seen: map[uuid.UUID]bool{}}
	writer := &recordingWriter{err: errors.New("bq down")}
	consumer := newTestConsumer(t, writer, idem)
	eventID := uuid.New()
	msg, _ := decidedMessage(t, eventID)

	if err := consumer.Handle(context.Background(), msg); err == nil {
		t.Fatal("expected error for redelivery")
	}
	if idem.deleted != 1 || idem.seen[eventID] {
		t.Fatalf("idempotency mark should be released")
	}

	writer.err = nil
	if err := consumer.Handle(context.Background(), msg); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if len(writer.rows) != 1 {
		t.Fatalf("expected row after redelivery")
	}
}

func TestConsumerAcksMalformedMessages(t *testing.T) {
	writer := &recordingWriter{}
	consumer := newTestConsumer(t, writer, &memoryIdempotency{seen: map[uuid.UUID]bool{}})
	ctx := context.Background()

	bad := []eventbus.Message{
		{ID: "unknown", Attributes: map[string]string{eventbus.AttrEventType: "cart.updated"}},
		{ID: "garbage", Data: []byte("nope"), Attributes: map[string]string{eventbus.AttrEventType: string(enums.EventOrderCreated)}},
		{ID: "no-id", Data: []byte(`{"version":1,"data":{}}`), Attributes: map[string]string{eventbus.AttrEventType: string(enums.EventOrderCreated)}},
	}
	for _, msg := range bad {
		if err := consumer.Handle(ctx, msg); err != nil {
			t.Fatalf("%s: expected ack, got %v", msg.ID, err)
		}
	}
	if len(writer.rows) != 0 {
		t.Fatalf("expected no rows")
	}
}

func TestBuildRowForRestock(t *testing.T) {
	storeID := uuid.New()
	row, err := BuildRow(enums.EventStockRestocked, string(enums.AggregateProduct), uuid.NewString(), outbox.PayloadEnvelope{
		EventID: uuid.NewString(),
		Data:    json.RawMessage(`{"store_id":"` + storeID.String() + `","quantity":3}`),
	}, &payloads.StockRestockedEvent{StoreID: storeID, Quantity: 3})
	if err != nil {
		t.Fatalf("build row: %v", err)
	}
	if row.StoreID == nil || *row.StoreID != storeID.String() {
		t.Fatalf("unexpected store id %v", row.StoreID)
	}
	if row.OrderID != nil || row.OccurredAt.IsZero() {
		t.Fatalf("unexpected row %+v", row)
	}
}
