package analytics

import (
	"encoding/json"
	"fmt"
	"time"

	cbigquery "cloud.google.com/go/bigquery"

	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
	"github.com/angelmondragon/orderdesk-backend/pkg/outbox"
	"github.com/angelmondragon/orderdesk-backend/pkg/outbox/payloads"
)

// OrderEventRow mirrors the order_events BigQuery schema.
type OrderEventRow struct {
	EventID       string             `bigquery:"event_id"`
	EventType     string             `bigquery:"event_type"`
	AggregateType string             `bigquery:"aggregate_type"`
	AggregateID   string             `bigquery:"aggregate_id"`
	OccurredAt    time.Time          `bigquery:"occurred_at"`
	StoreID       *string            `bigquery:"store_id"`
	OrderID       *string            `bigquery:"order_id"`
	Status        *string            `bigquery:"status"`
	PaymentStatus *string            `bigquery:"payment_status"`
	BuyerKind     *string            `bigquery:"buyer_kind"`
	TotalCents    *int64             `bigquery:"total_cents"`
	Currency      *string            `bigquery:"currency"`
	Outcome       *string            `bigquery:"outcome"`
	ActorUserID   *string            `bigquery:"actor_user_id"`
	ActorRole     *string            `bigquery:"actor_role"`
	Payload       cbigquery.NullJSON `bigquery:"payload"`
}

// Save implements bigquery.ValueSaver. The event id doubles as the insert id.
func (r *OrderEventRow) Save() (map[string]cbigquery.Value, string, error) {
	values := map[string]cbigquery.Value{
		"event_id":       r.EventID,
		"event_type":     r.EventType,
		"aggregate_type": r.AggregateType,
		"aggregate_id":   r.AggregateID,
		"occurred_at":    r.OccurredAt,
		"store_id":       nullable(r.StoreID),
		"order_id":       nullable(r.OrderID),
		"status":         nullable(r.Status),
		"payment_status": nullable(r.PaymentStatus),
		"buyer_kind":     nullable(r.BuyerKind),
		"total_cents":    nullable(r.TotalCents),
		"currency":       nullable(r.Currency),
		"outcome":        nullable(r.Outcome),
		"actor_user_id":  nullable(r.ActorUserID),
		"actor_role":     nullable(r.ActorRole),
		"payload":        nil,
	}
	if r.Payload.Valid {
		values["payload"] = r.Payload.JSONVal
	}
	return values, r.EventID, nil
}

func nullable[T any](v *T) cbigquery.Value {
	if v == nil {
		return nil
	}
	return *v
}

type snapshotter interface {
	Snapshot() payloads.OrderSnapshot
}

// BuildRow flattens a decoded event into a row. Contact details are stripped
// from the stored payload.
func BuildRow(eventType enums.OutboxEventType, aggregateType, aggregateID string, envelope outbox.PayloadEnvelope, payload any) (OrderEventRow, error) {
	if envelope.EventID == "" {
		return OrderEventRow{}, fmt.Errorf("event id missing")
	}
	occurredAt := envelope.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	row := OrderEventRow{
		EventID:       envelope.EventID,
		EventType:     string(eventType),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		OccurredAt:    occurredAt.UTC(),
	}
	if len(envelope.Data) > 0 {
		redacted, err := redact(envelope.Data)
		if err != nil {
			return OrderEventRow{}, err
		}
		row.Payload = cbigquery.NullJSON{Valid: true, JSONVal: redacted}
	}
	if actor := envelope.Actor; actor != nil {
		if actor.UserID != nil {
			row.ActorUserID = ptr(actor.UserID.String())
		}
		if actor.Role != "" {
			row.ActorRole = ptr(actor.Role)
		}
	}

	if order, ok := payload.(snapshotter); ok {
		snap := order.Snapshot()
		row.StoreID = ptr(snap.StoreID.String())
		row.OrderID = ptr(snap.OrderID.String())
		row.Status = ptr(string(snap.Status))
		row.PaymentStatus = ptr(string(snap.PaymentStatus))
		row.BuyerKind = ptr(string(snap.BuyerKind))
		row.TotalCents = ptr(snap.TotalCents)
		row.Currency = ptr(snap.Currency)
	}
	switch event := payload.(type) {
	case *payloads.OrderDecidedEvent:
		row.Outcome = ptr(string(event.Outcome))
	case *payloads.StockRestockedEvent:
		row.StoreID = ptr(event.StoreID.String())
	}
	return row, nil
}

var piiKeys = []string{"buyer_name", "buyer_phone", "store_phone"}

func redact(data json.RawMessage) (string, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return "", fmt.Errorf("decode payload: %w", err)
	}
	for _, key := range piiKeys {
		delete(fields, key)
	}
	out, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	return string(out), nil
}

func ptr[T any](v T) *T {
	return &v
}
