package registry

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
	"github.com/angelmondragon/orderdesk-backend/pkg/outbox/payloads"
)

func TestDecoderRegistry(t *testing.T) {
	reg := NewDecoderRegistry()
	reg.Register(enums.EventOrderCancelled, 1, func(payload json.RawMessage) (interface{}, error) {
		var decoded map[string]string
		if err := json.Unmarshal(payload, &decoded); err != nil {
			return nil, err
		}
		return decoded, nil
	})

	input := json.RawMessage(`{"reason":"BUYER_CANCELLED"}`)
	output, err := reg.Decode(enums.EventOrderCancelled, 1, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outMap, ok := output.(map[string]string); !ok || outMap["reason"] != "BUYER_CANCELLED" {
		t.Fatalf("unexpected output %+v", output)
	}

	if _, err := reg.Decode(enums.EventOrderCancelled, 2, input); err == nil {
		t.Fatalf("expected unknown version to fail")
	}
}

func TestOrderDecoderRegistryDecodeMessage(t *testing.T) {
	reg := NewOrderDecoderRegistry()
	orderID := uuid.New()
	data := mustEnvelope(t, mustMarshal(t, payloads.OrderCreatedEvent{
		OrderSnapshot: payloads.OrderSnapshot{OrderID: orderID, Token: "tok"},
		LineCount:     2,
	}))

	envelope, payload, err := reg.DecodeMessage(enums.EventOrderCreated, data)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if envelope.EventID == "" {
		t.Fatalf("expected envelope event id")
	}
	created, ok := payload.(*payloads.OrderCreatedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", payload)
	}
	if created.OrderID != orderID || created.LineCount != 2 {
		t.Fatalf("unexpected payload %+v", created)
	}

	if _, _, err := reg.DecodeMessage(enums.EventOrderCreated, []byte("not-json")); err == nil {
		t.Fatalf("expected malformed envelope to fail")
	}
}
