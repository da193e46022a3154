package outbox

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
)

// ActorRef identifies who produced the event. Guest buyers and jobs have no user id.
type ActorRef struct {
	UserID  *uuid.UUID `json:"userId,omitempty"`
	StoreID *uuid.UUID `json:"storeId,omitempty"`
	Role    string     `json:"role,omitempty"`
}

// VendorActor attributes an event to a store member.
func VendorActor(userID, storeID uuid.UUID) *ActorRef {
	return &ActorRef{UserID: &userID, StoreID: &storeID, Role: string(enums.MemberRoleVendor)}
}

// BuyerActor attributes an event to a buyer; userID is nil for guest checkouts.
func BuyerActor(userID *uuid.UUID) *ActorRef {
	return &ActorRef{UserID: userID, Role: string(enums.MemberRoleBuyer)}
}

// PayloadEnvelope is the stable payload structure stored in outbox_events
// and published verbatim on the bus.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

var errEnvelopeEmpty = errors.New("envelope is empty")

func newEnvelope(id uuid.UUID, event DomainEvent, data json.RawMessage) PayloadEnvelope {
	version := event.Version
	if version == 0 {
		version = envelopeVersion
	}
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	return PayloadEnvelope{
		Version:    version,
		EventID:    id.String(),
		OccurredAt: occurred.UTC(),
		Actor:      event.Actor,
		Data:       data,
	}
}

// ParseEnvelope decodes a stored or published envelope. Rows written before
// versioning carry no version and are read as version 1.
func ParseEnvelope(raw []byte) (PayloadEnvelope, error) {
	var envelope PayloadEnvelope
	if len(bytes.TrimSpace(raw)) == 0 {
		return envelope, errEnvelopeEmpty
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return envelope, fmt.Errorf("decode envelope: %w", err)
	}
	if envelope.Version == 0 {
		envelope.Version = envelopeVersion
	}
	return envelope, nil
}

// HasData reports whether the envelope carries a non-null payload.
func (e PayloadEnvelope) HasData() bool {
	trimmed := bytes.TrimSpace(e.Data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
