// Package idempotency keeps event consumers from acting twice on the same
// outbox event when the bus redelivers it.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/orderdesk-backend/pkg/redis"
)

// Deduper stores one Redis key per (consumer, event) under
// "<prefix>:idempotency:consumed:<consumer>:<event_id>". The value is the
// claim time, which helps when tracing a skipped delivery.
type Deduper struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	now   func() time.Time
}

// NewDeduper keeps claims for ttl. Zero ttl keeps them forever.
func NewDeduper(store redis.IdempotencyStore, ttl time.Duration) (*Deduper, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &Deduper{store: store, ttl: ttl, now: time.Now}, nil
}

// Claim reports whether this delivery is the first for consumer. A false
// result means an earlier delivery already claimed the event.
func (d *Deduper) Claim(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	key, err := d.key(consumer, eventID)
	if err != nil {
		return false, err
	}
	return d.store.SetNX(ctx, key, d.now().UTC().Format(time.RFC3339Nano), d.ttl)
}

// Release drops a claim so the next redelivery is handled again.
func (d *Deduper) Release(ctx context.Context, consumer string, eventID uuid.UUID) error {
	key, err := d.key(consumer, eventID)
	if err != nil {
		return err
	}
	return d.store.Del(ctx, key)
}

func (d *Deduper) key(consumer string, eventID uuid.UUID) (string, error) {
	switch {
	case consumer == "":
		return "", errors.New("consumer name is required")
	case eventID == uuid.Nil:
		return "", errors.New("event id is required")
	}
	return d.store.IdempotencyKey("consumed:"+consumer, eventID.String()), nil
}
