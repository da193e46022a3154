// Package eventbus abstracts the message transport used to fan out outbox
// events. Pub/Sub and Kafka implementations live in pkg/pubsub and pkg/kafka.
package eventbus

import (
	"context"
	"errors"
	"time"
)

// Standard attribute keys stamped on every published message.
const (
	AttrEventID       = "event_id"
	AttrEventType     = "event_type"
	AttrAggregateType = "aggregate_type"
	AttrAggregateID   = "aggregate_id"
	AttrCreatedAt     = "created_at"
)

// Message is a transport-neutral event.
type Message struct {
	ID          string
	Data        []byte
	Attributes  map[string]string
	PublishTime time.Time
}

// Attr returns the named attribute or an empty string.
func (m Message) Attr(key string) string {
	if m.Attributes == nil {
		return ""
	}
	return m.Attributes[key]
}

// Publisher writes messages to a named topic. Publish returns once the broker
// acknowledged the write.
type Publisher interface {
	Publish(ctx context.Context, topic string, msg Message) error
	Ping(ctx context.Context) error
	Close() error
}

// Handler processes one message. Returning nil acknowledges it; returning an
// error asks the transport for redelivery.
type Handler func(ctx context.Context, msg Message) error

// Subscriber delivers messages from one subscription until ctx is cancelled.
type Subscriber interface {
	Receive(ctx context.Context, handler Handler) error
	Close() error
}

type permanentError struct {
	err error
}

func (e permanentError) Error() string {
	if e.err == nil {
		return "permanent publish failure"
	}
	return e.err.Error()
}

func (e permanentError) Unwrap() error {
	return e.err
}

// Permanent marks err as one that retrying will not fix.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}
