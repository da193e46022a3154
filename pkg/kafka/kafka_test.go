package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/orderdesk-backend/pkg/eventbus"
)

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestProducerPublishMapsAttributesToHeaders(t *testing.T) {
	writer := &fakeWriter{}
	producer := &Producer{writer: writer}

	err := producer.Publish(context.Background(), "orders", eventbus.Message{
		Data: []byte(`{"ok":true}`),
		Attributes: map[string]string{
			eventbus.AttrEventID:     "evt-1",
			eventbus.AttrAggregateID: "order-1",
		},
	})
	require.NoError(t, err)
	require.Len(t, writer.msgs, 1)

	msg := writer.msgs[0]
	require.Equal(t, "orders", msg.Topic)
	require.Equal(t, "order-1", string(msg.Key))
	require.Equal(t, "evt-1", toEventbusMessage(msg).ID)
}

func TestProducerPublishClassifiesErrors(t *testing.T) {
	writer := &fakeWriter{err: kafka.WriteErrors{kafka.MessageSizeTooLarge}}
	producer := &Producer{writer: writer}

	err := producer.Publish(context.Background(), "orders", eventbus.Message{Data: []byte("x")})
	require.True(t, eventbus.IsPermanent(err))

	writer.err = kafka.LeaderNotAvailable
	err = producer.Publish(context.Background(), "orders", eventbus.Message{Data: []byte("x")})
	require.Error(t, err)
	require.False(t, eventbus.IsPermanent(err))

	err = producer.Publish(context.Background(), "", eventbus.Message{})
	require.True(t, eventbus.IsPermanent(err))
}

type fakeReader struct {
	mu        sync.Mutex
	pending   []kafka.Message
	committed []kafka.Message
	cancel    context.CancelFunc
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	if len(f.pending) == 0 {
		f.mu.Unlock()
		f.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := f.pending[0]
	f.pending = f.pending[1:]
	f.mu.Unlock()
	return msg, nil
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, msgs...)
	return nil
}

func (f *fakeReader) Close() error { return nil }

func TestConsumerRetriesThenCommits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := &fakeReader{
		cancel: cancel,
		pending: []kafka.Message{
			{Topic: "orders", Offset: 1, Value: []byte("a"), Headers: []kafka.Header{{Key: eventbus.AttrEventID, Value: []byte("evt-a")}}},
			{Topic: "orders", Offset: 2, Value: []byte("b"), Headers: []kafka.Header{{Key: eventbus.AttrEventID, Value: []byte("evt-b")}}},
		},
	}
	consumer := &Consumer{reader: reader, attempts: 3, backoff: time.Millisecond}

	calls := map[string]int{}
	err := consumer.Receive(ctx, func(_ context.Context, msg eventbus.Message) error {
		calls[msg.ID]++
		if msg.ID == "evt-a" {
			return errors.New("downstream unavailable")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls["evt-a"])
	require.Equal(t, 1, calls["evt-b"])
	require.Len(t, reader.committed, 2)
}

func TestConsumerStopsRetryingPermanentErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := &fakeReader{
		cancel:  cancel,
		pending: []kafka.Message{{Topic: "orders", Value: []byte("a")}},
	}
	consumer := &Consumer{reader: reader, attempts: 5, backoff: time.Millisecond}

	calls := 0
	err := consumer.Receive(ctx, func(context.Context, eventbus.Message) error {
		calls++
		return eventbus.Permanent(errors.New("bad payload"))
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
	require.Len(t, reader.committed, 1)
}
