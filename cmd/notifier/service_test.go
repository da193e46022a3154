package main

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/angelmondragon/orderdesk-backend/pkg/logger"
)

type consumerFunc func(ctx context.Context) error

func (f consumerFunc) Run(ctx context.Context) error { return f(ctx) }

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "notifier-test", Output: io.Discard})
}

func TestServiceStopsOnFailedDependency(t *testing.T) {
	ran := false
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Consumer: consumerFunc(func(ctx context.Context) error { ran = true; return nil }),
		Dependencies: map[string]func(context.Context) error{
			"redis": func(context.Context) error { return errors.New("refused") },
		},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if err := svc.Run(context.Background()); err == nil {
		t.Fatal("expected readiness error")
	}
	if ran {
		t.Fatal("consumer must not start before dependencies are ready")
	}
}

func TestServiceReturnsConsumerError(t *testing.T) {
	boom := errors.New("subscription deleted")
	svc, err := NewService(ServiceParams{
		Logger:    testLogger(),
		Consumer:  consumerFunc(func(ctx context.Context) error { return boom }),
		Heartbeat: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if err := svc.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected consumer error, got %v", err)
	}
}

func TestServiceStopsOnCancel(t *testing.T) {
	svc, err := NewService(ServiceParams{
		Logger: testLogger(),
		Consumer: consumerFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := svc.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewServiceRequiresConsumer(t *testing.T) {
	if _, err := NewService(ServiceParams{Logger: testLogger()}); err == nil {
		t.Fatal("expected error without consumer")
	}
}
