package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/multierr"
)

type fakeLifecycle struct {
	expireCutoff time.Time
	nudgeCutoff  time.Time
	limits       []int
	expireErr    error
	nudgeErr     error
}

func (f *fakeLifecycle) ExpirePending(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	f.expireCutoff = cutoff
	f.limits = append(f.limits, limit)
	return 2, f.expireErr
}

func (f *fakeLifecycle) NudgeStaleReviews(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	f.nudgeCutoff = cutoff
	f.limits = append(f.limits, limit)
	return 1, f.nudgeErr
}

func TestOrderTTLJobComputesCutoffs(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	orders := &fakeLifecycle{}
	job, err := NewOrderTTLJob(OrderTTLJobParams{Logger: testLogger(), Orders: orders, Now: func() time.Time { return now }})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if job.Name() != "order-ttl" {
		t.Fatalf("unexpected name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !orders.expireCutoff.Equal(now.Add(-72 * time.Hour)) {
		t.Fatalf("unexpected expire cutoff %s", orders.expireCutoff)
	}
	if !orders.nudgeCutoff.Equal(now.Add(-24 * time.Hour)) {
		t.Fatalf("unexpected nudge cutoff %s", orders.nudgeCutoff)
	}
	if len(orders.limits) != 2 || orders.limits[0] != defaultTTLBatchSize {
		t.Fatalf("unexpected limits %v", orders.limits)
	}
}

func TestOrderTTLJobRunsBothPhasesAndCombinesErrors(t *testing.T) {
	orders := &fakeLifecycle{expireErr: errors.New("expire boom"), nudgeErr: errors.New("nudge boom")}
	job, err := NewOrderTTLJob(OrderTTLJobParams{
		Logger:           testLogger(),
		Orders:           orders,
		PendingTTL:       time.Hour,
		ReviewNudgeAfter: time.Minute,
		BatchSize:        10,
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	err = job.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("expected 2 combined errors, got %d: %v", got, err)
	}
	if orders.nudgeCutoff.IsZero() {
		t.Fatalf("nudge phase skipped after expire failure")
	}
}
