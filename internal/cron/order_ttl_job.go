package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/orderdesk-backend/pkg/logger"
)

const (
	defaultPendingTTL       = 72 * time.Hour
	defaultReviewNudgeAfter = 24 * time.Hour
	defaultTTLBatchSize     = 200
)

type orderLifecycle interface {
	ExpirePending(ctx context.Context, cutoff time.Time, limit int) (int, error)
	NudgeStaleReviews(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

// OrderTTLJobParams configure the order expiry and review nudge job.
type OrderTTLJobParams struct {
	Logger           *logger.Logger
	Orders           orderLifecycle
	PendingTTL       time.Duration
	ReviewNudgeAfter time.Duration
	BatchSize        int
	Now              func() time.Time
}

// NewOrderTTLJob builds the job that expires abandoned PENDING orders and
// nudges vendors about orders waiting in review.
func NewOrderTTLJob(params OrderTTLJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	job := &orderTTLJob{
		logg:       params.Logger,
		orders:     params.Orders,
		pendingTTL: params.PendingTTL,
		nudgeAfter: params.ReviewNudgeAfter,
		batchSize:  params.BatchSize,
		now:        params.Now,
	}
	if job.pendingTTL <= 0 {
		job.pendingTTL = defaultPendingTTL
	}
	if job.nudgeAfter <= 0 {
		job.nudgeAfter = defaultReviewNudgeAfter
	}
	if job.batchSize <= 0 {
		job.batchSize = defaultTTLBatchSize
	}
	if job.now == nil {
		job.now = time.Now
	}
	return job, nil
}

type orderTTLJob struct {
	logg       *logger.Logger
	orders     orderLifecycle
	pendingTTL time.Duration
	nudgeAfter time.Duration
	batchSize  int
	now        func() time.Time
}

func (j *orderTTLJob) Name() string { return "order-ttl" }

// Run expires and nudges in one pass. A failure in one phase does not skip the other.
func (j *orderTTLJob) Run(ctx context.Context) error {
	now := j.now().UTC()

	var errs error
	expired, err := j.orders.ExpirePending(ctx, now.Add(-j.pendingTTL), j.batchSize)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("expire pending: %w", err))
	}
	nudged, err := j.orders.NudgeStaleReviews(ctx, now.Add(-j.nudgeAfter), j.batchSize)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("nudge stale reviews: %w", err))
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"expired":  expired,
		"nudged":   nudged,
		"failures": len(multierr.Errors(errs)),
	}), "orders.ttl_complete")
	return errs
}
