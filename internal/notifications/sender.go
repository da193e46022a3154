package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/orderdesk-backend/pkg/messaging"
)

const (
	defaultAttempts = 3
	defaultBackoff  = 500 * time.Millisecond
	maxBackoff      = 30 * time.Second
)

// RetryingSender retries retryable channel failures with exponential backoff.
type RetryingSender struct {
	channel  messaging.Channel
	attempts int
	backoff  time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewRetryingSender wraps channel. Non-positive attempts or backoff fall back to defaults.
func NewRetryingSender(channel messaging.Channel, attempts int, backoff time.Duration) (*RetryingSender, error) {
	if channel == nil {
		return nil, fmt.Errorf("messaging channel required")
	}
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	return &RetryingSender{channel: channel, attempts: attempts, backoff: backoff, sleep: sleepContext}, nil
}

// Send returns the final status, the number of attempts made and the last error.
func (s *RetryingSender) Send(ctx context.Context, phone, body string) (messaging.DeliveryStatus, int, error) {
	var (
		status messaging.DeliveryStatus
		err    error
	)
	wait := s.backoff
	for attempt := 1; attempt <= s.attempts; attempt++ {
		status, err = s.channel.Send(ctx, phone, body)
		if err == nil {
			return status, attempt, nil
		}
		if !messaging.IsRetryable(err) || attempt == s.attempts {
			return status, attempt, err
		}
		if sleepErr := s.sleep(ctx, wait); sleepErr != nil {
			return status, attempt, err
		}
		wait *= 2
		if wait > maxBackoff {
			wait = maxBackoff
		}
	}
	return status, s.attempts, err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
