package redis

import (
	"context"
	"time"
)

// noExpiry is what TTL reports for a key that exists without an expiry.
const noExpiry = time.Duration(-1)

// FixedWindowAllow counts a hit against scope and reports whether the count
// is still within limit for the current window. The window starts at the
// first hit. A counter that lost its expiry (for instance when EXPIRE failed
// after INCR) gets it back on the next hit instead of blocking forever.
func (c *Client) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	if c.store == nil {
		return false, 0, errNotInitialized
	}
	key := c.RateLimitKey(scope)
	count, err := c.store.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if window > 0 {
		if err := c.ensureExpiry(ctx, key, count, window); err != nil {
			return false, count, err
		}
	}
	return count <= limit, count, nil
}

func (c *Client) ensureExpiry(ctx context.Context, key string, count int64, window time.Duration) error {
	if count > 1 {
		remaining, err := c.store.TTL(ctx, key).Result()
		if err != nil || remaining != noExpiry {
			return err
		}
	}
	return c.store.Expire(ctx, key, window).Err()
}
