package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// AcquireLock claims name for owner until ttl elapses. It returns false
// while someone else holds it.
func (c *Client) AcquireLock(ctx context.Context, name, owner string, ttl time.Duration) (bool, error) {
	if owner == "" {
		return false, errors.New("lock owner is required")
	}
	return c.SetNX(ctx, c.LockKey(name), owner, ttl)
}

// ReleaseLock drops name only when owner still holds it, so a holder whose
// lease expired cannot release its successor's lock. Releasing an absent
// lock is a no-op.
func (c *Client) ReleaseLock(ctx context.Context, name, owner string) error {
	key := c.LockKey(name)
	holder, err := c.Get(ctx, key)
	switch {
	case errors.Is(err, redis.Nil):
		return nil
	case err != nil:
		return err
	case holder != owner:
		return nil
	}
	return c.Del(ctx, key)
}
