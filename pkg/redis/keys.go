package redis

import "strings"

// DefaultKeyspace prefixes every key when no prefix is configured.
const DefaultKeyspace Keyspace = "od"

// Keyspace namespaces keys as "<prefix>:<kind>:<part>...". Blank parts are
// dropped.
type Keyspace string

func (k Keyspace) build(kind string, parts ...string) string {
	prefix := strings.TrimSpace(string(k))
	if prefix == "" {
		prefix = string(DefaultKeyspace)
	}
	out := make([]string, 0, len(parts)+2)
	out = append(out, prefix, kind)
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, ":")
}

func (c *Client) IdempotencyKey(scope, id string) string {
	return c.keys.build("idempotency", scope, id)
}

func (c *Client) RateLimitKey(scope string) string {
	return c.keys.build("rate_limit", scope)
}

func (c *Client) LockKey(name string) string {
	return c.keys.build("lock", name)
}

func (c *Client) AccessSessionKey(accessID string) string {
	return c.keys.build("session", "access", accessID)
}
