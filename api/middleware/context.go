package middleware

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey int

const (
	keyUserID ctxKey = iota
	keyRole
	keyStoreID
	keyRequestID
)

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

func withValue(ctx context.Context, key ctxKey, v string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, v)
}

func uuidValue(ctx context.Context, key ctxKey) (uuid.UUID, bool) {
	id, err := uuid.Parse(stringValue(ctx, key))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func UserIDFromContext(ctx context.Context) string  { return stringValue(ctx, keyUserID) }
func RoleFromContext(ctx context.Context) string    { return stringValue(ctx, keyRole) }
func StoreIDFromContext(ctx context.Context) string { return stringValue(ctx, keyStoreID) }

// RequestIDFromContext returns the id assigned by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string { return stringValue(ctx, keyRequestID) }

// UserUUIDFromContext parses the authenticated user id, if any.
func UserUUIDFromContext(ctx context.Context) (uuid.UUID, bool) { return uuidValue(ctx, keyUserID) }

// StoreUUIDFromContext parses the vendor's active store id, if any.
func StoreUUIDFromContext(ctx context.Context) (uuid.UUID, bool) { return uuidValue(ctx, keyStoreID) }

func WithUserID(ctx context.Context, userID string) context.Context {
	return withValue(ctx, keyUserID, userID)
}

func WithRole(ctx context.Context, role string) context.Context {
	return withValue(ctx, keyRole, role)
}

func WithStoreID(ctx context.Context, storeID string) context.Context {
	return withValue(ctx, keyStoreID, storeID)
}
