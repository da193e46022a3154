package orders

import (
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/orderdesk-backend/pkg/errors"
)

// Ref addresses an order either by id or by its public token.
type Ref struct {
	ID    uuid.UUID
	Token string
}

// ParseRef accepts an order id or a token.
func ParseRef(raw string) (Ref, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Ref{}, pkgerrors.New(pkgerrors.CodeValidation, "order reference required")
	}
	if id, err := uuid.Parse(raw); err == nil {
		return Ref{ID: id}, nil
	}
	return Ref{Token: raw}, nil
}

// TokenRef addresses an order strictly by token, so public callers cannot
// reach an order through its internal id.
func TokenRef(raw string) (Ref, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Ref{}, pkgerrors.New(pkgerrors.CodeValidation, "order token required")
	}
	return Ref{Token: raw}, nil
}

// IDRef addresses an order by id.
func IDRef(id uuid.UUID) Ref {
	return Ref{ID: id}
}

func (r Ref) String() string {
	if r.ID != uuid.Nil {
		return r.ID.String()
	}
	return r.Token
}

func (r Ref) isZero() bool {
	return r.ID == uuid.Nil && r.Token == ""
}
