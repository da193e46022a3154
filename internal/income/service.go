package income

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/orderdesk-backend/pkg/db/models"
	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/orderdesk-backend/pkg/errors"
	"github.com/angelmondragon/orderdesk-backend/pkg/money"
)

type orderReader interface {
	ListIncome(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]models.Order, error)
}

type storeReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

// Range is a half-open [From, To) window on decision time.
type Range struct {
	From time.Time
	To   time.Time
}

// Entry is one order counted as income.
type Entry struct {
	OrderID    uuid.UUID              `json:"order_id"`
	Token      string                 `json:"token"`
	Status     enums.OrderStatus      `json:"status"`
	Outcome    *enums.DecisionOutcome `json:"outcome,omitempty"`
	BuyerName  *string                `json:"buyer_name,omitempty"`
	TotalCents int64                  `json:"total_cents"`
	DecidedAt  time.Time              `json:"decided_at"`
}

// Report aggregates a store's income over a range.
type Report struct {
	StoreID      uuid.UUID `json:"store_id"`
	StoreName    string    `json:"store_name"`
	From         time.Time `json:"from"`
	To           time.Time `json:"to"`
	Orders       []Entry   `json:"orders"`
	Count        int       `json:"count"`
	TotalCents   int64     `json:"total"`
	Currency     string    `json:"currency"`
	TotalDisplay string    `json:"total_display"`
}

// Service computes income reports. It never writes.
type Service struct {
	orders orderReader
	stores storeReader
}

func NewService(orders orderReader, stores storeReader) (*Service, error) {
	if orders == nil {
		return nil, fmt.Errorf("orders reader required")
	}
	if stores == nil {
		return nil, fmt.Errorf("stores reader required")
	}
	return &Service{orders: orders, stores: stores}, nil
}

// Report lists paid, confirmed-or-later orders decided within the range.
func (s *Service) Report(ctx context.Context, storeID uuid.UUID, r Range) (*Report, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	if r.From.IsZero() || r.To.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from and to are required")
	}
	if !r.From.Before(r.To) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from must be before to").
			WithDetails(map[string]any{"from": r.From, "to": r.To})
	}

	store, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}

	orders, err := s.orders.ListIncome(ctx, storeID, r.From.UTC(), r.To.UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list income orders")
	}

	report := &Report{
		StoreID:   store.ID,
		StoreName: store.Name,
		From:      r.From.UTC(),
		To:        r.To.UTC(),
		Orders:    make([]Entry, 0, len(orders)),
		Currency:  store.Currency,
	}
	for _, order := range orders {
		if order.DecidedAt == nil {
			continue
		}
		report.Orders = append(report.Orders, Entry{
			OrderID:    order.ID,
			Token:      order.Token,
			Status:     order.Status,
			Outcome:    order.DecisionOutcome,
			BuyerName:  order.BuyerName,
			TotalCents: order.TotalCents,
			DecidedAt:  order.DecidedAt.UTC(),
		})
		report.TotalCents += order.TotalCents
	}
	report.Count = len(report.Orders)
	report.TotalDisplay = money.FormatMinor(report.TotalCents, report.Currency)
	return report, nil
}
