package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/orderdesk-backend/pkg/db/models"
	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/orderdesk-backend/pkg/errors"
	"github.com/angelmondragon/orderdesk-backend/pkg/pagination"
)

var queueStatuses = map[enums.OrderStatus]struct{}{
	enums.OrderStatusPending:  {},
	enums.OrderStatusInReview: {},
}

// Filters narrows the pending queue. Statuses outside PENDING and IN_REVIEW
// never match because decided orders are always excluded.
type Filters struct {
	Statuses []string
	From     *time.Time
	To       *time.Time
	Limit    int
	Cursor   string
}

// Page is one slice of the queue.
type Page struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

type queueReader interface {
	ListQueue(ctx context.Context, q QueueQuery) ([]models.Order, error)
}

// Service exposes the vendor review queue.
type Service struct {
	repo queueReader
}

// NewService wires the review queue service.
func NewService(repo queueReader) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("review repository required")
	}
	return &Service{repo: repo}, nil
}

// ListPending returns undecided orders of storeID in FIFO queue order.
func (s *Service) ListPending(ctx context.Context, storeID uuid.UUID, filters Filters) (*Page, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if filters.From != nil && filters.To != nil && !filters.From.Before(*filters.To) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from must be before to")
	}
	cursor, err := pagination.Decode(filters.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	statuses := queueFilter(filters.Statuses)
	if len(statuses) == 0 {
		return &Page{Orders: []models.Order{}}, nil
	}

	rows, err := s.repo.ListQueue(ctx, QueueQuery{
		StoreID:  storeID,
		Statuses: statuses,
		From:     filters.From,
		To:       filters.To,
		After:    cursor,
		Limit:    pagination.Probe(filters.Limit),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list review queue")
	}

	orders, more := pagination.Trim(rows, filters.Limit)
	page := &Page{Orders: orders}
	if more {
		last := orders[len(orders)-1]
		page.NextCursor = pagination.Cursor{At: QueuedAt(last), ID: last.ID}.Encode()
	}
	if page.Orders == nil {
		page.Orders = []models.Order{}
	}
	return page, nil
}

// QueuedAt is when the order entered the queue.
func QueuedAt(order models.Order) time.Time {
	if order.RequestedAt != nil {
		return *order.RequestedAt
	}
	return order.CreatedAt
}

// queueFilter keeps the requested statuses that can still be in the queue.
// No request means IN_REVIEW only.
func queueFilter(requested []string) []enums.OrderStatus {
	if len(requested) == 0 {
		return []enums.OrderStatus{enums.OrderStatusInReview}
	}
	var out []enums.OrderStatus
	seen := map[enums.OrderStatus]struct{}{}
	for _, raw := range requested {
		status, err := enums.ParseOrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
		if err != nil {
			continue
		}
		if _, ok := queueStatuses[status]; !ok {
			continue
		}
		if _, dup := seen[status]; dup {
			continue
		}
		seen[status] = struct{}{}
		out = append(out, status)
	}
	return out
}
