package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
)

// OrderSnapshot carries the fields every order event exposes to consumers.
type OrderSnapshot struct {
	OrderID       uuid.UUID           `json:"order_id"`
	StoreID       uuid.UUID           `json:"store_id"`
	Token         string              `json:"token"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	BuyerKind     enums.BuyerKind     `json:"buyer_kind"`
	BuyerName     *string             `json:"buyer_name,omitempty"`
	BuyerPhone    *string             `json:"buyer_phone,omitempty"`
	TotalCents    int64               `json:"total_cents"`
	Currency      string              `json:"currency"`
}

// Snapshot exposes the embedded snapshot of any order event.
func (s OrderSnapshot) Snapshot() OrderSnapshot {
	return s
}

// OrderCreatedEvent is emitted when a buyer places an order.
type OrderCreatedEvent struct {
	OrderSnapshot
	Delivery  enums.DeliveryMethod `json:"delivery"`
	LineCount int                  `json:"line_count"`
	CreatedAt time.Time            `json:"created_at"`
}

// OrderReviewRequestedEvent is emitted when an order enters the review queue.
type OrderReviewRequestedEvent struct {
	OrderSnapshot
	RequestedAt time.Time `json:"requested_at"`
	HasProof    bool      `json:"has_proof"`
}

// OrderDecidedEvent is emitted once per order when the vendor decides it.
type OrderDecidedEvent struct {
	OrderSnapshot
	Outcome   enums.DecisionOutcome `json:"outcome"`
	DecidedBy uuid.UUID             `json:"decided_by"`
	DecidedAt time.Time             `json:"decided_at"`
}

// OrderCancelledEvent is emitted when the buyer cancels an undecided order.
type OrderCancelledEvent struct {
	OrderSnapshot
	Reason      enums.CancellationReason `json:"reason"`
	CancelledAt time.Time                `json:"cancelled_at"`
}

// OrderExpiredEvent is emitted by the TTL job for abandoned PENDING orders.
type OrderExpiredEvent struct {
	OrderSnapshot
	ExpiredAt time.Time `json:"expired_at"`
}

// OrderReviewStaleEvent nudges the vendor about an order waiting in review.
type OrderReviewStaleEvent struct {
	OrderSnapshot
	RequestedAt  time.Time `json:"requested_at"`
	StoreName    string    `json:"store_name"`
	StorePhone   *string   `json:"store_phone,omitempty"`
	WaitingHours int       `json:"waiting_hours"`
}

// OrderFulfillmentUpdatedEvent is emitted when a confirmed order ships or is delivered.
type OrderFulfillmentUpdatedEvent struct {
	OrderSnapshot
	PreviousStatus enums.OrderStatus `json:"previous_status"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// StockRestockedEvent is emitted when a vendor adds stock.
type StockRestockedEvent struct {
	StoreID     uuid.UUID  `json:"store_id"`
	ProductID   uuid.UUID  `json:"product_id"`
	VariantID   *uuid.UUID `json:"variant_id,omitempty"`
	Quantity    int        `json:"quantity"`
	StockBefore int        `json:"stock_before"`
	StockAfter  int        `json:"stock_after"`
}
