package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/orderdesk-backend/pkg/db/models"
	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
	"github.com/angelmondragon/orderdesk-backend/pkg/money"
)

// CreateOrderItem is one requested line. Prices are never accepted.
type CreateOrderItem struct {
	ProductID string  `json:"product_id" validate:"required,uuid"`
	VariantID *string `json:"variant_id" validate:"omitempty,uuid"`
	Quantity  int     `json:"quantity" validate:"required,min=1,max=10000"`
}

// CreateOrderRequest is the body of POST /orders.
type CreateOrderRequest struct {
	StoreID    string            `json:"store_id" validate:"required,uuid"`
	Delivery   string            `json:"delivery" validate:"omitempty,oneof=SHIPPING PICKUP shipping pickup"`
	Items      []CreateOrderItem `json:"items" validate:"required,min=1,dive"`
	BuyerName  *string           `json:"buyer_name" validate:"omitempty,max=120"`
	BuyerPhone *string           `json:"buyer_phone" validate:"omitempty,max=32"`
	BuyerEmail *string           `json:"buyer_email" validate:"omitempty,email,max=254"`
}

type AttachProofRequest struct {
	ProofMediaID string `json:"proof_media_id" validate:"required,notblank,max=255"`
}

type AttachBuyerRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=120"`
	Phone *string `json:"phone" validate:"omitempty,max=32"`
	Email *string `json:"email" validate:"omitempty,email,max=254"`
}

type DecisionRequest struct {
	Outcome string `json:"outcome" validate:"required,notblank"`
}

type FulfillmentRequest struct {
	Status string `json:"status" validate:"required,notblank"`
}

// LineResponse is one order line as returned to clients.
type LineResponse struct {
	ProductID      uuid.UUID  `json:"product_id"`
	VariantID      *uuid.UUID `json:"variant_id,omitempty"`
	Name           string     `json:"name"`
	Quantity       int        `json:"quantity"`
	UnitPriceCents int64      `json:"unit_price_cents"`
	UnitTotalCents int64      `json:"unit_total_cents"`
}

// OrderResponse is the public projection of an order.
type OrderResponse struct {
	ID                 uuid.UUID                 `json:"id"`
	StoreID            uuid.UUID                 `json:"store_id"`
	Token              string                    `json:"token"`
	Status             enums.OrderStatus         `json:"status"`
	PaymentStatus      enums.PaymentStatus       `json:"payment_status"`
	BuyerKind          enums.BuyerKind           `json:"buyer_kind"`
	BuyerName          *string                   `json:"buyer_name,omitempty"`
	BuyerPhone         *string                   `json:"buyer_phone,omitempty"`
	BuyerEmail         *string                   `json:"buyer_email,omitempty"`
	Delivery           enums.DeliveryMethod      `json:"delivery"`
	Currency           string                    `json:"currency"`
	SubtotalCents      int64                     `json:"subtotal_cents"`
	ShippingCostCents  int64                     `json:"shipping_cost_cents"`
	TotalCents         int64                     `json:"total_cents"`
	TotalDisplay       string                    `json:"total_display"`
	HasProof           bool                      `json:"has_proof"`
	ProofMediaID       *string                   `json:"proof_media_id,omitempty"`
	DecisionOutcome    *enums.DecisionOutcome    `json:"decision_outcome,omitempty"`
	CancellationReason *enums.CancellationReason `json:"cancellation_reason,omitempty"`
	Items              []LineResponse            `json:"items"`
	RequestedAt        *time.Time                `json:"requested_at,omitempty"`
	DecidedAt          *time.Time                `json:"decided_at,omitempty"`
	ShippedAt          *time.Time                `json:"shipped_at,omitempty"`
	DeliveredAt        *time.Time                `json:"delivered_at,omitempty"`
	CreatedAt          time.Time                 `json:"created_at"`
}

// NewOrderResponse projects an order model.
func NewOrderResponse(order *models.Order) OrderResponse {
	items := make([]LineResponse, 0, len(order.Items))
	for _, line := range order.Items {
		items = append(items, LineResponse{
			ProductID:      line.ProductID,
			VariantID:      line.VariantID,
			Name:           line.Name,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
			UnitTotalCents: line.UnitTotalCents,
		})
	}
	return OrderResponse{
		ID:                 order.ID,
		StoreID:            order.StoreID,
		Token:              order.Token,
		Status:             order.Status,
		PaymentStatus:      order.PaymentStatus,
		BuyerKind:          order.BuyerKind,
		BuyerName:          order.BuyerName,
		BuyerPhone:         order.BuyerPhone,
		BuyerEmail:         order.BuyerEmail,
		Delivery:           order.Delivery,
		Currency:           order.Currency,
		SubtotalCents:      order.SubtotalCents,
		ShippingCostCents:  order.ShippingCostCents,
		TotalCents:         order.TotalCents,
		TotalDisplay:       money.FormatMinor(order.TotalCents, order.Currency),
		HasProof:           order.HasProof(),
		ProofMediaID:       order.ProofMediaID,
		DecisionOutcome:    order.DecisionOutcome,
		CancellationReason: order.CancellationReason,
		Items:              items,
		RequestedAt:        order.RequestedAt,
		DecidedAt:          order.DecidedAt,
		ShippedAt:          order.ShippedAt,
		DeliveredAt:        order.DeliveredAt,
		CreatedAt:          order.CreatedAt,
	}
}

// PendingPage is one page of the vendor review queue.
type PendingPage struct {
	Orders     []OrderResponse `json:"orders"`
	NextCursor string          `json:"next_cursor,omitempty"`
}
