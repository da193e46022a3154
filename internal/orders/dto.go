package orders

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/orderdesk-backend/pkg/db/models"
	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
	"github.com/angelmondragon/orderdesk-backend/pkg/outbox/payloads"
)

// LineInput is one requested product (or variant) and quantity.
type LineInput struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
}

// CreateOrderInput carries what a buyer may choose. Prices, names and
// shipping always come from the catalog and the store.
type CreateOrderInput struct {
	StoreID     uuid.UUID
	BuyerUserID *uuid.UUID
	Delivery    enums.DeliveryMethod
	Items       []LineInput
	BuyerName   *string
	BuyerPhone  *string
	BuyerEmail  *string
}

// AttachBuyerInput updates the buyer contact snapshot.
type AttachBuyerInput struct {
	UserID *uuid.UUID
	Name   *string
	Phone  *string
	Email  *string
}

// AdvanceFulfillmentInput moves a confirmed order forward.
type AdvanceFulfillmentInput struct {
	Ref          Ref
	Target       enums.OrderStatus
	ActorUserID  uuid.UUID
	ActorStoreID uuid.UUID
}

// Snapshot projects the consumer facing fields of an order.
func Snapshot(order *models.Order) payloads.OrderSnapshot {
	return payloads.OrderSnapshot{
		OrderID:       order.ID,
		StoreID:       order.StoreID,
		Token:         order.Token,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		BuyerKind:     order.BuyerKind,
		BuyerName:     order.BuyerName,
		BuyerPhone:    order.BuyerPhone,
		TotalCents:    order.TotalCents,
		Currency:      order.Currency,
	}
}
