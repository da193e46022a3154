package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
)

// Order is a buyer's purchase from a single store. Monetary amounts are
// integer minor units and are fixed at creation.
type Order struct {
	ID                 uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID            uuid.UUID                 `gorm:"column:store_id;type:uuid;not null"`
	Token              string                    `gorm:"column:token;not null;uniqueIndex"`
	BuyerKind          enums.BuyerKind           `gorm:"column:buyer_kind;type:buyer_kind_enum;not null"`
	BuyerUserID        *uuid.UUID                `gorm:"column:buyer_user_id;type:uuid"`
	BuyerName          *string                   `gorm:"column:buyer_name"`
	BuyerPhone         *string                   `gorm:"column:buyer_phone"`
	BuyerEmail         *string                   `gorm:"column:buyer_email"`
	Status             enums.OrderStatus         `gorm:"column:status;type:order_status_enum;not null;default:'PENDING'"`
	PaymentStatus      enums.PaymentStatus       `gorm:"column:payment_status;type:payment_status_enum;not null;default:'UNPAID'"`
	Delivery           enums.DeliveryMethod      `gorm:"column:delivery;type:delivery_method_enum;not null"`
	Currency           string                    `gorm:"column:currency;not null"`
	SubtotalCents      int64                     `gorm:"column:subtotal_cents;not null"`
	ShippingCostCents  int64                     `gorm:"column:shipping_cost_cents;not null"`
	TotalCents         int64                     `gorm:"column:total_cents;not null"`
	ProofMediaID       *string                   `gorm:"column:proof_media_id"`
	DecisionOutcome    *enums.DecisionOutcome    `gorm:"column:decision_outcome;type:decision_outcome_enum"`
	DecidedBy          *uuid.UUID                `gorm:"column:decided_by;type:uuid"`
	CancellationReason *enums.CancellationReason `gorm:"column:cancellation_reason;type:cancellation_reason_enum"`
	Items              []OrderLine               `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	RequestedAt        *time.Time                `gorm:"column:requested_at"`
	DecidedAt          *time.Time                `gorm:"column:decided_at"`
	ShippedAt          *time.Time                `gorm:"column:shipped_at"`
	DeliveredAt        *time.Time                `gorm:"column:delivered_at"`
	CreatedAt          time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}

// IsDecided reports whether the order already left the review states.
func (o Order) IsDecided() bool {
	return o.DecidedAt != nil
}

// HasProof reports whether a payment proof is attached.
func (o Order) HasProof() bool {
	return o.ProofMediaID != nil && *o.ProofMediaID != ""
}

// OrderLine is one requested product (or variant) within an order.
type OrderLine struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID  `gorm:"column:order_id;type:uuid;not null"`
	Position       int        `gorm:"column:position;not null"`
	ProductID      uuid.UUID  `gorm:"column:product_id;type:uuid;not null"`
	VariantID      *uuid.UUID `gorm:"column:variant_id;type:uuid"`
	Name           string     `gorm:"column:name;not null"`
	Quantity       int        `gorm:"column:quantity;not null"`
	UnitPriceCents int64      `gorm:"column:unit_price_cents;not null"`
	UnitTotalCents int64      `gorm:"column:unit_total_cents;not null"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}
