package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
)

// StockMovement is an append-only record of a stock change.
type StockMovement struct {
	ID          uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID   uuid.UUID                 `gorm:"column:product_id;type:uuid;not null"`
	VariantID   *uuid.UUID                `gorm:"column:variant_id;type:uuid"`
	OrderID     *uuid.UUID                `gorm:"column:order_id;type:uuid"`
	Reason      enums.StockMovementReason `gorm:"column:reason;type:stock_movement_reason_enum;not null"`
	Delta       int                       `gorm:"column:delta;not null"`
	StockBefore int                       `gorm:"column:stock_before;not null"`
	StockAfter  int                       `gorm:"column:stock_after;not null"`
	CreatedAt   time.Time                 `gorm:"column:created_at;autoCreateTime"`
}
