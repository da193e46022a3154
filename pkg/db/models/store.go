package models

import (
	"time"

	"github.com/google/uuid"
)

// Store is the vendor tenant that owns products and receives orders.
type Store struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name              string    `gorm:"column:name;not null"`
	Slug              string    `gorm:"column:slug;not null;uniqueIndex"`
	OwnerUserID       uuid.UUID `gorm:"column:owner_user_id;type:uuid;not null"`
	ContactPhone      *string   `gorm:"column:contact_phone"`
	FlatShippingCents int64     `gorm:"column:flat_shipping_cents;not null;default:0"`
	Currency          string    `gorm:"column:currency;not null;default:'MXN'"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
