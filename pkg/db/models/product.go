package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a sellable catalog entry. Stock lives on the product unless the
// buyer picks a variant, in which case the variant row carries it.
type Product struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID    uuid.UUID        `gorm:"column:store_id;type:uuid;not null"`
	Name       string           `gorm:"column:name;not null"`
	PriceCents int64            `gorm:"column:price_cents;not null"`
	Stock      int              `gorm:"column:stock;not null;default:0"`
	Version    int64            `gorm:"column:version;not null;default:0"`
	Variants   []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductVariant is a purchasable option of a product with its own stock.
type ProductVariant struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Name       string    `gorm:"column:name;not null"`
	PriceCents *int64    `gorm:"column:price_cents"`
	Stock      int       `gorm:"column:stock;not null;default:0"`
	Version    int64     `gorm:"column:version;not null;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectivePriceCents falls back to the parent product price.
func (v ProductVariant) EffectivePriceCents(product Product) int64 {
	if v.PriceCents != nil {
		return *v.PriceCents
	}
	return product.PriceCents
}
