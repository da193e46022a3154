package income

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/orderdesk-backend/pkg/db/models"
	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
)

// IncomeStatuses are the order statuses whose paid orders count as income.
var IncomeStatuses = []enums.OrderStatus{
	enums.OrderStatusConfirmed,
	enums.OrderStatusShipped,
	enums.OrderStatusDelivered,
}

// Repository reads income-bearing orders.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListIncome returns paid orders of the store decided within [from, to),
// oldest decision first.
func (r *Repository) ListIncome(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Where("payment_status = ?", enums.PaymentStatusPaid).
		Where("status IN ?", IncomeStatuses).
		Where("decided_at >= ? AND decided_at < ?", from, to).
		Order("decided_at ASC").
		Order("id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
