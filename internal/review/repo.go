package review

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/orderdesk-backend/pkg/db/models"
	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
	"github.com/angelmondragon/orderdesk-backend/pkg/pagination"
)

const queueTimeExpr = "COALESCE(requested_at, created_at)"

// QueueQuery selects undecided orders of one store.
type QueueQuery struct {
	StoreID  uuid.UUID
	Statuses []enums.OrderStatus
	From     *time.Time
	To       *time.Time
	After    *pagination.Cursor
	Limit    int
}

// Repository reads the review queue.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a queue repository bound to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListQueue returns orders oldest first by the time they entered the queue.
func (r *Repository) ListQueue(ctx context.Context, q QueueQuery) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("store_id = ? AND decided_at IS NULL", q.StoreID).
		Where("status IN ?", q.Statuses)
	if q.From != nil {
		query = query.Where(queueTimeExpr+" >= ?", *q.From)
	}
	if q.To != nil {
		query = query.Where(queueTimeExpr+" < ?", *q.To)
	}
	if q.After != nil {
		query = query.Where(
			"(("+queueTimeExpr+" > ?) OR ("+queueTimeExpr+" = ? AND id > ?))",
			q.After.At, q.After.At, q.After.ID,
		)
	}

	var orders []models.Order
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order(queueTimeExpr + " ASC").
		Order("id ASC").
		Limit(q.Limit).
		Find(&orders).Error
	return orders, err
}
