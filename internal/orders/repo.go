package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/orderdesk-backend/pkg/db/models"
	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *repository) CreateLines(ctx context.Context, lines []models.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

func (r *repository) FindByRef(ctx context.Context, ref Ref) (*models.Order, error) {
	return r.find(r.db.WithContext(ctx), ref)
}

// LockByRef loads the order with SELECT ... FOR UPDATE.
func (r *repository) LockByRef(ctx context.Context, ref Ref) (*models.Order, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), ref)
}

func (r *repository) find(query *gorm.DB, ref Ref) (*models.Order, error) {
	if ref.isZero() {
		return nil, gorm.ErrRecordNotFound
	}
	if ref.ID != uuid.Nil {
		query = query.Where("id = ?", ref.ID)
	} else {
		query = query.Where("token = ?", ref.Token)
	}
	var order models.Order
	if err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateUndecided applies updates only while decided_at is still NULL and
// returns the affected row count.
func (r *repository) UpdateUndecided(ctx context.Context, orderID uuid.UUID, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND decided_at IS NULL", orderID).
		Updates(withUpdatedAt(updates))
	return res.RowsAffected, res.Error
}

// UpdateFromStatus applies updates only while the order is still in status from.
func (r *repository) UpdateFromStatus(ctx context.Context, orderID uuid.UUID, from enums.OrderStatus, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(withUpdatedAt(updates))
	return res.RowsAffected, res.Error
}

func (r *repository) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND decided_at IS NULL AND created_at < ?", enums.OrderStatusPending, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

// ListInReviewQueuedBefore returns IN_REVIEW orders that entered the queue before cutoff.
func (r *repository) ListInReviewQueuedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND decided_at IS NULL AND COALESCE(requested_at, created_at) < ?", enums.OrderStatusInReview, cutoff).
		Order("COALESCE(requested_at, created_at) ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func withUpdatedAt(updates map[string]any) map[string]any {
	out := make(map[string]any, len(updates)+1)
	for k, v := range updates {
		out[k] = v
	}
	if _, ok := out["updated_at"]; !ok {
		out["updated_at"] = time.Now().UTC()
	}
	return out
}
