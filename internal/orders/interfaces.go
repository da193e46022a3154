package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/orderdesk-backend/pkg/db/models"
	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
)

// Repository defines persistence operations for orders and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	CreateLines(ctx context.Context, lines []models.OrderLine) error
	FindByRef(ctx context.Context, ref Ref) (*models.Order, error)
	LockByRef(ctx context.Context, ref Ref) (*models.Order, error)
	UpdateUndecided(ctx context.Context, orderID uuid.UUID, updates map[string]any) (int64, error)
	UpdateFromStatus(ctx context.Context, orderID uuid.UUID, from enums.OrderStatus, updates map[string]any) (int64, error)
	ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
	ListInReviewQueuedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
}

type storeReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Store, error)
}

type catalogReader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
