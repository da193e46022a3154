package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/orderdesk-backend/pkg/db/models"
)

// Repository manages stock rows and the stock movement log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
	LockProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	LockVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
	SwapProductStock(ctx context.Context, id uuid.UUID, version int64, stock int) (bool, error)
	SwapVariantStock(ctx context.Context, id uuid.UUID, version int64, stock int) (bool, error)
	RecordMovement(ctx context.Context, movement *models.StockMovement) error
	ListMovements(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, limit int) ([]models.StockMovement, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.WithContext(ctx).First(&variant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

// LockProduct reads the product row with SELECT ... FOR UPDATE.
func (r *repository) LockProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// LockVariant reads the variant row with SELECT ... FOR UPDATE.
func (r *repository) LockVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&variant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

// SwapProductStock writes stock only if the row still carries version. It
// reports false when another writer got there first.
func (r *repository) SwapProductStock(ctx context.Context, id uuid.UUID, version int64, stock int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]any{
			"stock":      stock,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) SwapVariantStock(ctx context.Context, id uuid.UUID, version int64, stock int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]any{
			"stock":      stock,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) RecordMovement(ctx context.Context, movement *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// ListMovements returns the newest movements of a product row, or of one of its
// variants, newest first. A non-positive limit returns every movement.
func (r *repository) ListMovements(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, limit int) ([]models.StockMovement, error) {
	query := r.db.WithContext(ctx).Where("product_id = ?", productID)
	if variantID == nil {
		query = query.Where("variant_id IS NULL")
	} else {
		query = query.Where("variant_id = ?", *variantID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var movements []models.StockMovement
	if err := query.Order("created_at DESC").Order("id DESC").Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}
