package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/orderdesk-backend/pkg/db"
	"github.com/angelmondragon/orderdesk-backend/pkg/db/models"
	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/orderdesk-backend/pkg/errors"
	"github.com/angelmondragon/orderdesk-backend/pkg/logger"
	"github.com/angelmondragon/orderdesk-backend/pkg/outbox"
	"github.com/angelmondragon/orderdesk-backend/pkg/outbox/payloads"
)

const (
	defaultMovementLimit = 20
	maxMovementLimit     = 100
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// DecrementInput removes stock for one accepted order line.
type DecrementInput struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
	OrderID   uuid.UUID
}

// RestockInput adds stock on behalf of a vendor.
type RestockInput struct {
	StoreID     uuid.UUID
	ProductID   uuid.UUID
	VariantID   *uuid.UUID
	Quantity    int
	ActorUserID uuid.UUID
}

// StockLevel is the outcome of a stock change.
type StockLevel struct {
	ProductID   uuid.UUID  `json:"product_id"`
	VariantID   *uuid.UUID `json:"variant_id,omitempty"`
	StockBefore int        `json:"stock_before"`
	StockAfter  int        `json:"stock_after"`
}

// Ledger serializes stock changes with a row lock plus a version
// compare-and-swap and records every change in stock_movements.
type Ledger struct {
	repo   Repository
	tx     txRunner
	outbox eventEmitter
	policy enums.OversellPolicy
	logg   *logger.Logger
}

// NewLedger wires the inventory ledger. An empty policy means clamp.
func NewLedger(repo Repository, tx txRunner, emitter eventEmitter, policy enums.OversellPolicy, logg *logger.Logger) (*Ledger, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if policy == "" {
		policy = enums.OversellClamp
	}
	if !policy.IsValid() {
		return nil, fmt.Errorf("invalid oversell policy %q", policy)
	}
	return &Ledger{
		repo:   repo,
		tx:     tx,
		outbox: emitter,
		policy: policy,
		logg:   logg,
	}, nil
}

// Policy reports the configured oversell policy.
func (l *Ledger) Policy() enums.OversellPolicy {
	return l.policy
}

// Decrement removes stock inside the caller's transaction and returns the new
// stock level. Short stock is clamped to zero or rejected depending on policy.
func (l *Ledger) Decrement(ctx context.Context, tx *gorm.DB, input DecrementInput) (int, error) {
	if tx == nil {
		return 0, gorm.ErrInvalidTransaction
	}
	if input.Quantity < 1 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	repo := l.repo.WithTx(tx)
	level, err := l.change(ctx, repo, input.ProductID, input.VariantID, nil, func(current int) (int, error) {
		if current >= input.Quantity {
			return current - input.Quantity, nil
		}
		if l.policy == enums.OversellReject {
			return 0, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
				WithDetails(map[string]any{
					"product_id": input.ProductID,
					"variant_id": input.VariantID,
					"requested":  input.Quantity,
					"available":  current,
				})
		}
		if l.logg != nil {
			logCtx := l.logg.WithFields(ctx, map[string]any{
				"order_id":   input.OrderID.String(),
				"product_id": input.ProductID.String(),
				"requested":  input.Quantity,
				"available":  current,
			})
			l.logg.Warn(logCtx, "inventory.oversell_clamped")
		}
		return 0, nil
	})
	if err != nil {
		return 0, err
	}

	orderID := input.OrderID
	movement := &models.StockMovement{
		ID:          uuid.New(),
		ProductID:   input.ProductID,
		VariantID:   input.VariantID,
		OrderID:     &orderID,
		Reason:      enums.StockMovementOrderAccepted,
		Delta:       level.StockAfter - level.StockBefore,
		StockBefore: level.StockBefore,
		StockAfter:  level.StockAfter,
	}
	if err := repo.RecordMovement(ctx, movement); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
	}
	return level.StockAfter, nil
}

// Restock adds stock to a product (or one of its variants) owned by the store.
func (l *Ledger) Restock(ctx context.Context, input RestockInput) (*StockLevel, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if input.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "store context missing")
	}

	var level *StockLevel
	err := l.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := l.repo.WithTx(tx)
		ownedBy := func(product *models.Product) error {
			if product.StoreID != input.StoreID {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return nil
		}
		var err error
		level, err = l.change(ctx, repo, input.ProductID, input.VariantID, ownedBy, func(current int) (int, error) {
			return current + input.Quantity, nil
		})
		if err != nil {
			return err
		}

		movement := &models.StockMovement{
			ID:          uuid.New(),
			ProductID:   input.ProductID,
			VariantID:   input.VariantID,
			Reason:      enums.StockMovementRestock,
			Delta:       input.Quantity,
			StockBefore: level.StockBefore,
			StockAfter:  level.StockAfter,
		}
		if err := repo.RecordMovement(ctx, movement); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
		}

		var actor *outbox.ActorRef
		if input.ActorUserID != uuid.Nil {
			actor = outbox.VendorActor(input.ActorUserID, input.StoreID)
		}
		return l.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventStockRestocked,
			AggregateType: enums.AggregateProduct,
			AggregateID:   input.ProductID,
			Actor:         actor,
			OccurredAt:    time.Now().UTC(),
			Data: payloads.StockRestockedEvent{
				StoreID:     input.StoreID,
				ProductID:   input.ProductID,
				VariantID:   input.VariantID,
				Quantity:    input.Quantity,
				StockBefore: level.StockBefore,
				StockAfter:  level.StockAfter,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return level, nil
}

// Stock returns the current stock of a product, or of its variant when given.
func (l *Ledger) Stock(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) (int, error) {
	_, stock, err := l.current(ctx, productID, variantID)
	return stock, err
}

// StockQuery selects the stock row a vendor wants to inspect.
type StockQuery struct {
	StoreID   uuid.UUID
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Limit     int
}

// Movement is one entry of the stock audit trail.
type Movement struct {
	Reason      enums.StockMovementReason `json:"reason"`
	Delta       int                       `json:"delta"`
	StockBefore int                       `json:"stock_before"`
	StockAfter  int                       `json:"stock_after"`
	OrderID     *uuid.UUID                `json:"order_id,omitempty"`
	CreatedAt   time.Time                 `json:"created_at"`
}

// StockView is the current stock of a product or variant with its latest movements.
type StockView struct {
	ProductID       uuid.UUID            `json:"product_id"`
	VariantID       *uuid.UUID           `json:"variant_id,omitempty"`
	Stock           int                  `json:"stock"`
	OversellPolicy  enums.OversellPolicy `json:"oversell_policy"`
	RecentMovements []Movement           `json:"recent_movements"`
}

// Inspect reports stock for a product owned by the store. Products of other
// stores are reported as missing.
func (l *Ledger) Inspect(ctx context.Context, query StockQuery) (*StockView, error) {
	if query.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "store context missing")
	}
	limit := query.Limit
	if limit <= 0 || limit > maxMovementLimit {
		limit = defaultMovementLimit
	}

	product, stock, err := l.current(ctx, query.ProductID, query.VariantID)
	if err != nil {
		return nil, err
	}
	if product.StoreID != query.StoreID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	rows, err := l.repo.ListMovements(ctx, query.ProductID, query.VariantID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock movements")
	}

	view := &StockView{
		ProductID:       query.ProductID,
		VariantID:       query.VariantID,
		Stock:           stock,
		OversellPolicy:  l.Policy(),
		RecentMovements: make([]Movement, 0, len(rows)),
	}
	for _, row := range rows {
		view.RecentMovements = append(view.RecentMovements, Movement{
			Reason:      row.Reason,
			Delta:       row.Delta,
			StockBefore: row.StockBefore,
			StockAfter:  row.StockAfter,
			OrderID:     row.OrderID,
			CreatedAt:   row.CreatedAt,
		})
	}
	return view, nil
}

func (l *Ledger) current(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) (*models.Product, int, error) {
	product, err := l.repo.FindProduct(ctx, productID)
	if err != nil {
		return nil, 0, mapLoadError(err, "product")
	}
	if variantID == nil {
		return product, product.Stock, nil
	}
	variant, err := l.repo.FindVariant(ctx, *variantID)
	if err != nil {
		return nil, 0, mapLoadError(err, "variant")
	}
	if variant.ProductID != product.ID {
		return nil, 0, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	return product, variant.Stock, nil
}

// change locks the stock row, computes the next value and writes it back
// conditioned on the version read under the lock.
func (l *Ledger) change(
	ctx context.Context,
	repo Repository,
	productID uuid.UUID,
	variantID *uuid.UUID,
	check func(product *models.Product) error,
	next func(current int) (int, error),
) (*StockLevel, error) {
	level := &StockLevel{ProductID: productID, VariantID: variantID}

	if variantID == nil {
		product, err := repo.LockProduct(ctx, productID)
		if err != nil {
			return nil, mapLoadError(err, "product")
		}
		if check != nil {
			if err := check(product); err != nil {
				return nil, err
			}
		}
		after, err := next(product.Stock)
		if err != nil {
			return nil, err
		}
		swapped, err := repo.SwapProductStock(ctx, productID, product.Version, after)
		if err := swapResult(swapped, err); err != nil {
			return nil, err
		}
		level.StockBefore, level.StockAfter = product.Stock, after
		return level, nil
	}

	product, err := repo.FindProduct(ctx, productID)
	if err != nil {
		return nil, mapLoadError(err, "product")
	}
	if check != nil {
		if err := check(product); err != nil {
			return nil, err
		}
	}
	variant, err := repo.LockVariant(ctx, *variantID)
	if err != nil {
		return nil, mapLoadError(err, "variant")
	}
	if variant.ProductID != productID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	after, err := next(variant.Stock)
	if err != nil {
		return nil, err
	}
	swapped, err := repo.SwapVariantStock(ctx, variant.ID, variant.Version, after)
	if err := swapResult(swapped, err); err != nil {
		return nil, err
	}
	level.StockBefore, level.StockAfter = variant.Stock, after
	return level, nil
}

func swapResult(swapped bool, err error) error {
	if err != nil {
		if db.IsLockContention(err) {
			return pkgerrors.Wrap(pkgerrors.CodeInventoryContention, err, "stock row contended")
		}
		if db.IsCheckViolation(err) {
			return pkgerrors.Wrap(pkgerrors.CodeInsufficientStock, err, "stock cannot go negative")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock")
	}
	if !swapped {
		return pkgerrors.New(pkgerrors.CodeInventoryContention, "stock changed concurrently")
	}
	return nil
}

func mapLoadError(err error, what string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, what+" not found")
	case db.IsLockContention(err):
		return pkgerrors.Wrap(pkgerrors.CodeInventoryContention, err, "lock "+what)
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+what)
	}
}
