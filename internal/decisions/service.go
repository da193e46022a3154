package decisions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/orderdesk-backend/internal/inventory"
	"github.com/angelmondragon/orderdesk-backend/internal/orders"
	"github.com/angelmondragon/orderdesk-backend/pkg/db"
	"github.com/angelmondragon/orderdesk-backend/pkg/db/models"
	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/orderdesk-backend/pkg/errors"
	"github.com/angelmondragon/orderdesk-backend/pkg/logger"
	"github.com/angelmondragon/orderdesk-backend/pkg/outbox"
	"github.com/angelmondragon/orderdesk-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stockDecrementer interface {
	Decrement(ctx context.Context, tx *gorm.DB, input inventory.DecrementInput) (int, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type outcomeRecorder interface {
	IncOutcome(outcome string)
	IncError(code string)
}

type noopRecorder struct{}

func (noopRecorder) IncOutcome(string) {}
func (noopRecorder) IncError(string)   {}

// Input is a vendor's decision on one order.
type Input struct {
	Ref          orders.Ref
	Outcome      enums.DecisionOutcome
	ActorUserID  uuid.UUID
	ActorStoreID uuid.UUID
}

// ServiceParams wires the decision engine.
type ServiceParams struct {
	Orders    orders.Repository
	Tx        txRunner
	Inventory stockDecrementer
	Outbox    eventEmitter
	Metrics   outcomeRecorder
	Logger    *logger.Logger
	Now       func() time.Time
}

// Service applies vendor decisions. Accepting an order decrements stock for
// every line and confirms the order in one transaction.
type Service struct {
	orders    orders.Repository
	tx        txRunner
	inventory stockDecrementer
	outbox    eventEmitter
	metrics   outcomeRecorder
	logg      *logger.Logger
	now       func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	recorder := params.Metrics
	if recorder == nil {
		recorder = noopRecorder{}
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		orders:    params.Orders,
		tx:        params.Tx,
		inventory: params.Inventory,
		outbox:    params.Outbox,
		metrics:   recorder,
		logg:      params.Logger,
		now:       now,
	}, nil
}

// ApplyDecision decides an undecided order at most once.
func (s *Service) ApplyDecision(ctx context.Context, input Input) (*models.Order, error) {
	order, err := s.apply(ctx, input)
	if err != nil {
		code := pkgerrors.CodeInternal
		if typed := pkgerrors.As(err); typed != nil {
			code = typed.Code()
		}
		s.metrics.IncError(string(code))
		if s.logg != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"order_ref": input.Ref.String(),
				"outcome":   input.Outcome,
				"code":      code,
			})
			if pkgerrors.MetadataFor(code).HTTPStatus >= 500 {
				s.logg.Error(logCtx, "order.decision_failed", err)
			} else {
				s.logg.Warn(logCtx, "order.decision_refused")
			}
		}
		return nil, err
	}

	s.metrics.IncOutcome(string(input.Outcome))
	if s.logg != nil {
		logCtx := s.logg.WithOrderID(s.logg.WithStoreID(ctx, order.StoreID.String()), order.ID.String())
		logCtx = s.logg.WithField(logCtx, "outcome", input.Outcome)
		s.logg.Info(logCtx, "order.decided")
	}
	return order, nil
}

func (s *Service) apply(ctx context.Context, input Input) (*models.Order, error) {
	if !input.Outcome.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid decision outcome")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorStoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "store context missing")
	}

	var decided *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)
		order, err := repo.LockByRef(ctx, input.Ref)
		if err != nil {
			return err
		}
		if order.StoreID != input.ActorStoreID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if order.IsDecided() {
			return alreadyDecided(order)
		}
		if input.Outcome == enums.DecisionAcceptWithProof && !order.HasProof() {
			return pkgerrors.New(pkgerrors.CodeMissingProof, "accepting with proof requires an attached payment proof")
		}

		now := s.now()
		updates := map[string]any{
			"decision_outcome": input.Outcome,
			"decided_by":       input.ActorUserID,
			"decided_at":       now,
		}
		if input.Outcome.IsAccept() {
			for _, line := range lockOrder(order.Items) {
				if _, err := s.inventory.Decrement(ctx, tx, inventory.DecrementInput{
					ProductID: line.ProductID,
					VariantID: line.VariantID,
					Quantity:  line.Quantity,
					OrderID:   order.ID,
				}); err != nil {
					return err
				}
			}
			updates["status"] = enums.OrderStatusConfirmed
			updates["payment_status"] = enums.PaymentStatusPaid
		} else {
			updates["status"] = enums.OrderStatusCancelled
			updates["payment_status"] = enums.PaymentStatusRejected
			updates["cancellation_reason"] = enums.CancellationVendorRejected
		}

		rows, err := repo.UpdateUndecided(ctx, order.ID, updates)
		if err != nil {
			return err
		}
		if rows == 0 {
			return alreadyDecided(order)
		}

		decided, err = repo.FindByRef(ctx, orders.IDRef(order.ID))
		if err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderDecided,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         outbox.VendorActor(input.ActorUserID, input.ActorStoreID),
			OccurredAt:    now,
			Data: payloads.OrderDecidedEvent{
				OrderSnapshot: orders.Snapshot(decided),
				Outcome:       input.Outcome,
				DecidedBy:     input.ActorUserID,
				DecidedAt:     now,
			},
		})
	})
	if err != nil {
		return nil, mapError(err)
	}
	return decided, nil
}

// lockOrder sorts lines by stock row so concurrent accepts lock rows in the
// same order.
func lockOrder(lines []models.OrderLine) []models.OrderLine {
	out := append([]models.OrderLine(nil), lines...)
	sort.SliceStable(out, func(i, j int) bool {
		if c := bytes.Compare(out[i].ProductID[:], out[j].ProductID[:]); c != 0 {
			return c < 0
		}
		return bytes.Compare(variantKey(out[i]), variantKey(out[j])) < 0
	})
	return out
}

func variantKey(line models.OrderLine) []byte {
	if line.VariantID == nil {
		return nil
	}
	return line.VariantID[:]
}

func alreadyDecided(order *models.Order) error {
	details := map[string]any{"status": order.Status}
	if order.DecidedAt != nil {
		details["decided_at"] = order.DecidedAt
	}
	return pkgerrors.New(pkgerrors.CodeAlreadyDecided, "order already decided").WithDetails(details)
}

func mapError(err error) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	case db.IsLockContention(err):
		return pkgerrors.Wrap(pkgerrors.CodeInventoryContention, err, "decision contended")
	case db.IsCheckViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeInsufficientStock, err, "stock cannot go negative")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply decision")
	}
}
