package orders

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/orderdesk-backend/pkg/config"
	"github.com/angelmondragon/orderdesk-backend/pkg/db"
	"github.com/angelmondragon/orderdesk-backend/pkg/db/models"
	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/orderdesk-backend/pkg/errors"
	"github.com/angelmondragon/orderdesk-backend/pkg/logger"
	"github.com/angelmondragon/orderdesk-backend/pkg/outbox"
	"github.com/angelmondragon/orderdesk-backend/pkg/outbox/payloads"
)

const (
	defaultTokenTries = 3
	defaultBatchLimit = 100

	// MaxLineQuantity bounds a single order line.
	MaxLineQuantity = 10000
)

// Service defines the buyer and vendor operations on a single order.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, ref Ref) (*models.Order, error)
	GetStoreOrder(ctx context.Context, storeID uuid.UUID, ref Ref) (*models.Order, error)
	AttachProof(ctx context.Context, ref Ref, mediaID string) (*models.Order, error)
	AttachBuyer(ctx context.Context, ref Ref, input AttachBuyerInput) (*models.Order, error)
	RequestReview(ctx context.Context, ref Ref) (*models.Order, error)
	CancelOrder(ctx context.Context, ref Ref) (*models.Order, error)
	AdvanceFulfillment(ctx context.Context, input AdvanceFulfillmentInput) (*models.Order, error)
	ExpirePending(ctx context.Context, cutoff time.Time, limit int) (int, error)
	NudgeStaleReviews(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

// ServiceParams wires the order service.
type ServiceParams struct {
	Repository Repository
	Tx         txRunner
	Outbox     outbox.Emitter
	Stores     storeReader
	Catalog    catalogReader
	Config     config.OrdersConfig
	Logger     *logger.Logger
	Tokens     func() (string, error)
	Now        func() time.Time
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outbox.Emitter
	stores  storeReader
	catalog catalogReader
	tokens  func() (string, error)
	now     func() time.Time
	tries   int
	logg    *logger.Logger
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.Stores == nil {
		return nil, fmt.Errorf("store reader required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog reader required")
	}
	tokens := params.Tokens
	if tokens == nil {
		tokens = NewToken
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	tries := params.Config.TokenCreateTries
	if tries <= 0 {
		tries = defaultTokenTries
	}
	return &service{
		repo:    params.Repository,
		tx:      params.Tx,
		outbox:  params.Outbox,
		stores:  params.Stores,
		catalog: params.Catalog,
		tokens:  tokens,
		now:     now,
		tries:   tries,
		logg:    params.Logger,
	}, nil
}

// addCents returns acc + amount*qty, reporting false when the result would
// leave the int64 range. Amounts and quantities are non-negative.
func addCents(acc, amount, qty int64) (int64, bool) {
	if amount < 0 || qty < 0 {
		return 0, false
	}
	if qty != 0 && amount > math.MaxInt64/qty {
		return 0, false
	}
	product := amount * qty
	if acc > math.MaxInt64-product {
		return 0, false
	}
	return acc + product, true
}

func totalTooLarge(index int) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "order total too large").
		WithDetails(map[string]any{"index": index})
}

type lineKey struct {
	product uuid.UUID
	variant uuid.UUID
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	delivery := input.Delivery
	if delivery == "" {
		delivery = enums.DeliveryShipping
	}
	if !delivery.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery method")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}

	seen := make(map[lineKey]struct{}, len(input.Items))
	productIDs := make([]uuid.UUID, 0, len(input.Items))
	for i, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "items[%d].product_id required", i)
		}
		if item.Quantity < 1 {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "items[%d].quantity must be at least 1", i)
		}
		if item.Quantity > MaxLineQuantity {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "items[%d].quantity must be at most %d", i, MaxLineQuantity)
		}
		key := lineKey{product: item.ProductID}
		if item.VariantID != nil {
			key.variant = *item.VariantID
		}
		if _, dup := seen[key]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate item").
				WithDetails(map[string]any{"index": i, "product_id": item.ProductID})
		}
		seen[key] = struct{}{}
		productIDs = append(productIDs, item.ProductID)
	}

	var phone *string
	if input.BuyerPhone != nil && strings.TrimSpace(*input.BuyerPhone) != "" {
		normalized, ok := NormalizePhone(*input.BuyerPhone)
		if !ok {
			return nil, invalidPhone()
		}
		phone = &normalized
	}

	store, err := s.stores.FindByID(ctx, input.StoreID)
	if err != nil {
		return nil, mapFindError(err, "store")
	}
	catalog, err := s.catalog.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}

	lines := make([]models.OrderLine, 0, len(input.Items))
	var subtotal int64
	for i, item := range input.Items {
		product, ok := catalog[item.ProductID]
		if !ok || product.StoreID != store.ID {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": item.ProductID})
		}
		price := product.PriceCents
		name := product.Name
		if item.VariantID != nil {
			variant := findVariant(product, *item.VariantID)
			if variant == nil {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found").
					WithDetails(map[string]any{"product_id": item.ProductID, "variant_id": *item.VariantID})
			}
			price = variant.EffectivePriceCents(product)
			name = product.Name + " - " + variant.Name
		}
		lineTotal, ok := addCents(0, price, int64(item.Quantity))
		if !ok {
			return nil, totalTooLarge(i)
		}
		if subtotal, ok = addCents(subtotal, lineTotal, 1); !ok {
			return nil, totalTooLarge(i)
		}
		lines = append(lines, models.OrderLine{
			Position:       i + 1,
			ProductID:      item.ProductID,
			VariantID:      item.VariantID,
			Name:           name,
			Quantity:       item.Quantity,
			UnitPriceCents: price,
			UnitTotalCents: lineTotal,
		})
	}

	var shipping int64
	if delivery == enums.DeliveryShipping {
		shipping = store.FlatShippingCents
	}
	if _, ok := addCents(subtotal, shipping, 1); !ok {
		return nil, totalTooLarge(len(input.Items) - 1)
	}
	kind := enums.BuyerKindGuest
	var buyerUserID *uuid.UUID
	if input.BuyerUserID != nil && *input.BuyerUserID != uuid.Nil {
		kind = enums.BuyerKindRegistered
		id := *input.BuyerUserID
		buyerUserID = &id
	}

	now := s.now()
	order := &models.Order{
		StoreID:           store.ID,
		BuyerKind:         kind,
		BuyerUserID:       buyerUserID,
		BuyerName:         trimmed(input.BuyerName),
		BuyerPhone:        phone,
		BuyerEmail:        trimmed(input.BuyerEmail),
		Status:            enums.OrderStatusPending,
		PaymentStatus:     enums.PaymentStatusUnpaid,
		Delivery:          delivery,
		Currency:          store.Currency,
		SubtotalCents:     subtotal,
		ShippingCostCents: shipping,
		TotalCents:        subtotal + shipping,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	for attempt := 1; ; attempt++ {
		token, err := s.tokens()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order token")
		}
		order.ID = uuid.New()
		order.Token = token
		order.Items = nil
		items := make([]models.OrderLine, len(lines))
		for i := range lines {
			line := lines[i]
			line.ID = uuid.New()
			line.OrderID = order.ID
			line.CreatedAt = now
			items[i] = line
		}

		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			if err := repo.Create(ctx, order); err != nil {
				return err
			}
			if err := repo.CreateLines(ctx, items); err != nil {
				return err
			}
			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderCreated,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Actor:         buyerActor(order),
				OccurredAt:    now,
				Data: payloads.OrderCreatedEvent{
					OrderSnapshot: Snapshot(order),
					Delivery:      order.Delivery,
					LineCount:     len(items),
					CreatedAt:     now,
				},
			})
		})
		if err == nil {
			order.Items = items
			s.info(ctx, order, "order.created")
			return order, nil
		}
		if !isTokenCollision(err) {
			return nil, typed(err, "create order")
		}
		if attempt >= s.tries {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "could not allocate a unique order token")
		}
		s.warn(ctx, order, "order.token_collision")
	}
}

func (s *service) GetOrder(ctx context.Context, ref Ref) (*models.Order, error) {
	order, err := s.repo.FindByRef(ctx, ref)
	if err != nil {
		return nil, mapFindError(err, "order")
	}
	return order, nil
}

// GetStoreOrder loads an order only if it belongs to storeID. Orders of other
// stores are reported as missing.
func (s *service) GetStoreOrder(ctx context.Context, storeID uuid.UUID, ref Ref) (*models.Order, error) {
	order, err := s.GetOrder(ctx, ref)
	if err != nil {
		return nil, err
	}
	if order.StoreID != storeID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) AttachProof(ctx context.Context, ref Ref, mediaID string) (*models.Order, error) {
	mediaID = strings.TrimSpace(mediaID)
	if mediaID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "proof_media_id required")
	}
	return s.withLockedOrder(ctx, ref, func(tx *gorm.DB, repo Repository, order *models.Order) error {
		if order.IsDecided() {
			return alreadyDecided(order)
		}
		rows, err := repo.UpdateUndecided(ctx, order.ID, map[string]any{"proof_media_id": mediaID})
		if err != nil {
			return err
		}
		if rows == 0 {
			return alreadyDecided(order)
		}
		return nil
	})
}

func (s *service) AttachBuyer(ctx context.Context, ref Ref, input AttachBuyerInput) (*models.Order, error) {
	return s.withLockedOrder(ctx, ref, func(tx *gorm.DB, repo Repository, order *models.Order) error {
		if order.IsDecided() {
			return alreadyDecided(order)
		}

		hasUser := input.UserID != nil && *input.UserID != uuid.Nil
		updates := map[string]any{}
		if input.Name != nil {
			updates["buyer_name"] = nullable(*input.Name)
		}
		if input.Email != nil {
			updates["buyer_email"] = nullable(*input.Email)
		}
		if input.Phone != nil && strings.TrimSpace(*input.Phone) != "" {
			normalized, ok := NormalizePhone(*input.Phone)
			switch {
			case ok:
				updates["buyer_phone"] = normalized
			case !hasUser:
				return invalidPhone()
			default:
				s.warn(ctx, order, "order.buyer_phone_ignored")
			}
		}
		if hasUser {
			if order.BuyerUserID != nil && *order.BuyerUserID != *input.UserID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another account")
			}
			if order.BuyerUserID == nil {
				updates["buyer_user_id"] = *input.UserID
			}
		}
		if len(updates) == 0 {
			if hasUser {
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeValidation, "buyer details required")
		}

		rows, err := repo.UpdateUndecided(ctx, order.ID, updates)
		if err != nil {
			return err
		}
		if rows == 0 {
			return alreadyDecided(order)
		}
		return nil
	})
}

func (s *service) RequestReview(ctx context.Context, ref Ref) (*models.Order, error) {
	return s.withLockedOrder(ctx, ref, func(tx *gorm.DB, repo Repository, order *models.Order) error {
		if order.IsDecided() {
			return alreadyDecided(order)
		}
		if order.Status == enums.OrderStatusInReview {
			return nil
		}
		if !hasContact(order) {
			return pkgerrors.New(pkgerrors.CodeValidation, "a valid buyer phone or account is required before review")
		}

		now := s.now()
		rows, err := repo.UpdateFromStatus(ctx, order.ID, enums.OrderStatusPending, map[string]any{
			"status":       enums.OrderStatusInReview,
			"requested_at": now,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order changed concurrently")
		}
		order.Status = enums.OrderStatusInReview
		order.RequestedAt = &now

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderReviewRequested,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         buyerActor(order),
			OccurredAt:    now,
			Data: payloads.OrderReviewRequestedEvent{
				OrderSnapshot: Snapshot(order),
				RequestedAt:   now,
				HasProof:      order.HasProof(),
			},
		})
	})
}

func (s *service) CancelOrder(ctx context.Context, ref Ref) (*models.Order, error) {
	return s.withLockedOrder(ctx, ref, func(tx *gorm.DB, repo Repository, order *models.Order) error {
		if order.IsDecided() {
			return alreadyDecided(order)
		}

		now := s.now()
		reason := enums.CancellationBuyerCancelled
		rows, err := repo.UpdateUndecided(ctx, order.ID, map[string]any{
			"status":              enums.OrderStatusCancelled,
			"cancellation_reason": reason,
			"decided_at":          now,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return alreadyDecided(order)
		}
		order.Status = enums.OrderStatusCancelled
		order.CancellationReason = &reason
		order.DecidedAt = &now

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         buyerActor(order),
			OccurredAt:    now,
			Data: payloads.OrderCancelledEvent{
				OrderSnapshot: Snapshot(order),
				Reason:        reason,
				CancelledAt:   now,
			},
		})
	})
}

func (s *service) AdvanceFulfillment(ctx context.Context, input AdvanceFulfillmentInput) (*models.Order, error) {
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target status")
	}
	if input.ActorStoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "store context missing")
	}
	return s.withLockedOrder(ctx, input.Ref, func(tx *gorm.DB, repo Repository, order *models.Order) error {
		if order.StoreID != input.ActorStoreID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		previous := order.Status
		if !previous.CanAdvanceTo(input.Target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "fulfillment transition not allowed").
				WithDetails(map[string]any{"from": previous, "to": input.Target})
		}

		now := s.now()
		updates := map[string]any{"status": input.Target}
		switch input.Target {
		case enums.OrderStatusShipped:
			updates["shipped_at"] = now
		case enums.OrderStatusDelivered:
			updates["delivered_at"] = now
		}
		rows, err := repo.UpdateFromStatus(ctx, order.ID, previous, updates)
		if err != nil {
			return err
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order changed concurrently")
		}
		order.Status = input.Target

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderFulfillmentUpdated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         outbox.VendorActor(input.ActorUserID, input.ActorStoreID),
			OccurredAt:    now,
			Data: payloads.OrderFulfillmentUpdatedEvent{
				OrderSnapshot:  Snapshot(order),
				PreviousStatus: previous,
				UpdatedAt:      now,
			},
		})
	})
}

// ExpirePending cancels PENDING orders created before cutoff. Every order is
// expired in its own transaction; failures are combined and do not stop the batch.
func (s *service) ExpirePending(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	if limit <= 0 {
		limit = defaultBatchLimit
	}
	candidates, err := s.repo.ListPendingCreatedBefore(ctx, cutoff, limit)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending orders")
	}

	var errs error
	expired := 0
	for _, candidate := range candidates {
		ok, err := s.expireOne(ctx, candidate.ID, cutoff)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("expire order %s: %w", candidate.ID, err))
			continue
		}
		if ok {
			expired++
		}
	}
	return expired, errs
}

func (s *service) expireOne(ctx context.Context, orderID uuid.UUID, cutoff time.Time) (bool, error) {
	expired := false
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.LockByRef(ctx, IDRef(orderID))
		if err != nil {
			return err
		}
		if order.Status != enums.OrderStatusPending || order.IsDecided() || !order.CreatedAt.Before(cutoff) {
			return nil
		}

		now := s.now()
		reason := enums.CancellationExpired
		rows, err := repo.UpdateFromStatus(ctx, order.ID, enums.OrderStatusPending, map[string]any{
			"status":              enums.OrderStatusCancelled,
			"cancellation_reason": reason,
			"decided_at":          now,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return nil
		}
		order.Status = enums.OrderStatusCancelled
		order.CancellationReason = &reason
		order.DecidedAt = &now
		expired = true

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderExpired,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			OccurredAt:    now,
			Data: payloads.OrderExpiredEvent{
				OrderSnapshot: Snapshot(order),
				ExpiredAt:     now,
			},
		})
	})
	return expired, err
}

// NudgeStaleReviews queues a single review_stale event for every order that
// has been waiting in review since before cutoff. It returns how many nudges
// were queued by this call.
func (s *service) NudgeStaleReviews(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	if limit <= 0 {
		limit = defaultBatchLimit
	}
	candidates, err := s.repo.ListInReviewQueuedBefore(ctx, cutoff, limit)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stale reviews")
	}

	storeIDs := make([]uuid.UUID, 0, len(candidates))
	for _, order := range candidates {
		storeIDs = append(storeIDs, order.StoreID)
	}
	storesByID, err := s.stores.FindByIDs(ctx, storeIDs)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stores")
	}

	var errs error
	nudged := 0
	for i := range candidates {
		order := &candidates[i]
		store, ok := storesByID[order.StoreID]
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("store %s not found for order %s", order.StoreID, order.ID))
			continue
		}

		queuedAt := order.CreatedAt
		if order.RequestedAt != nil {
			queuedAt = *order.RequestedAt
		}
		now := s.now()
		var emitted bool
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			var err error
			emitted, err = s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderReviewStale,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				OccurredAt:    now,
				Data: payloads.OrderReviewStaleEvent{
					OrderSnapshot: Snapshot(order),
					RequestedAt:   queuedAt,
					StoreName:     store.Name,
					StorePhone:    store.ContactPhone,
					WaitingHours:  int(now.Sub(queuedAt).Hours()),
				},
			})
			return err
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("nudge order %s: %w", order.ID, err))
			continue
		}
		if emitted {
			nudged++
		}
	}
	return nudged, errs
}

func (s *service) withLockedOrder(ctx context.Context, ref Ref, fn func(tx *gorm.DB, repo Repository, order *models.Order) error) (*models.Order, error) {
	var out *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.LockByRef(ctx, ref)
		if err != nil {
			return mapFindError(err, "order")
		}
		if err := fn(tx, repo, order); err != nil {
			return err
		}
		out, err = repo.FindByRef(ctx, IDRef(order.ID))
		return err
	})
	if err != nil {
		return nil, typed(err, "update order")
	}
	return out, nil
}

func (s *service) info(ctx context.Context, order *models.Order, msg string) {
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithOrderID(s.logg.WithStoreID(ctx, order.StoreID.String()), order.ID.String())
	s.logg.Info(logCtx, msg)
}

func (s *service) warn(ctx context.Context, order *models.Order, msg string) {
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithOrderID(s.logg.WithStoreID(ctx, order.StoreID.String()), order.ID.String())
	s.logg.Warn(logCtx, msg)
}

func findVariant(product models.Product, variantID uuid.UUID) *models.ProductVariant {
	for i := range product.Variants {
		if product.Variants[i].ID == variantID {
			return &product.Variants[i]
		}
	}
	return nil
}

func hasContact(order *models.Order) bool {
	if order.BuyerUserID != nil {
		return true
	}
	if order.BuyerPhone == nil {
		return false
	}
	_, ok := NormalizePhone(*order.BuyerPhone)
	return ok
}

func buyerActor(order *models.Order) *outbox.ActorRef {
	return outbox.BuyerActor(order.BuyerUserID)
}

func alreadyDecided(order *models.Order) error {
	return pkgerrors.New(pkgerrors.CodeAlreadyDecided, "order already decided").
		WithDetails(map[string]any{"status": order.Status})
}

func invalidPhone() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "buyer phone must contain at least 8 digits").
		WithDetails(map[string]any{"field": "phone"})
}

func isTokenCollision(err error) bool {
	return db.IsUniqueViolation(err, "orders_token_key") || db.IsUniqueViolation(err, "orders.token")
}

func mapFindError(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, what+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+what)
}

// typed keeps typed errors as they are and wraps everything else as a
// dependency failure.
func typed(err error, msg string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}

func nullable(value string) any {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return value
}
