package decisions

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/orderdesk-backend/internal/inventory"
	"github.com/angelmondragon/orderdesk-backend/internal/orders"
	"github.com/angelmondragon/orderdesk-backend/pkg/db"
	"github.com/angelmondragon/orderdesk-backend/pkg/db/dbtest"
	"github.com/angelmondragon/orderdesk-backend/pkg/db/models"
	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/orderdesk-backend/pkg/errors"
	"github.com/angelmondragon/orderdesk-backend/pkg/outbox"
)

type fakeRecorder struct {
	outcomes []string
	errors   []string
}

func (f *fakeRecorder) IncOutcome(outcome string) { f.outcomes = append(f.outcomes, outcome) }
func (f *fakeRecorder) IncError(code string)      { f.errors = append(f.errors, code) }

// failingDecrementer delegates to the real ledger and fails the nth call.
type failingDecrementer struct {
	next   stockDecrementer
	failOn int
	calls  int
	err    error
}

func (f *failingDecrementer) Decrement(ctx context.Context, tx *gorm.DB, input inventory.DecrementInput) (int, error) {
	f.calls++
	if f.calls == f.failOn {
		return 0, f.err
	}
	return f.next.Decrement(ctx, tx, input)
}

type harness struct {
	conn     *gorm.DB
	svc      *Service
	recorder *fakeRecorder
	store    *models.Store
	vendor   uuid.UUID
}

func newHarness(t *testing.T, policy enums.OversellPolicy, wrap func(stockDecrementer) stockDecrementer) *harness {
	t.Helper()
	conn := dbtest.Open(t)
	emitter := outbox.NewService(outbox.NewRepository(conn), nil)
	ledger, err := inventory.NewLedger(inventory.NewRepository(conn), db.FromConn(conn), emitter, policy, nil)
	require.NoError(t, err)

	var decrementer stockDecrementer = ledger
	if wrap != nil {
		decrementer = wrap(ledger)
	}
	recorder := &fakeRecorder{}
	svc, err := NewService(ServiceParams{
		Orders:    orders.NewRepository(conn),
		Tx:        db.FromConn(conn),
		Inventory: decrementer,
		Outbox:    emitter,
		Metrics:   recorder,
	})
	require.NoError(t, err)

	store := dbtest.SeedStore(t, conn, 0)
	return &harness{conn: conn, svc: svc, recorder: recorder, store: store, vendor: store.OwnerUserID}
}

func (h *harness) input(order *models.Order, outcome enums.DecisionOutcome) Input {
	return Input{Ref: orders.IDRef(order.ID), Outcome: outcome, ActorUserID: h.vendor, ActorStoreID: h.store.ID}
}

func (h *harness) stock(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	var product models.Product
	require.NoError(t, h.conn.First(&product, "id = ?", productID).Error)
	return product.Stock
}

func (h *harness) events(t *testing.T, eventType enums.OutboxEventType) int64 {
	t.Helper()
	var count int64
	require.NoError(t, h.conn.Model(&models.OutboxEvent{}).Where("event_type = ?", eventType).Count(&count).Error)
	return count
}

func inReviewOrder(t *testing.T, h *harness, proof bool, lines ...models.OrderLine) *models.Order {
	t.Helper()
	phone := "5512345678"
	seed := dbtest.OrderSeed{Store: h.store, Status: string(enums.OrderStatusInReview), Phone: &phone, Lines: lines}
	if proof {
		media := "proof-1"
		seed.ProofID = &media
	}
	return dbtest.SeedOrder(t, h.conn, seed)
}

func TestAcceptWithProofDecrementsStock(t *testing.T) {
	h := newHarness(t, enums.OversellClamp, nil)
	shirt := dbtest.SeedProduct(t, h.conn, h.store.ID, 1000, 5)
	mug := dbtest.SeedProduct(t, h.conn, h.store.ID, 500, 9)
	variant := dbtest.SeedVariant(t, h.conn, mug.ID, nil, 4)
	order := inReviewOrder(t, h, true,
		models.OrderLine{ProductID: shirt.ID, Quantity: 2, UnitPriceCents: 1000},
		models.OrderLine{ProductID: mug.ID, VariantID: &variant.ID, Quantity: 3, UnitPriceCents: 500},
	)

	decided, err := h.svc.ApplyDecision(context.Background(), h.input(order, enums.DecisionAcceptWithProof))
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusConfirmed, decided.Status)
	require.Equal(t, enums.PaymentStatusPaid, decided.PaymentStatus)
	require.NotNil(t, decided.DecidedAt)
	require.Equal(t, h.vendor, *decided.DecidedBy)
	require.Equal(t, enums.DecisionAcceptWithProof, *decided.DecisionOutcome)

	require.Equal(t, 3, h.stock(t, shirt.ID))
	require.Equal(t, 9, h.stock(t, mug.ID))
	var reloaded models.ProductVariant
	require.NoError(t, h.conn.First(&reloaded, "id = ?", variant.ID).Error)
	require.Equal(t, 1, reloaded.Stock)

	var movements int64
	require.NoError(t, h.conn.Model(&models.StockMovement{}).Where("order_id = ?", order.ID).Count(&movements).Error)
	require.Equal(t, int64(2), movements)
	require.Equal(t, int64(1), h.events(t, enums.EventOrderDecided))
	require.Equal(t, []string{string(enums.DecisionAcceptWithProof)}, h.recorder.outcomes)
}

func TestSecondDecisionIsRefused(t *testing.T) {
	h := newHarness(t, enums.OversellClamp, nil)
	product := dbtest.SeedProduct(t, h.conn, h.store.ID, 1000, 5)
	order := inReviewOrder(t, h, false, models.OrderLine{ProductID: product.ID, Quantity: 1, UnitPriceCents: 1000})

	_, err := h.svc.ApplyDecision(context.Background(), h.input(order, enums.DecisionAcceptCash))
	require.NoError(t, err)

	_, err = h.svc.ApplyDecision(context.Background(), h.input(order, enums.DecisionReject))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeAlreadyDecided), "unexpected error: %v", err)
	_, err = h.svc.ApplyDecision(context.Background(), h.input(order, enums.DecisionAcceptCash))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeAlreadyDecided))

	require.Equal(t, 4, h.stock(t, product.ID))
	require.Equal(t, int64(1), h.events(t, enums.EventOrderDecided))
	require.Equal(t, []string{string(pkgerrors.CodeAlreadyDecided), string(pkgerrors.CodeAlreadyDecided)}, h.recorder.errors)
}

func TestAcceptWithProofRequiresProof(t *testing.T) {
	h := newHarness(t, enums.OversellClamp, nil)
	product := dbtest.SeedProduct(t, h.conn, h.store.ID, 1000, 5)
	order := inReviewOrder(t, h, false, models.OrderLine{ProductID: product.ID, Quantity: 1, UnitPriceCents: 1000})

	_, err := h.svc.ApplyDecision(context.Background(), h.input(order, enums.DecisionAcceptWithProof))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeMissingProof))
	require.Equal(t, 400, pkgerrors.MetadataFor(pkgerrors.CodeMissingProof).HTTPStatus)

	require.Equal(t, 5, h.stock(t, product.ID))
	var reloaded models.Order
	require.NoError(t, h.conn.First(&reloaded, "id = ?", order.ID).Error)
	require.Nil(t, reloaded.DecidedAt)
	require.Equal(t, enums.OrderStatusInReview, reloaded.Status)
}

func TestRejectLeavesStockAlone(t *testing.T) {
	h := newHarness(t, enums.OversellClamp, nil)
	product := dbtest.SeedProduct(t, h.conn, h.store.ID, 1000, 5)
	order := inReviewOrder(t, h, true, models.OrderLine{ProductID: product.ID, Quantity: 4, UnitPriceCents: 1000})

	decided, err := h.svc.ApplyDecision(context.Background(), h.input(order, enums.DecisionReject))
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCancelled, decided.Status)
	require.Equal(t, enums.PaymentStatusRejected, decided.PaymentStatus)
	require.Equal(t, enums.CancellationVendorRejected, *decided.CancellationReason)
	require.NotNil(t, decided.DecidedAt)
	require.Equal(t, 5, h.stock(t, product.ID))
}

func TestDecisionOwnershipAndLookup(t *testing.T) {
	h := newHarness(t, enums.OversellClamp, nil)
	order := inReviewOrder(t, h, true)

	in := h.input(order, enums.DecisionReject)
	in.ActorStoreID = uuid.New()
	_, err := h.svc.ApplyDecision(context.Background(), in)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "foreign store must not learn the order exists: %v", err)

	in = h.input(order, enums.DecisionReject)
	in.ActorStoreID = uuid.Nil
	_, err = h.svc.ApplyDecision(context.Background(), in)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	in = h.input(order, enums.DecisionReject)
	in.Ref = orders.IDRef(uuid.New())
	_, err = h.svc.ApplyDecision(context.Background(), in)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	in = h.input(order, "MAYBE")
	_, err = h.svc.ApplyDecision(context.Background(), in)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	in = h.input(order, enums.DecisionReject)
	in.ActorUserID = uuid.Nil
	_, err = h.svc.ApplyDecision(context.Background(), in)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestInsufficientStockRollsBackEarlierLines(t *testing.T) {
	h := newHarness(t, enums.OversellReject, nil)
	plenty := dbtest.SeedProduct(t, h.conn, h.store.ID, 1000, 5)
	scarce := dbtest.SeedProduct(t, h.conn, h.store.ID, 1000, 1)
	order := inReviewOrder(t, h, true,
		models.OrderLine{ProductID: plenty.ID, Quantity: 2, UnitPriceCents: 1000},
		models.OrderLine{ProductID: scarce.ID, Quantity: 3, UnitPriceCents: 1000},
	)

	_, err := h.svc.ApplyDecision(context.Background(), h.input(order, enums.DecisionAcceptWithProof))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock), "unexpected error: %v", err)

	require.Equal(t, 5, h.stock(t, plenty.ID))
	require.Equal(t, 1, h.stock(t, scarce.ID))
	var movements int64
	require.NoError(t, h.conn.Model(&models.StockMovement{}).Count(&movements).Error)
	require.Zero(t, movements)
	require.Zero(t, h.events(t, enums.EventOrderDecided))
}

func TestContentionRollsBackAndCanBeRetried(t *testing.T) {
	var failing *failingDecrementer
	h := newHarness(t, enums.OversellClamp, func(next stockDecrementer) stockDecrementer {
		failing = &failingDecrementer{
			next:   next,
			failOn: 2,
			err:    pkgerrors.New(pkgerrors.CodeInventoryContention, "stock changed concurrently"),
		}
		return failing
	})
	first := dbtest.SeedProduct(t, h.conn, h.store.ID, 1000, 5)
	second := dbtest.SeedProduct(t, h.conn, h.store.ID, 1000, 5)
	order := inReviewOrder(t, h, true,
		models.OrderLine{ProductID: first.ID, Quantity: 1, UnitPriceCents: 1000},
		models.OrderLine{ProductID: second.ID, Quantity: 1, UnitPriceCents: 1000},
	)

	_, err := h.svc.ApplyDecision(context.Background(), h.input(order, enums.DecisionAcceptCash))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInventoryContention))
	require.Equal(t, 5, h.stock(t, first.ID))
	require.Equal(t, 5, h.stock(t, second.ID))

	decided, err := h.svc.ApplyDecision(context.Background(), h.input(order, enums.DecisionAcceptCash))
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusConfirmed, decided.Status)
	require.Equal(t, 4, h.stock(t, first.ID))
	require.Equal(t, 4, h.stock(t, second.ID))
}

func TestLockOrderIsDeterministic(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	lines := []models.OrderLine{{ProductID: b}, {ProductID: a, VariantID: &b}, {ProductID: a}}

	sorted := lockOrder(lines)
	require.Equal(t, a, sorted[0].ProductID)
	require.Nil(t, sorted[0].VariantID)
	require.Equal(t, a, sorted[1].ProductID)
	require.NotNil(t, sorted[1].VariantID)
	require.Equal(t, b, sorted[2].ProductID)
	require.Equal(t, b, lines[0].ProductID, "input must not be reordered")
}
