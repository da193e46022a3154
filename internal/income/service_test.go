package income

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/orderdesk-backend/internal/stores"
	"github.com/angelmondragon/orderdesk-backend/pkg/db/dbtest"
	"github.com/angelmondragon/orderdesk-backend/pkg/db/models"
	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/orderdesk-backend/pkg/errors"
)

func TestReportCountsPaidConfirmedOrdersInRange(t *testing.T) {
	conn := dbtest.Open(t)
	store := dbtest.SeedStore(t, conn, 5000)
	other := dbtest.SeedStore(t, conn, 0)
	product := dbtest.SeedProduct(t, conn, store.ID, 1000, 10)
	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	seed := func(s *models.Store, status enums.OrderStatus, payment enums.PaymentStatus, decided time.Time, qty int) *models.Order {
		return dbtest.SeedOrder(t, conn, dbtest.OrderSeed{
			Store:     s,
			Status:    string(status),
			Payment:   string(payment),
			DecidedAt: &decided,
			CreatedAt: decided.Add(-time.Hour),
			Lines:     []models.OrderLine{{ProductID: product.ID, Quantity: qty, UnitPriceCents: 1000}},
		})
	}

	confirmed := seed(store, enums.OrderStatusConfirmed, enums.PaymentStatusPaid, from, 1)
	shipped := seed(store, enums.OrderStatusShipped, enums.PaymentStatusPaid, from.Add(48*time.Hour), 2)
	delivered := seed(store, enums.OrderStatusDelivered, enums.PaymentStatusPaid, to.Add(-time.Second), 3)

	// Excluded: range end, before range, rejected, another store.
	seed(store, enums.OrderStatusConfirmed, enums.PaymentStatusPaid, to, 4)
	seed(store, enums.OrderStatusConfirmed, enums.PaymentStatusPaid, from.Add(-time.Second), 5)
	seed(store, enums.OrderStatusCancelled, enums.PaymentStatusRejected, from.Add(time.Hour), 6)
	seed(other, enums.OrderStatusConfirmed, enums.PaymentStatusPaid, from.Add(time.Hour), 7)
	dbtest.SeedOrder(t, conn, dbtest.OrderSeed{Store: store, Status: string(enums.OrderStatusInReview), CreatedAt: from.Add(time.Hour)})

	svc, err := NewService(NewRepository(conn), stores.NewRepository(conn))
	require.NoError(t, err)

	report, err := svc.Report(context.Background(), store.ID, Range{From: from, To: to})
	require.NoError(t, err)
	require.Equal(t, 3, report.Count)
	require.Len(t, report.Orders, 3)
	require.Equal(t, confirmed.ID, report.Orders[0].OrderID)
	require.Equal(t, shipped.ID, report.Orders[1].OrderID)
	require.Equal(t, delivered.ID, report.Orders[2].OrderID)

	var sum int64
	for _, entry := range report.Orders {
		sum += entry.TotalCents
	}
	// Each order carries 5000 shipping on top of its lines.
	require.Equal(t, int64(6000+7000+8000), sum)
	require.Equal(t, sum, report.TotalCents)
	require.Equal(t, "MXN", report.Currency)
	require.Equal(t, "210.00", report.TotalDisplay)
}

func TestReportEmptyRange(t *testing.T) {
	conn := dbtest.Open(t)
	store := dbtest.SeedStore(t, conn, 0)
	svc, err := NewService(NewRepository(conn), stores.NewRepository(conn))
	require.NoError(t, err)

	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	report, err := svc.Report(context.Background(), store.ID, Range{From: from, To: from.AddDate(0, 1, 0)})
	require.NoError(t, err)
	require.Zero(t, report.Count)
	require.NotNil(t, report.Orders)
	require.Equal(t, "0.00", report.TotalDisplay)
}

func TestReportValidation(t *testing.T) {
	conn := dbtest.Open(t)
	store := dbtest.SeedStore(t, conn, 0)
	svc, err := NewService(NewRepository(conn), stores.NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()
	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	_, err = svc.Report(ctx, store.ID, Range{From: from, To: from})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Report(ctx, store.ID, Range{To: from})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Report(ctx, uuid.Nil, Range{From: from, To: from.Add(time.Hour)})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Report(ctx, uuid.New(), Range{From: from, To: from.Add(time.Hour)})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
