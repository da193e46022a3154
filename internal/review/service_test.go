package review

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/orderdesk-backend/pkg/db/dbtest"
	"github.com/angelmondragon/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/orderdesk-backend/pkg/errors"
)

func TestListPendingFIFOByQueueTime(t *testing.T) {
	conn := dbtest.Open(t)
	store := dbtest.SeedStore(t, conn, 0)
	other := dbtest.SeedStore(t, conn, 0)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	inReview := string(enums.OrderStatusInReview)

	// Created first but requested review last.
	late := base.Add(3 * time.Hour)
	third := dbtest.SeedOrder(t, conn, dbtest.OrderSeed{Store: store, Status: inReview, CreatedAt: base, RequestedAt: &late})
	early := base.Add(time.Hour)
	first := dbtest.SeedOrder(t, conn, dbtest.OrderSeed{Store: store, Status: inReview, CreatedAt: base.Add(30 * time.Minute), RequestedAt: &early})
	middle := base.Add(2 * time.Hour)
	second := dbtest.SeedOrder(t, conn, dbtest.OrderSeed{Store: store, Status: inReview, CreatedAt: base.Add(40 * time.Minute), RequestedAt: &middle})

	dbtest.SeedOrder(t, conn, dbtest.OrderSeed{Store: store, CreatedAt: base})
	dbtest.SeedOrder(t, conn, dbtest.OrderSeed{Store: other, Status: inReview, CreatedAt: base, RequestedAt: &early})
	decided := base.Add(4 * time.Hour)
	dbtest.SeedOrder(t, conn, dbtest.OrderSeed{Store: store, Status: string(enums.OrderStatusConfirmed), Payment: string(enums.PaymentStatusPaid), CreatedAt: base, RequestedAt: &early, DecidedAt: &decided})

	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	page, err := svc.ListPending(context.Background(), store.ID, Filters{})
	require.NoError(t, err)
	require.Len(t, page.Orders, 3)
	require.Equal(t, first.ID, page.Orders[0].ID)
	require.Equal(t, second.ID, page.Orders[1].ID)
	require.Equal(t, third.ID, page.Orders[2].ID)
	require.Empty(t, page.NextCursor)
}

func TestListPendingCursorPagination(t *testing.T) {
	conn := dbtest.Open(t)
	store := dbtest.SeedStore(t, conn, 0)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var want []uuid.UUID
	for i := 0; i < 5; i++ {
		requested := base.Add(time.Duration(i) * time.Minute)
		order := dbtest.SeedOrder(t, conn, dbtest.OrderSeed{Store: store, Status: string(enums.OrderStatusInReview), CreatedAt: base, RequestedAt: &requested})
		want = append(want, order.ID)
	}

	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	var got []uuid.UUID
	cursor := ""
	for pages := 0; pages < 5; pages++ {
		page, err := svc.ListPending(context.Background(), store.ID, Filters{Limit: 2, Cursor: cursor})
		require.NoError(t, err)
		for _, order := range page.Orders {
			got = append(got, order.ID)
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	require.Equal(t, want, got)
}

func TestListPendingStatusAndDateFilters(t *testing.T) {
	conn := dbtest.Open(t)
	store := dbtest.SeedStore(t, conn, 0)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pending := dbtest.SeedOrder(t, conn, dbtest.OrderSeed{Store: store, CreatedAt: base})
	requested := base.Add(48 * time.Hour)
	reviewing := dbtest.SeedOrder(t, conn, dbtest.OrderSeed{Store: store, Status: string(enums.OrderStatusInReview), CreatedAt: base, RequestedAt: &requested})

	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()

	page, err := svc.ListPending(ctx, store.ID, Filters{Statuses: []string{"pending", "IN_REVIEW"}})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	require.Equal(t, pending.ID, page.Orders[0].ID)

	page, err = svc.ListPending(ctx, store.ID, Filters{Statuses: []string{"CONFIRMED", "bogus"}})
	require.NoError(t, err)
	require.Empty(t, page.Orders)

	from := base.Add(24 * time.Hour)
	to := base.Add(72 * time.Hour)
	page, err = svc.ListPending(ctx, store.ID, Filters{Statuses: []string{"PENDING", "IN_REVIEW"}, From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	require.Equal(t, reviewing.ID, page.Orders[0].ID)

	_, err = svc.ListPending(ctx, store.ID, Filters{From: &to, To: &from})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.ListPending(ctx, store.ID, Filters{Cursor: "%%%"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
