package products

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/orderdesk-backend/pkg/db/dbtest"
)

func TestRepositoryFindByIDsPreloadsVariants(t *testing.T) {
	conn := dbtest.Open(t)
	store := dbtest.SeedStore(t, conn, 0)
	shirt := dbtest.SeedProduct(t, conn, store.ID, 25000, 4)
	mug := dbtest.SeedProduct(t, conn, store.ID, 9000, 10)
	price := int64(27000)
	large := dbtest.SeedVariant(t, conn, shirt.ID, &price, 2)

	repo := NewRepository(conn)
	found, err := repo.FindByIDs(context.Background(), []uuid.UUID{shirt.ID, mug.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, found, 2)

	gotShirt := found[shirt.ID]
	require.Len(t, gotShirt.Variants, 1)
	require.Equal(t, large.ID, gotShirt.Variants[0].ID)
	require.Equal(t, int64(27000), gotShirt.Variants[0].EffectivePriceCents(gotShirt))
	require.Empty(t, found[mug.ID].Variants)

	empty, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestRepositoryFindByID(t *testing.T) {
	conn := dbtest.Open(t)
	store := dbtest.SeedStore(t, conn, 0)
	product := dbtest.SeedProduct(t, conn, store.ID, 100, 1)
	dbtest.SeedVariant(t, conn, product.ID, nil, 3)

	repo := NewRepository(conn)
	found, err := repo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	require.Len(t, found.Variants, 1)
	require.Equal(t, int64(100), found.Variants[0].EffectivePriceCents(*found))

	_, err = repo.WithTx(nil).FindByID(context.Background(), uuid.New())
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
