// Package dbtest opens isolated in-memory sqlite databases carrying the same
// tables and guard constraints as the Postgres migrations.
package dbtest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/orderdesk-backend/pkg/db/models"
)

const schema = `
CREATE TABLE stores (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  owner_user_id TEXT NOT NULL,
  contact_phone TEXT,
  flat_shipping_cents INTEGER NOT NULL DEFAULT 0,
  currency TEXT NOT NULL DEFAULT 'MXN',
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE products (
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL REFERENCES stores(id),
  name TEXT NOT NULL,
  price_cents INTEGER NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  version INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE product_variants (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL REFERENCES products(id),
  name TEXT NOT NULL,
  price_cents INTEGER,
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  version INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE orders (
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL REFERENCES stores(id),
  token TEXT NOT NULL UNIQUE,
  buyer_kind TEXT NOT NULL,
  buyer_user_id TEXT,
  buyer_name TEXT,
  buyer_phone TEXT,
  buyer_email TEXT,
  status TEXT NOT NULL DEFAULT 'PENDING',
  payment_status TEXT NOT NULL DEFAULT 'UNPAID',
  delivery TEXT NOT NULL,
  currency TEXT NOT NULL,
  subtotal_cents INTEGER NOT NULL,
  shipping_cost_cents INTEGER NOT NULL,
  total_cents INTEGER NOT NULL CHECK (total_cents = subtotal_cents + shipping_cost_cents),
  proof_media_id TEXT,
  decision_outcome TEXT,
  decided_by TEXT,
  cancellation_reason TEXT,
  requested_at DATETIME,
  decided_at DATETIME,
  shipped_at DATETIME,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME,
  CHECK ((status IN ('PENDING', 'IN_REVIEW') AND decided_at IS NULL) OR (status NOT IN ('PENDING', 'IN_REVIEW') AND decided_at IS NOT NULL))
);
CREATE TABLE order_lines (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  product_id TEXT NOT NULL,
  variant_id TEXT,
  name TEXT NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  unit_price_cents INTEGER NOT NULL,
  unit_total_cents INTEGER NOT NULL,
  created_at DATETIME,
  UNIQUE (order_id, position)
);
CREATE TABLE stock_movements (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  variant_id TEXT,
  order_id TEXT,
  reason TEXT NOT NULL,
  delta INTEGER NOT NULL,
  stock_before INTEGER NOT NULL,
  stock_after INTEGER NOT NULL CHECK (stock_after >= 0),
  created_at DATETIME
);
CREATE TABLE outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload BLOB NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);
CREATE TABLE outbox_dlq (
  id TEXT PRIMARY KEY,
  event_id TEXT NOT NULL UNIQUE,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload_json BLOB NOT NULL,
  error_reason TEXT NOT NULL,
  error_message TEXT,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  failed_at DATETIME,
  created_at DATETIME
);`

// Open returns a fresh database private to the calling test.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:orderdesk_%s?mode=memory&cache=shared&_foreign_keys=1", strings.ReplaceAll(uuid.NewString(), "-", ""))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		require.NoError(t, conn.Exec(stmt).Error)
	}

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

// SeedStore inserts a store with the given flat shipping rate.
func SeedStore(t *testing.T, conn *gorm.DB, shippingCents int64) *models.Store {
	t.Helper()
	id := uuid.New()
	phone := "5511122233"
	store := &models.Store{
		ID:                id,
		Name:              "Store " + id.String()[:8],
		Slug:              "store-" + id.String()[:8],
		OwnerUserID:       uuid.New(),
		ContactPhone:      &phone,
		FlatShippingCents: shippingCents,
		Currency:          "MXN",
	}
	require.NoError(t, conn.Create(store).Error)
	return store
}

// SeedProduct inserts a product owned by storeID.
func SeedProduct(t *testing.T, conn *gorm.DB, storeID uuid.UUID, priceCents int64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:         uuid.New(),
		StoreID:    storeID,
		Name:       "Product " + uuid.NewString()[:6],
		PriceCents: priceCents,
		Stock:      stock,
	}
	require.NoError(t, conn.Omit("Variants").Create(product).Error)
	return product
}

// SeedVariant inserts a variant of productID. A nil price inherits the product price.
func SeedVariant(t *testing.T, conn *gorm.DB, productID uuid.UUID, priceCents *int64, stock int) *models.ProductVariant {
	t.Helper()
	variant := &models.ProductVariant{
		ID:         uuid.New(),
		ProductID:  productID,
		Name:       "Variant " + uuid.NewString()[:6],
		PriceCents: priceCents,
		Stock:      stock,
	}
	require.NoError(t, conn.Create(variant).Error)
	return variant
}

// OrderSeed describes an order inserted directly, bypassing service validation.
type OrderSeed struct {
	Store       *models.Store
	Status      string
	Phone       *string
	UserID      *uuid.UUID
	ProofID     *string
	RequestedAt *time.Time
	DecidedAt   *time.Time
	CreatedAt   time.Time
	Lines       []models.OrderLine
	Payment     string
}

// SeedOrder inserts an order and its lines, computing totals from the lines.
func SeedOrder(t *testing.T, conn *gorm.DB, seed OrderSeed) *models.Order {
	t.Helper()

	status := seed.Status
	if status == "" {
		status = "PENDING"
	}
	payment := seed.Payment
	if payment == "" {
		payment = "UNPAID"
	}
	created := seed.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	kind := "GUEST"
	if seed.UserID != nil {
		kind = "REGISTERED"
	}

	orderID := uuid.New()
	var subtotal int64
	lines := make([]models.OrderLine, len(seed.Lines))
	for i, line := range seed.Lines {
		line.ID = uuid.New()
		line.OrderID = orderID
		line.Position = i + 1
		if line.Name == "" {
			line.Name = fmt.Sprintf("line %d", i+1)
		}
		line.UnitTotalCents = line.UnitPriceCents * int64(line.Quantity)
		subtotal += line.UnitTotalCents
		lines[i] = line
	}

	order := map[string]any{
		"id":                  orderID,
		"store_id":            seed.Store.ID,
		"token":               "tok_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		"buyer_kind":          kind,
		"buyer_user_id":       seed.UserID,
		"buyer_phone":         seed.Phone,
		"status":              status,
		"payment_status":      payment,
		"delivery":            "SHIPPING",
		"currency":            seed.Store.Currency,
		"subtotal_cents":      subtotal,
		"shipping_cost_cents": seed.Store.FlatShippingCents,
		"total_cents":         subtotal + seed.Store.FlatShippingCents,
		"proof_media_id":      seed.ProofID,
		"requested_at":        seed.RequestedAt,
		"decided_at":          seed.DecidedAt,
		"created_at":          created,
		"updated_at":          created,
	}
	require.NoError(t, conn.Table("orders").Create(order).Error)
	if len(lines) > 0 {
		require.NoError(t, conn.Create(&lines).Error)
	}

	var out models.Order
	require.NoError(t, conn.Preload("Items").First(&out, "id = ?", orderID).Error)
	return &out
}
