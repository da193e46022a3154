package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/orderdesk-backend/api/middleware"
	"github.com/angelmondragon/orderdesk-backend/internal/income"
	"github.com/angelmondragon/orderdesk-backend/internal/inventory"
	pkgerrors "github.com/angelmondragon/orderdesk-backend/pkg/errors"
)

type reportFunc func(ctx context.Context, storeID uuid.UUID, r income.Range) (*income.Report, error)

func (f reportFunc) Report(ctx context.Context, storeID uuid.UUID, r income.Range) (*income.Report, error) {
	return f(ctx, storeID, r)
}

type restockFunc func(ctx context.Context, input inventory.RestockInput) (*inventory.StockLevel, error)

func (f restockFunc) Restock(ctx context.Context, input inventory.RestockInput) (*inventory.StockLevel, error) {
	return f(ctx, input)
}

type inspectFunc func(ctx context.Context, query inventory.StockQuery) (*inventory.StockView, error)

func (f inspectFunc) Inspect(ctx context.Context, query inventory.StockQuery) (*inventory.StockView, error) {
	return f(ctx, query)
}

func storeRequest(method, target, body string, storeID uuid.UUID) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("storeId", storeID.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestStoreIncomeRange(t *testing.T) {
	storeID := uuid.New()
	var captured income.Range
	svc := reportFunc(func(ctx context.Context, id uuid.UUID, r income.Range) (*income.Report, error) {
		captured = r
		return &income.Report{StoreID: id, From: r.From, To: r.To, Count: 2, TotalCents: 4500, Currency: "MXN", TotalDisplay: "45.00"}, nil
	})

	rec := httptest.NewRecorder()
	StoreIncome(svc, nil)(rec, storeRequest(http.MethodGet, "/stores/x/income?from=2026-03-01&to=2026-04-01", "", storeID))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if !captured.From.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) || !captured.To.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected range %+v", captured)
	}
	var body struct {
		OK   bool `json:"ok"`
		Data struct {
			Count int   `json:"count"`
			Total int64 `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.OK || body.Data.Count != 2 || body.Data.Total != 4500 {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestStoreIncomeRequiresBothBounds(t *testing.T) {
	svc := reportFunc(func(ctx context.Context, id uuid.UUID, r income.Range) (*income.Report, error) {
		t.Fatal("service must not be called")
		return nil, nil
	})
	for _, query := range []string{"?from=2026-03-01", "?to=2026-03-01", "?from=yesterday&to=2026-03-01"} {
		rec := httptest.NewRecorder()
		StoreIncome(svc, nil)(rec, storeRequest(http.MethodGet, "/stores/x/income"+query, "", uuid.New()))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", query, rec.Code)
		}
	}
}

func TestRestockUsesPathStoreAndActor(t *testing.T) {
	storeID, userID, productID := uuid.New(), uuid.New(), uuid.New()
	var captured inventory.RestockInput
	svc := restockFunc(func(ctx context.Context, input inventory.RestockInput) (*inventory.StockLevel, error) {
		captured = input
		return &inventory.StockLevel{ProductID: input.ProductID, StockBefore: 1, StockAfter: 6}, nil
	})

	req := storeRequest(http.MethodPost, "/stores/x/inventory/restock", `{"product_id":"`+productID.String()+`","quantity":5}`, storeID)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	rec := httptest.NewRecorder()
	Restock(svc, nil)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.StoreID != storeID || captured.ActorUserID != userID || captured.ProductID != productID || captured.Quantity != 5 {
		t.Fatalf("unexpected input %+v", captured)
	}
	if captured.VariantID != nil {
		t.Fatalf("expected product level restock")
	}
}

func TestRestockErrors(t *testing.T) {
	storeID, userID := uuid.New(), uuid.New()
	svc := restockFunc(func(ctx context.Context, input inventory.RestockInput) (*inventory.StockLevel, error) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	})

	cases := []struct {
		body string
		user bool
		want int
	}{
		{body: `{"product_id":"` + uuid.NewString() + `","quantity":1}`, user: false, want: http.StatusUnauthorized},
		{body: `{"product_id":"` + uuid.NewString() + `","quantity":0}`, user: true, want: http.StatusBadRequest},
		{body: `{"product_id":"` + uuid.NewString() + `","quantity":1,"stock":9}`, user: true, want: http.StatusBadRequest},
		{body: `{"product_id":"` + uuid.NewString() + `","quantity":1}`, user: true, want: http.StatusNotFound},
	}
	for _, tc := range cases {
		req := storeRequest(http.MethodPost, "/stores/x/inventory/restock", tc.body, storeID)
		if tc.user {
			req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
		}
		rec := httptest.NewRecorder()
		Restock(svc, nil)(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d got %d", tc.body, tc.want, rec.Code)
		}
	}
}

func TestStockLevelParsesPathAndQuery(t *testing.T) {
	storeID, productID, variantID := uuid.New(), uuid.New(), uuid.New()
	var captured inventory.StockQuery
	svc := inspectFunc(func(ctx context.Context, query inventory.StockQuery) (*inventory.StockView, error) {
		captured = query
		return &inventory.StockView{ProductID: query.ProductID, VariantID: query.VariantID, Stock: 4}, nil
	})

	req := storeRequest(http.MethodGet, "/stores/x/inventory/y?variant_id="+variantID.String()+"&limit=5", "", storeID)
	chi.RouteContext(req.Context()).URLParams.Add("productId", productID.String())
	rec := httptest.NewRecorder()
	StockLevel(svc, nil)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.StoreID != storeID || captured.ProductID != productID || captured.Limit != 5 {
		t.Fatalf("unexpected query %+v", captured)
	}
	if captured.VariantID == nil || *captured.VariantID != variantID {
		t.Fatalf("expected variant %s, got %v", variantID, captured.VariantID)
	}
}

func TestStockLevelErrors(t *testing.T) {
	storeID := uuid.New()
	svc := inspectFunc(func(ctx context.Context, query inventory.StockQuery) (*inventory.StockView, error) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	})

	cases := []struct {
		product string
		query   string
		want    int
	}{
		{product: "nope", want: http.StatusBadRequest},
		{product: uuid.NewString(), query: "?variant_id=nope", want: http.StatusBadRequest},
		{product: uuid.NewString(), query: "?limit=1000", want: http.StatusBadRequest},
		{product: uuid.NewString(), want: http.StatusNotFound},
	}
	for _, tc := range cases {
		req := storeRequest(http.MethodGet, "/stores/x/inventory/y"+tc.query, "", storeID)
		chi.RouteContext(req.Context()).URLParams.Add("productId", tc.product)
		rec := httptest.NewRecorder()
		StockLevel(svc, nil)(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s%s: expected %d got %d", tc.product, tc.query, tc.want, rec.Code)
		}
	}
}
