package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/angelmondragon/orderdesk-backend/pkg/errors"
)

type lineBody struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type orderBody struct {
	Note  string     `json:"note" validate:"omitempty,notblank,max=10"`
	Items []lineBody `json:"items" validate:"required,min=1,dive"`
}

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
}

func TestDecodeJSONBodyAccepts(t *testing.T) {
	var dest orderBody
	err := DecodeJSONBody(post(`{"items":[{"product_id":"0b8f4f5e-2e0b-4f6a-9d43-0c1c2f0a9e11","quantity":2}]}`), &dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dest.Items) != 1 || dest.Items[0].Quantity != 2 {
		t.Fatalf("unexpected decode %+v", dest)
	}
}

func TestDecodeJSONBodyRejects(t *testing.T) {
	cases := map[string]string{
		"empty":         ``,
		"unknown field": `{"items":[],"total":10}`,
		"trailing data": `{"items":[{"product_id":"0b8f4f5e-2e0b-4f6a-9d43-0c1c2f0a9e11","quantity":1}]} {}`,
		"oversized":     `{"note":"` + strings.Repeat("a", MaxBodyBytes) + `"}`,
		"bad uuid":      `{"items":[{"product_id":"nope","quantity":1}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			var dest orderBody
			err := DecodeJSONBody(post(body), &dest)
			if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestDecodeJSONBodyReportsFieldPaths(t *testing.T) {
	var dest orderBody
	err := DecodeJSONBody(post(`{"note":"   ","items":[{"product_id":"0b8f4f5e-2e0b-4f6a-9d43-0c1c2f0a9e11","quantity":0}]}`), &dest)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %#v", typed.Details())
	}
	if details["items[0].quantity"] != "is required" {
		t.Fatalf("expected nested quantity detail, got %v", details)
	}
	if details["note"] != "is required" {
		t.Fatalf("expected blank note to be flagged, got %v", details)
	}
}

func TestSanitizeString(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"  Ana  ", 0, "Ana"},
		{"Ana\t\n  María", 0, "Ana María"},
		{"bell\x07ring", 0, "bellring"},
		{"ñañañaña", 3, "ñañ"},
		{"ab cd", 3, "ab"},
	}
	for _, tc := range cases {
		if got := SanitizeString(tc.in, tc.max); got != tc.want {
			t.Fatalf("SanitizeString(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
	blank := "   "
	if SanitizeOptional(&blank, 10) != nil {
		t.Fatalf("blank optional should collapse to nil")
	}
	if SanitizeOptional(nil, 10) != nil {
		t.Fatalf("nil optional should stay nil")
	}
}

func TestQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=5&status=PENDING,IN_REVIEW&status=CONFIRMED&from=2026-03-01&bad=x", nil)

	if n, err := ParseQueryInt(req, "limit", 25, 1, 100); err != nil || n != 5 {
		t.Fatalf("limit = %d, %v", n, err)
	}
	if _, err := ParseQueryInt(req, "bad", 25, 1, 100); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for non-numeric value")
	}
	if got := ParseQueryList(req, "status"); len(got) != 3 || got[2] != "CONFIRMED" {
		t.Fatalf("unexpected status list %v", got)
	}
	from, err := ParseQueryTime(req, "from")
	if err != nil || from == nil || from.Day() != 1 {
		t.Fatalf("from = %v, %v", from, err)
	}
	if to, err := ParseQueryTime(req, "to"); err != nil || to != nil {
		t.Fatalf("absent time should be nil, got %v %v", to, err)
	}
}

func TestParseUUIDParam(t *testing.T) {
	withParam := func(value string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("storeId", value)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	for _, bad := range []string{"", "not-a-uuid"} {
		if _, err := ParseUUIDParam(withParam(bad), "storeId"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation error for %q, got %v", bad, err)
		}
	}
	id, err := ParseUUIDParam(withParam(" 0b8f4f5e-2e0b-4f6a-9d43-0c1c2f0a9e11 "), "storeId")
	if err != nil || id.String() != "0b8f4f5e-2e0b-4f6a-9d43-0c1c2f0a9e11" {
		t.Fatalf("unexpected parse %v %v", id, err)
	}
}
