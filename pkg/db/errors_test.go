package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	pgErr := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "orders_token_key"})
	if !IsUniqueViolation(pgErr, "") {
		t.Fatalf("expected pgx unique violation")
	}
	if !IsUniqueViolation(pgErr, "orders_token_key") {
		t.Fatalf("expected constraint match")
	}
	if IsUniqueViolation(pgErr, "orders_pkey") {
		t.Fatalf("unexpected match on other constraint")
	}

	pqErr := &pq.Error{Code: "23505", Constraint: "stores_slug_key"}
	if !IsUniqueViolation(pqErr, "stores_slug_key") {
		t.Fatalf("expected lib/pq unique violation")
	}

	sqliteErr := errors.New("UNIQUE constraint failed: orders.token")
	if !IsUniqueViolation(sqliteErr, "orders.token") {
		t.Fatalf("expected sqlite unique violation")
	}

	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}, "") {
		t.Fatalf("foreign key violation is not unique violation")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatalf("nil error is not a violation")
	}
}

func TestIsLockContention(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "55P03"} {
		if !IsLockContention(&pgconn.PgError{Code: code}) {
			t.Fatalf("expected %s to be contention", code)
		}
	}
	if IsLockContention(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("unique violation is not contention")
	}
	if !IsLockContention(errors.New("database is locked")) {
		t.Fatalf("expected sqlite busy to be contention")
	}
}

func TestIsCheckViolation(t *testing.T) {
	if !IsCheckViolation(&pgconn.PgError{Code: "23514"}) {
		t.Fatalf("expected check violation")
	}
	if !IsCheckViolation(errors.New("CHECK constraint failed: stock >= 0")) {
		t.Fatalf("expected sqlite check violation")
	}
}
