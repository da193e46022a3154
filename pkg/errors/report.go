package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const maxChain = 16

// Report is the log-only view of an error. It never reaches clients.
type Report struct {
	Message  string
	Code     Code
	Chain    []string
	Postgres *PGDiagnostics
}

// PGDiagnostics carries the server-side fields of a Postgres error from
// either pgx or lib/pq.
type PGDiagnostics struct {
	SQLState   string
	Constraint string
	Table      string
	Column     string
	Detail     string
	Message    string
}

// Dump walks err, following joined errors too, and collects what an
// operator needs to debug it.
func Dump(err error) Report {
	if err == nil {
		return Report{}
	}
	report := Report{Message: err.Error()}
	if typed := As(err); typed != nil {
		report.Code = typed.Code()
	}

	queue := []error{err}
	for len(queue) > 0 && len(report.Chain) < maxChain {
		current := queue[0]
		queue = queue[1:]
		report.Chain = append(report.Chain, fmt.Sprintf("%T: %v", current, current))
		switch u := current.(type) {
		case interface{ Unwrap() []error }:
			queue = append(queue, u.Unwrap()...)
		case interface{ Unwrap() error }:
			if next := u.Unwrap(); next != nil {
				queue = append(queue, next)
			}
		}
	}

	report.Postgres = postgresDiagnostics(err)
	return report
}

func postgresDiagnostics(err error) *PGDiagnostics {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &PGDiagnostics{
			SQLState:   pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &PGDiagnostics{
			SQLState:   string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	}
	return nil
}

// Fields flattens the report into structured log fields.
func (r Report) Fields() map[string]any {
	fields := map[string]any{
		"error":       r.Message,
		"error_chain": r.Chain,
	}
	if r.Code != "" {
		fields["error_code"] = r.Code
	}
	if pg := r.Postgres; pg != nil {
		fields["pg_code"] = pg.SQLState
		fields["pg_constraint"] = pg.Constraint
		fields["pg_table"] = pg.Table
		fields["pg_column"] = pg.Column
		fields["pg_detail"] = pg.Detail
		fields["pg_message"] = pg.Message
	}
	return fields
}
