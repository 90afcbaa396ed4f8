package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrUniqueViolation is returned when an insert collides with a unique
// constraint (lost race against a concurrent writer).
var ErrUniqueViolation = errors.New("unique constraint violation")

// Queryer is satisfied by both *sqlx.DB and *sqlx.Tx, so every repository can
// be bound to a transaction with WithTx.
type Queryer = sqlx.ExtContext

// get runs a single-row query, rebinding placeholders for the driver.
func get(ctx context.Context, q Queryer, dest any, query string, args ...any) error {
	return sqlx.GetContext(ctx, q, dest, q.Rebind(query), args...)
}

// selectAll runs a multi-row query, rebinding placeholders for the driver.
func selectAll(ctx context.Context, q Queryer, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, q, dest, q.Rebind(query), args...)
}

// exec runs a statement and maps unique constraint failures to ErrUniqueViolation.
func exec(ctx context.Context, q Queryer, query string, args ...any) (sql.Result, error) {
	res, err := q.ExecContext(ctx, q.Rebind(query), args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %v", ErrUniqueViolation, err)
		}
		return nil, err
	}
	return res, nil
}

// exists reports whether query returns at least one row.
func exists(ctx context.Context, q Queryer, query string, args ...any) (bool, error) {
	var one int
	err := get(ctx, q, &one, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// count runs a COUNT(*) query.
func count(ctx context.Context, q Queryer, query string, args ...any) (int, error) {
	var n int
	if err := get(ctx, q, &n, query, args...); err != nil {
		return 0, err
	}
	return n, nil
}

// lockClause returns the row-lock suffix for SELECT statements: " FOR UPDATE"
// or " FOR SHARE" on PostgreSQL. SQLite has no row locks; its writers are
// serialized by the database lock instead.
func lockClause(q Queryer, mode string) string {
	if q.DriverName() == "postgres" {
		return " FOR " + mode
	}
	return ""
}

const (
	lockUpdate = "UPDATE"
	lockShare  = "SHARE"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return false
}
