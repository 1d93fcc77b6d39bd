// Package pgx implements the knowledge storage interface on PostgreSQL
// with pgvector for chunk similarity search.
package pgx

import (
	"context"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// Storage is the PostgreSQL-backed knowledge store. Writes that span
// several rows run in a single transaction so a failing chunk or edge
// aborts the whole unit.
type Storage struct {
	conn pgxIConn
	dims int
}

// NewStorage wraps an existing connection or pool. dims is the embedding
// width of the deployment; search queries of a different width are
// rejected before reaching the database. The schema is managed by the
// migrations directory, not by this package.
func NewStorage(conn pgxIConn, dims int) *Storage {
	return &Storage{conn: conn, dims: dims}
}
