package pgx

import (
	"context"
	"errors"
	"strings"
	"testing"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/atento/knowledge/pkg/common"
	"github.com/atento/knowledge/pkg/store"
)

var errStubConn = errors.New("stub connection")

// recordingConn captures issued SQL and fails every call, which is
// enough to assert what reaches the database without a live server.
type recordingConn struct {
	queries []string
}

func (r *recordingConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	r.queries = append(r.queries, sql)
	return pgconn.CommandTag{}, errStubConn
}

func (r *recordingConn) Query(_ context.Context, sql string, _ ...any) (pgxv5.Rows, error) {
	r.queries = append(r.queries, sql)
	return nil, errStubConn
}

func (r *recordingConn) QueryRow(_ context.Context, sql string, _ ...any) pgxv5.Row {
	r.queries = append(r.queries, sql)
	return nil
}

func (r *recordingConn) Begin(context.Context) (pgxv5.Tx, error) {
	return nil, errStubConn
}

func TestSearchChunks_DimensionMismatchRejectedBeforeQuery(t *testing.T) {
	conn := &recordingConn{}
	s := NewStorage(conn, 4)

	_, err := s.SearchChunks(context.Background(), "t1", []float32{1, 0, 0}, store.SearchOptions{})
	var verr *common.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(conn.queries) != 0 {
		t.Fatalf("mismatched query reached the database: %v", conn.queries)
	}
}

func TestSearchChunks_QueryExcludesUnembeddedAndOrdersByInsertion(t *testing.T) {
	conn := &recordingConn{}
	s := NewStorage(conn, 3)

	_, err := s.SearchChunks(context.Background(), "t1", []float32{1, 0, 0}, store.SearchOptions{})
	if !errors.Is(err, errStubConn) {
		t.Fatalf("expected the stub error, got %v", err)
	}
	if len(conn.queries) != 1 {
		t.Fatalf("expected one query, got %d", len(conn.queries))
	}
	sql := conn.queries[0]
	if !strings.Contains(sql, "c.embedding IS NOT NULL") {
		t.Fatalf("rows without embeddings are not filtered out:\n%s", sql)
	}
	if !strings.Contains(sql, "ORDER BY distance, c.created_at, c.seq") {
		t.Fatalf("distance ties do not fall back to insertion order:\n%s", sql)
	}
}
