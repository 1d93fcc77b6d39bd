package pgx

import (
	"context"

	"github.com/pgvector/pgvector-go"

	"github.com/atento/knowledge/pkg/common"
	"github.com/atento/knowledge/pkg/store"
)

// SearchChunks ranks the tenant's chunks by cosine distance to the query
// vector. Chunks whose embedding has not been computed yet are excluded,
// and ties on distance break on insertion order (created_at, then the
// caller-assigned sequence).
func (s *Storage) SearchChunks(ctx context.Context, tenantID string, query []float32, opts store.SearchOptions) ([]store.SearchResult, error) {
	opts, err := store.NormalizeSearch(query, s.dims, opts)
	if err != nil {
		return nil, err
	}

	rows, err := s.conn.Query(ctx, `
		SELECT c.id, c.source_id, c.tenant_id, c.category, c.seq, c.content, c.tokens, c.created_at,
		       s.title, c.embedding <=> $2 AS distance
		FROM chunks c
		JOIN sources s ON s.id = c.source_id
		WHERE c.tenant_id = $1
		  AND c.embedding IS NOT NULL
		  AND ($3::text IS NULL OR c.category = $3)
		ORDER BY distance, c.created_at, c.seq, c.id
		LIMIT $4`,
		tenantID, pgvector.NewVector(query), categoryArg(opts.Category), opts.TopK,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.SearchResult
	for rows.Next() {
		var (
			c     common.Chunk
			title string
			dist  float64
		)
		if err := rows.Scan(&c.ID, &c.SourceID, &c.TenantID, &c.Category, &c.Seq, &c.Content, &c.Tokens, &c.CreatedAt, &title, &dist); err != nil {
			return nil, err
		}
		out = append(out, store.SearchResult{Chunk: c, SourceTitle: title, Score: dist})
	}
	return out, rows.Err()
}
