package pgx

import (
	"context"

	"github.com/atento/knowledge/pkg/common"
	"github.com/atento/knowledge/pkg/store"
)

// UpsertProjections replaces the tenant's layout for one algorithm: every
// point is written keyed by (chunk, algorithm), points for chunks no
// longer present are removed. Chunk ownership is checked via a join so a
// foreign chunk id silently maps to nothing instead of leaking writes
// across tenants.
func (s *Storage) UpsertProjections(ctx context.Context, tenantID string, algorithm string, points []common.Projection) error {
	if algorithm == "" {
		return &common.ValidationError{Field: "algorithm", Reason: "algorithm is required"}
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	keep := make([]string, 0, len(points))
	for _, p := range points {
		tag, err := tx.Exec(ctx, `
			INSERT INTO projections (chunk_id, tenant_id, algorithm, x, y)
			SELECT c.id, c.tenant_id, $3, $4, $5
			FROM chunks c
			WHERE c.id = $1 AND c.tenant_id = $2
			ON CONFLICT (chunk_id, algorithm) DO UPDATE
			SET x = EXCLUDED.x, y = EXCLUDED.y`,
			p.ChunkID, tenantID, algorithm, p.X, p.Y,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return common.ErrNotFound
		}
		keep = append(keep, p.ChunkID)
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM projections
		WHERE tenant_id = $1 AND algorithm = $2 AND NOT (chunk_id = ANY($3))`,
		tenantID, algorithm, keep,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListProjections returns the stored layout joined with a bounded content
// preview and the owning source's display metadata.
func (s *Storage) ListProjections(ctx context.Context, tenantID string, algorithm string, limit int) ([]store.ProjectionView, error) {
	if limit <= 0 {
		limit = 2000
	}

	rows, err := s.conn.Query(ctx, `
		SELECT p.chunk_id, p.algorithm, p.x, p.y, c.source_id, s.title, LEFT(c.content, $4)
		FROM projections p
		JOIN chunks c ON c.id = p.chunk_id
		JOIN sources s ON s.id = c.source_id
		WHERE p.tenant_id = $1 AND p.algorithm = $2
		ORDER BY c.source_id, c.seq
		LIMIT $3`,
		tenantID, algorithm, limit, store.PreviewLength,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.ProjectionView
	for rows.Next() {
		var v store.ProjectionView
		if err := rows.Scan(&v.Projection.ChunkID, &v.Projection.Algorithm, &v.Projection.X, &v.Projection.Y, &v.SourceID, &v.SourceTitle, &v.Preview); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
