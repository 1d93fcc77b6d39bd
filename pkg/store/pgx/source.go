package pgx

import (
	"context"
	"errors"

	pgxv5 "github.com/jackc/pgx/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/pgvector/pgvector-go"

	"github.com/atento/knowledge/pkg/common"
	"github.com/atento/knowledge/pkg/logger"
	"github.com/atento/knowledge/pkg/store"
)

const chunkInsertBatch = 250

const sourceColumns = `id, tenant_id, category, kind, title, file_name, mime_type, size_bytes, status, created_by, created_at, updated_at`

func scanSource(row pgxv5.Row) (common.Source, error) {
	var src common.Source
	err := row.Scan(
		&src.ID, &src.TenantID, &src.Category, &src.Kind, &src.Title,
		&src.FileName, &src.MimeType, &src.SizeBytes, &src.Status,
		&src.CreatedBy, &src.CreatedAt, &src.UpdatedAt,
	)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return src, common.ErrNotFound
	}
	return src, err
}

// CreateSourceWithChunks inserts the source row and all chunk rows in one
// transaction. Chunk scope is resolved against the source before any row
// is written.
func (s *Storage) CreateSourceWithChunks(ctx context.Context, source common.Source, chunks []common.Chunk) (common.Source, error) {
	if source.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return common.Source{}, err
		}
		source.ID = id
	}
	if source.Status == "" {
		source.Status = common.SourceStatusActive
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return common.Source{}, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO sources (id, tenant_id, category, kind, title, file_name, mime_type, size_bytes, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+sourceColumns,
		source.ID, source.TenantID, source.Category, source.Kind, source.Title,
		source.FileName, source.MimeType, source.SizeBytes, source.Status, source.CreatedBy,
	)
	created, err := scanSource(row)
	if err != nil {
		return common.Source{}, err
	}

	if err := insertChunks(ctx, tx, created, chunks); err != nil {
		return common.Source{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return common.Source{}, err
	}

	logger.Debug("[Store][CreateSource] Source persisted", "source", created.ID, "chunks", len(chunks))
	return created, nil
}

// AppendChunks adds chunks to an existing source. The source row is
// locked for the duration of the transaction so sequence numbers from
// concurrent appends cannot interleave.
func (s *Storage) AppendChunks(ctx context.Context, tenantID string, sourceID string, chunks []common.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		SELECT `+sourceColumns+` FROM sources
		WHERE id = $1 AND tenant_id = $2
		FOR SHARE`,
		sourceID, tenantID,
	)
	source, err := scanSource(row)
	if err != nil {
		return err
	}

	if err := insertChunks(ctx, tx, source, chunks); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertChunks(ctx context.Context, tx pgxv5.Tx, source common.Source, chunks []common.Chunk) error {
	return store.ChunkRange(len(chunks), chunkInsertBatch, func(start, end int) error {
		for i := start; i < end; i++ {
			chunk := chunks[i]
			if err := store.ResolveChunkScope(source, &chunk); err != nil {
				return err
			}
			if chunk.ID == "" {
				id, err := gonanoid.New()
				if err != nil {
					return err
				}
				chunk.ID = id
			}
			var embedding any
			if len(chunk.Embedding) > 0 {
				embedding = pgvector.NewVector(chunk.Embedding)
			}
			_, err := tx.Exec(ctx, `
				INSERT INTO chunks (id, source_id, tenant_id, category, seq, content, tokens, embedding)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				chunk.ID, source.ID, chunk.TenantID, chunk.Category,
				chunk.Seq, chunk.Content, chunk.Tokens, embedding,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Storage) GetSource(ctx context.Context, tenantID string, sourceID string) (common.Source, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT `+sourceColumns+` FROM sources
		WHERE id = $1 AND tenant_id = $2`,
		sourceID, tenantID,
	)
	return scanSource(row)
}

func (s *Storage) ArchiveSource(ctx context.Context, tenantID string, sourceID string) error {
	tag, err := s.conn.Exec(ctx, `
		UPDATE sources SET status = $3, updated_at = now()
		WHERE id = $1 AND tenant_id = $2`,
		sourceID, tenantID, common.SourceStatusArchived,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

// DeleteSource removes the source; chunks and their projections go with
// it via cascade, node back-references are cleared by the schema's SET
// NULL constraint.
func (s *Storage) DeleteSource(ctx context.Context, tenantID string, sourceID string) error {
	tag, err := s.conn.Exec(ctx, `
		DELETE FROM sources WHERE id = $1 AND tenant_id = $2`,
		sourceID, tenantID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	logger.Debug("[Store][DeleteSource] Source removed", "source", sourceID)
	return nil
}

func (s *Storage) ListChunks(ctx context.Context, tenantID string, category *common.Category, sourceID string, limit int) ([]common.Chunk, error) {
	if limit <= 0 {
		limit = 500
	}

	rows, err := s.conn.Query(ctx, `
		SELECT id, source_id, tenant_id, category, seq, content, tokens, created_at
		FROM chunks
		WHERE tenant_id = $1
		  AND ($2::text IS NULL OR category = $2)
		  AND ($3::text = '' OR source_id = $3)
		ORDER BY source_id, seq
		LIMIT $4`,
		tenantID, categoryArg(category), sourceID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []common.Chunk
	for rows.Next() {
		var c common.Chunk
		if err := rows.Scan(&c.ID, &c.SourceID, &c.TenantID, &c.Category, &c.Seq, &c.Content, &c.Tokens, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func categoryArg(category *common.Category) any {
	if category == nil {
		return nil
	}
	return string(*category)
}
