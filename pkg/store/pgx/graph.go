package pgx

import (
	"context"
	"errors"

	pgxv5 "github.com/jackc/pgx/v5"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/atento/knowledge/pkg/common"
	"github.com/atento/knowledge/pkg/logger"
	"github.com/atento/knowledge/pkg/store"
)

const nodeColumns = `id, tenant_id, category, label, type, props, source_id, created_at`
const edgeColumns = `id, tenant_id, category, src_id, dst_id, relation, props, created_at`

func scanNode(row pgxv5.Rows) (common.Node, error) {
	var (
		n        common.Node
		sourceID *string
	)
	err := row.Scan(&n.ID, &n.TenantID, &n.Category, &n.Label, &n.Type, &n.Props, &sourceID, &n.CreatedAt)
	if sourceID != nil {
		n.SourceID = *sourceID
	}
	return n, err
}

func scanEdge(row pgxv5.Rows) (common.Edge, error) {
	var e common.Edge
	err := row.Scan(&e.ID, &e.TenantID, &e.Category, &e.SrcID, &e.DstID, &e.Relation, &e.Props, &e.CreatedAt)
	return e, err
}

// SaveGraphFragment upserts the fragment's nodes by label, then resolves
// each edge's endpoints against the tenant's nodes and inserts the edges
// that do not exist yet. The whole fragment commits or rolls back as one.
func (s *Storage) SaveGraphFragment(
	ctx context.Context,
	tenantID string,
	category common.Category,
	sourceID string,
	nodes []store.NodeInput,
	edges []store.EdgeInput,
) (store.GraphStats, error) {
	var stats store.GraphStats
	if !category.Valid() {
		return stats, &common.ValidationError{Field: "category", Reason: "unknown category"}
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return stats, err
	}
	defer tx.Rollback(ctx)

	idsByLabel := make(map[string]string, len(nodes))
	for _, node := range nodes {
		if node.Label == "" {
			continue
		}
		id, err := gonanoid.New()
		if err != nil {
			return stats, err
		}

		var (
			nodeID   string
			inserted bool
		)
		err = tx.QueryRow(ctx, `
			INSERT INTO nodes (id, tenant_id, category, label, type, props, source_id)
			VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
			ON CONFLICT (tenant_id, category, label) DO UPDATE
			SET type  = COALESCE(NULLIF(EXCLUDED.type, ''), nodes.type),
			    props = COALESCE(nodes.props, '{}'::jsonb) || COALESCE(EXCLUDED.props, '{}'::jsonb)
			RETURNING id, (xmax = 0)`,
			id, tenantID, category, node.Label, node.Type, node.Props, sourceID,
		).Scan(&nodeID, &inserted)
		if err != nil {
			return stats, err
		}

		idsByLabel[node.Label] = nodeID
		if inserted {
			stats.NodesCreated++
		}
	}

	for _, edge := range edges {
		srcID, err := resolveNodeID(ctx, tx, tenantID, category, edge.Src, idsByLabel)
		if err != nil {
			return stats, err
		}
		dstID, err := resolveNodeID(ctx, tx, tenantID, category, edge.Dst, idsByLabel)
		if err != nil {
			return stats, err
		}

		id, err := gonanoid.New()
		if err != nil {
			return stats, err
		}
		tag, err := tx.Exec(ctx, `
			INSERT INTO edges (id, tenant_id, category, src_id, dst_id, relation, props)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (tenant_id, category, src_id, dst_id, relation) DO NOTHING`,
			id, tenantID, category, srcID, dstID, edge.Relation, edge.Props,
		)
		if err != nil {
			return stats, err
		}
		stats.EdgesCreated += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return stats, err
	}

	logger.Debug("[Store][SaveGraphFragment] Fragment committed",
		"tenant", tenantID, "nodes", stats.NodesCreated, "edges", stats.EdgesCreated)
	return stats, nil
}

func resolveNodeID(ctx context.Context, tx pgxv5.Tx, tenantID string, category common.Category, label string, idsByLabel map[string]string) (string, error) {
	if id, ok := idsByLabel[label]; ok {
		return id, nil
	}

	var id string
	err := tx.QueryRow(ctx, `
		SELECT id FROM nodes
		WHERE tenant_id = $1 AND category = $2 AND label = $3`,
		tenantID, category, label,
	).Scan(&id)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return "", &common.ConsistencyError{Field: "edge endpoint", Have: label, Want: "existing node label"}
	}
	if err != nil {
		return "", err
	}
	idsByLabel[label] = id
	return id, nil
}

// ListGraph returns the tenant's nodes plus the edges whose two endpoints
// both pass the same filter.
func (s *Storage) ListGraph(ctx context.Context, tenantID string, filter store.GraphFilter) (store.GraphView, error) {
	var view store.GraphView
	if filter.LimitNodes <= 0 {
		filter.LimitNodes = 500
	}
	if filter.LimitEdges <= 0 {
		filter.LimitEdges = 1000
	}

	rows, err := s.conn.Query(ctx, `
		SELECT `+nodeColumns+` FROM nodes
		WHERE tenant_id = $1
		  AND ($2::text IS NULL OR category = $2)
		  AND ($3::text = '' OR source_id = $3)
		ORDER BY created_at, id
		LIMIT $4`,
		tenantID, categoryArg(filter.Category), filter.SourceID, filter.LimitNodes,
	)
	if err != nil {
		return view, err
	}
	defer rows.Close()

	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return view, err
		}
		view.Nodes = append(view.Nodes, n)
	}
	if err := rows.Err(); err != nil {
		return view, err
	}

	erows, err := s.conn.Query(ctx, `
		SELECT `+prefixedColumns("e", edgeColumns)+` FROM edges e
		JOIN nodes src ON src.id = e.src_id
		JOIN nodes dst ON dst.id = e.dst_id
		WHERE e.tenant_id = $1
		  AND ($2::text IS NULL OR e.category = $2)
		  AND ($3::text = '' OR (src.source_id = $3 AND dst.source_id = $3))
		ORDER BY e.created_at, e.id
		LIMIT $4`,
		tenantID, categoryArg(filter.Category), filter.SourceID, filter.LimitEdges,
	)
	if err != nil {
		return view, err
	}
	defer erows.Close()

	for erows.Next() {
		e, err := scanEdge(erows)
		if err != nil {
			return view, err
		}
		view.Edges = append(view.Edges, e)
	}
	return view, erows.Err()
}

// Neighbors returns the center node with its adjacent nodes and the edges
// connecting them, in either direction.
func (s *Storage) Neighbors(ctx context.Context, tenantID string, nodeID string, filter store.NeighborFilter) (store.NeighborView, error) {
	var view store.NeighborView
	if filter.Limit <= 0 {
		filter.Limit = 100
	}

	rows, err := s.conn.Query(ctx, `
		SELECT `+nodeColumns+` FROM nodes
		WHERE id = $1 AND tenant_id = $2`,
		nodeID, tenantID,
	)
	if err != nil {
		return view, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return view, err
		}
		return view, common.ErrNotFound
	}
	center, err := scanNode(rows)
	if err != nil {
		return view, err
	}
	rows.Close()

	view.CenterNodeID = center.ID
	view.Nodes = []common.Node{center}

	erows, err := s.conn.Query(ctx, `
		SELECT `+prefixedColumns("e", edgeColumns)+` FROM edges e
		JOIN nodes other ON other.id = CASE WHEN e.src_id = $1 THEN e.dst_id ELSE e.src_id END
		WHERE e.tenant_id = $2
		  AND (e.src_id = $1 OR e.dst_id = $1)
		  AND ($3::text IS NULL OR e.category = $3)
		  AND ($4::text = '' OR other.source_id = $4)
		ORDER BY e.created_at, e.id
		LIMIT $5`,
		nodeID, tenantID, categoryArg(filter.Category), filter.SourceID, filter.Limit,
	)
	if err != nil {
		return view, err
	}
	defer erows.Close()

	neighborIDs := make([]string, 0, filter.Limit)
	for erows.Next() {
		e, err := scanEdge(erows)
		if err != nil {
			return view, err
		}
		view.Edges = append(view.Edges, e)
		if e.SrcID != center.ID {
			neighborIDs = append(neighborIDs, e.SrcID)
		}
		if e.DstID != center.ID {
			neighborIDs = append(neighborIDs, e.DstID)
		}
	}
	if err := erows.Err(); err != nil {
		return view, err
	}

	neighborIDs = store.DedupeStrings(neighborIDs)
	if len(neighborIDs) == 0 {
		return view, nil
	}

	nrows, err := s.conn.Query(ctx, `
		SELECT `+nodeColumns+` FROM nodes
		WHERE tenant_id = $1 AND id = ANY($2)
		ORDER BY created_at, id`,
		tenantID, neighborIDs,
	)
	if err != nil {
		return view, err
	}
	defer nrows.Close()

	for nrows.Next() {
		n, err := scanNode(nrows)
		if err != nil {
			return view, err
		}
		view.Nodes = append(view.Nodes, n)
	}
	return view, nrows.Err()
}
