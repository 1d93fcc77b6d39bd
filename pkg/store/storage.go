package store

import (
	"context"

	"github.com/atento/knowledge/pkg/common"
)

// DefaultTopK is the similarity search result count when the caller does
// not override it.
const DefaultTopK = 8

// SearchOptions scopes a similarity search. Category nil searches both
// categories; TopK <= 0 falls back to DefaultTopK.
type SearchOptions struct {
	Category *common.Category
	TopK     int
}

// SearchResult is one ranked chunk. Score is the cosine distance to the
// query vector; lower is more similar.
type SearchResult struct {
	Chunk       common.Chunk
	SourceTitle string
	Score       float64
}

// GraphFilter scopes a graph read. An edge is only returned when both of
// its endpoint nodes pass the same filter.
type GraphFilter struct {
	Category   *common.Category
	SourceID   string
	LimitNodes int
	LimitEdges int
}

// NeighborFilter scopes a neighborhood read around one node.
type NeighborFilter struct {
	Category *common.Category
	SourceID string
	Limit    int
}

// GraphView is the visualization payload for a graph read.
type GraphView struct {
	Nodes []common.Node
	Edges []common.Edge
}

// NeighborView is the payload for a neighborhood read.
type NeighborView struct {
	CenterNodeID string
	Nodes        []common.Node
	Edges        []common.Edge
}

// NodeInput is one graph entity to persist. Tenant and category come from
// the invoking scope, never per-node.
type NodeInput struct {
	Label string
	Type  string
	Props map[string]any
}

// EdgeInput is one relation to persist, referencing its endpoints by node
// label within the same tenant and category scope.
type EdgeInput struct {
	Src      string
	Dst      string
	Relation string
	Props    map[string]any
}

// GraphStats counts what one graph write actually created. Deduplicated
// edges and merged nodes are not counted.
type GraphStats struct {
	NodesCreated int
	EdgesCreated int
}

// ProjectionView is one projected point joined with display metadata.
// Preview is the chunk content truncated to PreviewLength characters.
type ProjectionView struct {
	Projection  common.Projection
	SourceID    string
	SourceTitle string
	Preview     string
}

// PreviewLength bounds the chunk content preview returned with
// projections, applied before any downstream anonymization.
const PreviewLength = 300

// KnowledgeStorage persists and queries tenant-scoped knowledge: sources
// with their chunks, the derived graph and chunk projections. Every
// method is scoped to exactly one tenant; no implementation may read or
// write across tenants.
type KnowledgeStorage interface {
	// CreateSourceWithChunks persists a source and its ordered chunks as
	// one atomic unit. Chunk tenant/category are inherited from the source
	// when unset and rejected with a consistency error when mismatched.
	CreateSourceWithChunks(ctx context.Context, source common.Source, chunks []common.Chunk) (common.Source, error)
	// AppendChunks adds chunks to an existing source under the same
	// inherit-or-reject scope rule, atomically.
	AppendChunks(ctx context.Context, tenantID string, sourceID string, chunks []common.Chunk) error
	GetSource(ctx context.Context, tenantID string, sourceID string) (common.Source, error)
	ArchiveSource(ctx context.Context, tenantID string, sourceID string) error
	// DeleteSource removes the source and all its chunks; graph nodes
	// referencing it keep existing with the back-reference cleared.
	DeleteSource(ctx context.Context, tenantID string, sourceID string) error

	// ListChunks returns chunks of the tenant, optionally narrowed to one
	// category and one source, ordered by source and sequence.
	ListChunks(ctx context.Context, tenantID string, category *common.Category, sourceID string, limit int) ([]common.Chunk, error)
	// SearchChunks returns the TopK nearest chunks by cosine distance.
	SearchChunks(ctx context.Context, tenantID string, query []float32, opts SearchOptions) ([]SearchResult, error)

	// SaveGraphFragment persists one extraction fragment atomically:
	// nodes are inserted or merged by label, then edges are resolved
	// against the tenant's nodes and inserted if absent. An edge endpoint
	// that exists nowhere in the scope is a consistency error.
	SaveGraphFragment(ctx context.Context, tenantID string, category common.Category, sourceID string, nodes []NodeInput, edges []EdgeInput) (GraphStats, error)
	ListGraph(ctx context.Context, tenantID string, filter GraphFilter) (GraphView, error)
	Neighbors(ctx context.Context, tenantID string, nodeID string, filter NeighborFilter) (NeighborView, error)

	// UpsertProjections overwrites the tenant's points for one algorithm,
	// keyed by (chunk, algorithm).
	UpsertProjections(ctx context.Context, tenantID string, algorithm string, points []common.Projection) error
	ListProjections(ctx context.Context, tenantID string, algorithm string, limit int) ([]ProjectionView, error)
}
