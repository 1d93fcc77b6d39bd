// Package memory implements the knowledge storage interface in process
// memory. It mirrors the PostgreSQL implementation's semantics, including
// scope inheritance, cascade deletes and edge deduplication, and backs
// the pipeline tests plus single-binary demo setups.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/atento/knowledge/pkg/common"
	"github.com/atento/knowledge/pkg/store"
)

// Storage holds all tenants' data behind one mutex. Order slices preserve
// insertion order so listings are deterministic.
type Storage struct {
	mu sync.Mutex

	sources map[string]common.Source
	chunks  map[string]common.Chunk
	nodes   map[string]common.Node
	edges   map[string]common.Edge
	// projections are keyed by chunk id + "\x00" + algorithm.
	projections map[string]common.Projection

	chunkOrder []string
	nodeOrder  []string
	edgeOrder  []string
}

var _ store.KnowledgeStorage = (*Storage)(nil)

func NewStorage() *Storage {
	return &Storage{
		sources:     make(map[string]common.Source),
		chunks:      make(map[string]common.Chunk),
		nodes:       make(map[string]common.Node),
		edges:       make(map[string]common.Edge),
		projections: make(map[string]common.Projection),
	}
}

func (s *Storage) CreateSourceWithChunks(_ context.Context, source common.Source, chunks []common.Chunk) (common.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if source.ID == "" {
		source.ID = gonanoid.Must()
	}
	if source.Status == "" {
		source.Status = common.SourceStatusActive
	}
	now := time.Now()
	source.CreatedAt = now
	source.UpdatedAt = now

	staged, err := s.stageChunks(source, chunks)
	if err != nil {
		return common.Source{}, err
	}

	s.sources[source.ID] = source
	s.commitChunks(staged)
	return source, nil
}

func (s *Storage) AppendChunks(_ context.Context, tenantID string, sourceID string, chunks []common.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	source, ok := s.sources[sourceID]
	if !ok || source.TenantID != tenantID {
		return common.ErrNotFound
	}

	staged, err := s.stageChunks(source, chunks)
	if err != nil {
		return err
	}
	s.commitChunks(staged)
	return nil
}

// stageChunks resolves scope and assigns ids without mutating the store,
// so a mid-batch consistency error leaves nothing behind.
func (s *Storage) stageChunks(source common.Source, chunks []common.Chunk) ([]common.Chunk, error) {
	staged := make([]common.Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		if err := store.ResolveChunkScope(source, &chunk); err != nil {
			return nil, err
		}
		if chunk.ID == "" {
			chunk.ID = gonanoid.Must()
		}
		chunk.SourceID = source.ID
		chunk.CreatedAt = time.Now()
		staged = append(staged, chunk)
	}
	return staged, nil
}

func (s *Storage) commitChunks(staged []common.Chunk) {
	for _, chunk := range staged {
		s.chunks[chunk.ID] = chunk
		s.chunkOrder = append(s.chunkOrder, chunk.ID)
	}
}

func (s *Storage) GetSource(_ context.Context, tenantID string, sourceID string) (common.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	source, ok := s.sources[sourceID]
	if !ok || source.TenantID != tenantID {
		return common.Source{}, common.ErrNotFound
	}
	return source, nil
}

func (s *Storage) ArchiveSource(_ context.Context, tenantID string, sourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	source, ok := s.sources[sourceID]
	if !ok || source.TenantID != tenantID {
		return common.ErrNotFound
	}
	source.Status = common.SourceStatusArchived
	source.UpdatedAt = time.Now()
	s.sources[sourceID] = source
	return nil
}

func (s *Storage) DeleteSource(_ context.Context, tenantID string, sourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	source, ok := s.sources[sourceID]
	if !ok || source.TenantID != tenantID {
		return common.ErrNotFound
	}
	delete(s.sources, sourceID)

	keptChunks := s.chunkOrder[:0]
	for _, id := range s.chunkOrder {
		chunk := s.chunks[id]
		if chunk.SourceID == sourceID {
			delete(s.chunks, id)
			for key, p := range s.projections {
				if p.ChunkID == id {
					delete(s.projections, key)
				}
			}
			continue
		}
		keptChunks = append(keptChunks, id)
	}
	s.chunkOrder = keptChunks

	for id, node := range s.nodes {
		if node.SourceID == sourceID {
			node.SourceID = ""
			s.nodes[id] = node
		}
	}
	return nil
}

func (s *Storage) ListChunks(_ context.Context, tenantID string, category *common.Category, sourceID string, limit int) ([]common.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 500
	}

	var out []common.Chunk
	for _, id := range s.chunkOrder {
		chunk := s.chunks[id]
		if chunk.TenantID != tenantID {
			continue
		}
		if category != nil && chunk.Category != *category {
			continue
		}
		if sourceID != "" && chunk.SourceID != sourceID {
			continue
		}
		out = append(out, chunk)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SourceID != out[j].SourceID {
			return out[i].SourceID < out[j].SourceID
		}
		return out[i].Seq < out[j].Seq
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Storage) SearchChunks(_ context.Context, tenantID string, query []float32, opts store.SearchOptions) ([]store.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	opts, err := store.NormalizeSearch(query, s.storedDimensions(), opts)
	if err != nil {
		return nil, err
	}

	var results []store.SearchResult
	for _, id := range s.chunkOrder {
		chunk := s.chunks[id]
		if chunk.TenantID != tenantID {
			continue
		}
		if opts.Category != nil && chunk.Category != *opts.Category {
			continue
		}
		if len(chunk.Embedding) == 0 {
			continue
		}
		source, ok := s.sources[chunk.SourceID]
		if !ok {
			continue
		}
		results = append(results, store.SearchResult{
			Chunk:       chunk,
			SourceTitle: source.Title,
			Score:       cosineDistance(query, chunk.Embedding),
		})
	}

	// results follow chunkOrder, so the stable sort keeps insertion
	// order for equal distances.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})
	if len(results) > opts.TopK {
		results = results[:opts.TopK]
	}
	return results, nil
}

func (s *Storage) storedDimensions() int {
	for _, chunk := range s.chunks {
		if len(chunk.Embedding) > 0 {
			return len(chunk.Embedding)
		}
	}
	return 0
}

func cosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

func (s *Storage) SaveGraphFragment(
	_ context.Context,
	tenantID string,
	category common.Category,
	sourceID string,
	nodes []store.NodeInput,
	edges []store.EdgeInput,
) (store.GraphStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats store.GraphStats
	if !category.Valid() {
		return stats, &common.ValidationError{Field: "category", Reason: "unknown category"}
	}

	// Stage on copies so an unresolvable edge endpoint aborts the whole
	// fragment, matching the transactional store.
	stagedNodes := make(map[string]common.Node, len(s.nodes))
	for id, n := range s.nodes {
		stagedNodes[id] = n
	}
	var stagedOrder []string

	idsByLabel := make(map[string]string, len(nodes))
	for _, input := range nodes {
		if input.Label == "" {
			continue
		}
		if existingID := s.findNodeID(tenantID, category, input.Label); existingID != "" {
			node := stagedNodes[existingID]
			if node.Type == "" && input.Type != "" {
				node.Type = input.Type
			}
			node.Props = mergeProps(node.Props, input.Props)
			stagedNodes[existingID] = node
			idsByLabel[input.Label] = existingID
			continue
		}

		node := common.Node{
			ID:        gonanoid.Must(),
			TenantID:  tenantID,
			Category:  category,
			Label:     input.Label,
			Type:      input.Type,
			Props:     mergeProps(nil, input.Props),
			SourceID:  sourceID,
			CreatedAt: time.Now(),
		}
		stagedNodes[node.ID] = node
		stagedOrder = append(stagedOrder, node.ID)
		idsByLabel[input.Label] = node.ID
		stats.NodesCreated++
	}

	var stagedEdges []common.Edge
	for _, input := range edges {
		srcID, ok := idsByLabel[input.Src]
		if !ok {
			srcID = s.findNodeID(tenantID, category, input.Src)
		}
		dstID, ok := idsByLabel[input.Dst]
		if !ok {
			dstID = s.findNodeID(tenantID, category, input.Dst)
		}
		if srcID == "" {
			return store.GraphStats{}, &common.ConsistencyError{Field: "edge endpoint", Have: input.Src, Want: "existing node label"}
		}
		if dstID == "" {
			return store.GraphStats{}, &common.ConsistencyError{Field: "edge endpoint", Have: input.Dst, Want: "existing node label"}
		}

		if s.edgeExists(tenantID, category, srcID, dstID, input.Relation) {
			continue
		}
		duplicateInFragment := false
		for _, e := range stagedEdges {
			if e.SrcID == srcID && e.DstID == dstID && e.Relation == input.Relation {
				duplicateInFragment = true
				break
			}
		}
		if duplicateInFragment {
			continue
		}

		stagedEdges = append(stagedEdges, common.Edge{
			ID:        gonanoid.Must(),
			TenantID:  tenantID,
			Category:  category,
			SrcID:     srcID,
			DstID:     dstID,
			Relation:  input.Relation,
			Props:     mergeProps(nil, input.Props),
			CreatedAt: time.Now(),
		})
		stats.EdgesCreated++
	}

	s.nodes = stagedNodes
	s.nodeOrder = append(s.nodeOrder, stagedOrder...)
	for _, e := range stagedEdges {
		s.edges[e.ID] = e
		s.edgeOrder = append(s.edgeOrder, e.ID)
	}
	return stats, nil
}

func (s *Storage) findNodeID(tenantID string, category common.Category, label string) string {
	for _, id := range s.nodeOrder {
		node := s.nodes[id]
		if node.TenantID == tenantID && node.Category == category && node.Label == label {
			return id
		}
	}
	return ""
}

func (s *Storage) edgeExists(tenantID string, category common.Category, srcID, dstID, relation string) bool {
	for _, e := range s.edges {
		if e.TenantID == tenantID && e.Category == category &&
			e.SrcID == srcID && e.DstID == dstID && e.Relation == relation {
			return true
		}
	}
	return false
}

func mergeProps(base, extra map[string]any) map[string]any {
	if len(extra) == 0 {
		return base
	}
	merged := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

func (s *Storage) ListGraph(_ context.Context, tenantID string, filter store.GraphFilter) (store.GraphView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var view store.GraphView
	if filter.LimitNodes <= 0 {
		filter.LimitNodes = 500
	}
	if filter.LimitEdges <= 0 {
		filter.LimitEdges = 1000
	}

	passes := func(node common.Node) bool {
		if node.TenantID != tenantID {
			return false
		}
		if filter.Category != nil && node.Category != *filter.Category {
			return false
		}
		if filter.SourceID != "" && node.SourceID != filter.SourceID {
			return false
		}
		return true
	}

	for _, id := range s.nodeOrder {
		node := s.nodes[id]
		if !passes(node) {
			continue
		}
		view.Nodes = append(view.Nodes, node)
		if len(view.Nodes) >= filter.LimitNodes {
			break
		}
	}

	for _, id := range s.edgeOrder {
		edge := s.edges[id]
		if edge.TenantID != tenantID {
			continue
		}
		if filter.Category != nil && edge.Category != *filter.Category {
			continue
		}
		src, srcOK := s.nodes[edge.SrcID]
		dst, dstOK := s.nodes[edge.DstID]
		if !srcOK || !dstOK || !passes(src) || !passes(dst) {
			continue
		}
		view.Edges = append(view.Edges, edge)
		if len(view.Edges) >= filter.LimitEdges {
			break
		}
	}
	return view, nil
}

func (s *Storage) Neighbors(_ context.Context, tenantID string, nodeID string, filter store.NeighborFilter) (store.NeighborView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var view store.NeighborView
	if filter.Limit <= 0 {
		filter.Limit = 100
	}

	center, ok := s.nodes[nodeID]
	if !ok || center.TenantID != tenantID {
		return view, common.ErrNotFound
	}
	view.CenterNodeID = center.ID
	view.Nodes = []common.Node{center}

	seen := map[string]struct{}{center.ID: {}}
	for _, id := range s.edgeOrder {
		edge := s.edges[id]
		if edge.TenantID != tenantID {
			continue
		}
		if edge.SrcID != nodeID && edge.DstID != nodeID {
			continue
		}
		if filter.Category != nil && edge.Category != *filter.Category {
			continue
		}

		otherID := edge.SrcID
		if otherID == nodeID {
			otherID = edge.DstID
		}
		other, ok := s.nodes[otherID]
		if !ok {
			continue
		}
		if filter.SourceID != "" && other.SourceID != filter.SourceID {
			continue
		}

		view.Edges = append(view.Edges, edge)
		if _, dup := seen[otherID]; !dup {
			seen[otherID] = struct{}{}
			view.Nodes = append(view.Nodes, other)
		}
		if len(view.Edges) >= filter.Limit {
			break
		}
	}
	return view, nil
}

func (s *Storage) UpsertProjections(_ context.Context, tenantID string, algorithm string, points []common.Projection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if algorithm == "" {
		return &common.ValidationError{Field: "algorithm", Reason: "algorithm is required"}
	}

	staged := make(map[string]common.Projection, len(points))
	for _, p := range points {
		chunk, ok := s.chunks[p.ChunkID]
		if !ok || chunk.TenantID != tenantID {
			return common.ErrNotFound
		}
		p.Algorithm = algorithm
		staged[p.ChunkID+"\x00"+algorithm] = p
	}

	for key, p := range s.projections {
		if p.Algorithm != algorithm {
			continue
		}
		chunk, ok := s.chunks[p.ChunkID]
		if !ok || chunk.TenantID != tenantID {
			continue
		}
		if _, kept := staged[key]; !kept {
			delete(s.projections, key)
		}
	}
	for key, p := range staged {
		s.projections[key] = p
	}
	return nil
}

func (s *Storage) ListProjections(_ context.Context, tenantID string, algorithm string, limit int) ([]store.ProjectionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 2000
	}

	var out []store.ProjectionView
	for _, id := range s.chunkOrder {
		chunk := s.chunks[id]
		if chunk.TenantID != tenantID {
			continue
		}
		p, ok := s.projections[chunk.ID+"\x00"+algorithm]
		if !ok {
			continue
		}
		source, ok := s.sources[chunk.SourceID]
		if !ok {
			continue
		}
		out = append(out, store.ProjectionView{
			Projection:  p,
			SourceID:    chunk.SourceID,
			SourceTitle: source.Title,
			Preview:     truncate(chunk.Content, store.PreviewLength),
		})
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
