// Package graph derives the knowledge graph from stored chunks. Each
// chunk is sent to the extraction model independently and its proposal is
// committed as one fragment, so a failing chunk never rolls back the
// fragments that already landed.
package graph

import (
	"context"
	"fmt"

	"github.com/atento/knowledge/pkg/ai"
	"github.com/atento/knowledge/pkg/common"
	"github.com/atento/knowledge/pkg/logger"
	"github.com/atento/knowledge/pkg/store"
)

// Extractor runs graph extraction over a tenant's chunks.
type Extractor struct {
	store    store.KnowledgeStorage
	proposer ai.GraphProposer
}

func NewExtractor(st store.KnowledgeStorage, proposer ai.GraphProposer) *Extractor {
	return &Extractor{store: st, proposer: proposer}
}

// Options narrows an extraction run. SourceID empty processes the whole
// category; LimitChunks caps the run for interactive use.
type Options struct {
	SourceID    string
	LimitChunks int
}

// Stats summarizes one extraction run. On partial failure the counts
// reflect the fragments that committed before the error.
type Stats struct {
	ChunksProcessed int
	NodesCreated    int
	EdgesCreated    int
}

// Extract proposes and persists graph fragments for every matching chunk.
// Fragments commit per chunk; the first failing chunk stops the run and
// the accumulated stats are returned alongside the error.
func (e *Extractor) Extract(ctx context.Context, tenantID string, category common.Category, opts Options) (Stats, error) {
	var stats Stats
	if !category.Valid() {
		return stats, &common.ValidationError{Field: "category", Reason: "unknown category"}
	}

	chunks, err := e.store.ListChunks(ctx, tenantID, &category, opts.SourceID, opts.LimitChunks)
	if err != nil {
		return stats, err
	}

	for _, chunk := range chunks {
		proposal, err := e.proposer.ProposeGraph(ctx, chunk.Content)
		if err != nil {
			return stats, fmt.Errorf("chunk %s: %w", chunk.ID, err)
		}

		nodes, edges := normalizeProposal(proposal)
		if len(nodes) == 0 {
			stats.ChunksProcessed++
			continue
		}

		fragment, err := e.store.SaveGraphFragment(ctx, tenantID, category, chunk.SourceID, nodes, edges)
		if err != nil {
			return stats, fmt.Errorf("chunk %s: %w", chunk.ID, err)
		}

		stats.ChunksProcessed++
		stats.NodesCreated += fragment.NodesCreated
		stats.EdgesCreated += fragment.EdgesCreated
	}

	logger.Info("[Graph][Extract] Run finished",
		"tenant", tenantID, "category", category,
		"chunks", stats.ChunksProcessed, "nodes", stats.NodesCreated, "edges", stats.EdgesCreated)
	return stats, nil
}

// normalizeProposal drops unusable model output: blank labels, duplicate
// nodes and edges whose endpoints are not part of the proposal itself.
func normalizeProposal(proposal ai.Proposal) ([]store.NodeInput, []store.EdgeInput) {
	labels := make(map[string]struct{}, len(proposal.Nodes))
	nodes := make([]store.NodeInput, 0, len(proposal.Nodes))
	for _, n := range proposal.Nodes {
		if n.Label == "" {
			continue
		}
		if _, dup := labels[n.Label]; dup {
			continue
		}
		labels[n.Label] = struct{}{}

		var props map[string]any
		if n.Description != "" {
			props = map[string]any{"description": n.Description}
		}
		nodes = append(nodes, store.NodeInput{Label: n.Label, Type: n.Type, Props: props})
	}

	edges := make([]store.EdgeInput, 0, len(proposal.Edges))
	for _, e := range proposal.Edges {
		if e.Src == "" || e.Dst == "" || e.Relation == "" {
			continue
		}
		if _, ok := labels[e.Src]; !ok {
			continue
		}
		if _, ok := labels[e.Dst]; !ok {
			continue
		}
		edges = append(edges, store.EdgeInput{Src: e.Src, Dst: e.Dst, Relation: e.Relation})
	}
	return nodes, edges
}
