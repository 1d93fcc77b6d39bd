package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/atento/knowledge/pkg/ai"
	"github.com/atento/knowledge/pkg/common"
	"github.com/atento/knowledge/pkg/store"
	"github.com/atento/knowledge/pkg/store/memory"
)

type fakeProposer struct {
	byContent map[string]ai.Proposal
	failOn    string
	calls     int
}

func (f *fakeProposer) ProposeGraph(_ context.Context, chunkText string) (ai.Proposal, error) {
	f.calls++
	if f.failOn != "" && chunkText == f.failOn {
		return ai.Proposal{}, &common.UpstreamError{Op: "extraction", Err: errors.New("model timeout")}
	}
	return f.byContent[chunkText], nil
}

func seedChunks(t *testing.T, st *memory.Storage, contents ...string) common.Source {
	t.Helper()
	chunks := make([]common.Chunk, len(contents))
	for i, c := range contents {
		chunks[i] = common.Chunk{Seq: i + 1, Content: c, Tokens: 1}
	}
	src, err := st.CreateSourceWithChunks(context.Background(), common.Source{
		TenantID: "t1",
		Category: common.CategoryClient,
		Kind:     common.SourceKindFreeText,
		Title:    "Handbook",
	}, chunks)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return src
}

func TestExtract_PersistsFragmentsWithBackRef(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStorage()
	src := seedChunks(t, st, "about acme")

	proposer := &fakeProposer{byContent: map[string]ai.Proposal{
		"about acme": {
			Nodes: []ai.ProposedNode{
				{Label: "Acme", Type: "COMPANY", Description: "retailer"},
				{Label: "Refunds", Type: "PROCESS"},
			},
			Edges: []ai.ProposedEdge{{Src: "Acme", Dst: "Refunds", Relation: "OWNS"}},
		},
	}}

	stats, err := NewExtractor(st, proposer).Extract(ctx, "t1", common.CategoryClient, Options{})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if stats.ChunksProcessed != 1 || stats.NodesCreated != 2 || stats.EdgesCreated != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	view, _ := st.ListGraph(ctx, "t1", store.GraphFilter{})
	if len(view.Nodes) != 2 || len(view.Edges) != 1 {
		t.Fatalf("graph: %d nodes, %d edges", len(view.Nodes), len(view.Edges))
	}
	for _, n := range view.Nodes {
		if n.SourceID != src.ID {
			t.Fatalf("node missing source back-reference: %+v", n)
		}
		if n.Label == "Acme" && n.Props["description"] != "retailer" {
			t.Fatalf("description not carried into props: %v", n.Props)
		}
	}
}

func TestExtract_DropsEdgesOutsideProposal(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStorage()
	seedChunks(t, st, "text")

	proposer := &fakeProposer{byContent: map[string]ai.Proposal{
		"text": {
			Nodes: []ai.ProposedNode{{Label: "Acme"}},
			Edges: []ai.ProposedEdge{
				{Src: "Acme", Dst: "Hallucinated", Relation: "KNOWS"},
				{Src: "", Dst: "Acme", Relation: "KNOWS"},
			},
		},
	}}

	stats, err := NewExtractor(st, proposer).Extract(ctx, "t1", common.CategoryClient, Options{})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if stats.EdgesCreated != 0 {
		t.Fatalf("hallucinated edges persisted: %+v", stats)
	}
	if stats.NodesCreated != 1 {
		t.Fatalf("node should persist: %+v", stats)
	}
}

func TestExtract_PartialFailureKeepsCommittedFragments(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStorage()
	seedChunks(t, st, "good chunk", "bad chunk")

	proposer := &fakeProposer{
		byContent: map[string]ai.Proposal{
			"good chunk": {Nodes: []ai.ProposedNode{{Label: "Kept"}}},
		},
		failOn: "bad chunk",
	}

	stats, err := NewExtractor(st, proposer).Extract(ctx, "t1", common.CategoryClient, Options{})
	if err == nil {
		t.Fatalf("expected error from failing chunk")
	}
	var uerr *common.UpstreamError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected wrapped upstream error, got %v", err)
	}
	if stats.ChunksProcessed != 1 || stats.NodesCreated != 1 {
		t.Fatalf("committed fragment stats lost: %+v", stats)
	}

	view, _ := st.ListGraph(ctx, "t1", store.GraphFilter{})
	if len(view.Nodes) != 1 || view.Nodes[0].Label != "Kept" {
		t.Fatalf("committed fragment missing: %+v", view.Nodes)
	}
}

func TestExtract_EmptyProposalSkipsStore(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStorage()
	seedChunks(t, st, "nothing here")

	proposer := &fakeProposer{byContent: map[string]ai.Proposal{}}
	stats, err := NewExtractor(st, proposer).Extract(ctx, "t1", common.CategoryClient, Options{})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if stats.ChunksProcessed != 1 || stats.NodesCreated != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestExtract_InvalidCategory(t *testing.T) {
	st := memory.NewStorage()
	_, err := NewExtractor(st, &fakeProposer{}).Extract(context.Background(), "t1", "internal", Options{})
	var verr *common.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExtract_SourceFilter(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStorage()
	srcA := seedChunks(t, st, "alpha text")
	seedChunks(t, st, "beta text")

	proposer := &fakeProposer{byContent: map[string]ai.Proposal{
		"alpha text": {Nodes: []ai.ProposedNode{{Label: "Alpha"}}},
		"beta text":  {Nodes: []ai.ProposedNode{{Label: "Beta"}}},
	}}

	stats, err := NewExtractor(st, proposer).Extract(ctx, "t1", common.CategoryClient, Options{SourceID: srcA.ID})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if stats.ChunksProcessed != 1 {
		t.Fatalf("source filter ignored: %+v", stats)
	}
	if proposer.calls != 1 {
		t.Fatalf("proposer called %d times", proposer.calls)
	}
}
