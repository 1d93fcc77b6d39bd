// Package ingest turns raw source text into persisted, embedded chunks.
// It owns the order of operations: validate, segment, embed, then write
// everything in one storage transaction. Nothing is persisted when the
// embedding provider fails.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/atento/knowledge/pkg/ai"
	"github.com/atento/knowledge/pkg/audit"
	"github.com/atento/knowledge/pkg/common"
	"github.com/atento/knowledge/pkg/logger"
	"github.com/atento/knowledge/pkg/segment"
	"github.com/atento/knowledge/pkg/store"
)

// TextExtractor pulls plain text out of an uploaded document.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Anonymizer redacts personal data from text before it is segmented and
// embedded. Implementations must be deterministic per input.
type Anonymizer interface {
	Anonymize(ctx context.Context, text string) (string, error)
}

// Pipeline wires segmentation, embedding and storage together.
type Pipeline struct {
	store    store.KnowledgeStorage
	embedder ai.Embedder
	audit    audit.Recorder

	extractor  TextExtractor
	anonymizer Anonymizer
	segOpts    segment.Options
}

// NewPipelineParams contains the pipeline's collaborators. Extractor and
// Anonymizer are optional; Audit defaults to a no-op recorder.
type NewPipelineParams struct {
	Store    store.KnowledgeStorage
	Embedder ai.Embedder
	Audit    audit.Recorder

	Extractor  TextExtractor
	Anonymizer Anonymizer
	Segment    segment.Options
}

func NewPipeline(params NewPipelineParams) *Pipeline {
	if params.Audit == nil {
		params.Audit = audit.Nop{}
	}
	return &Pipeline{
		store:      params.Store,
		embedder:   params.Embedder,
		audit:      params.Audit,
		extractor:  params.Extractor,
		anonymizer: params.Anonymizer,
		segOpts:    params.Segment,
	}
}

// Params describes one source to ingest.
type Params struct {
	TenantID  string
	Category  common.Category
	Kind      common.SourceKind
	Title     string
	Text      string
	FileName  string
	MimeType  string
	SizeBytes int64
	CreatedBy string
}

// Result reports what one ingestion produced.
type Result struct {
	Source common.Source
	Chunks int
}

// Ingest runs the full pipeline for one text source. A source with no
// usable text is persisted with zero chunks so it can be appended to
// later.
func (p *Pipeline) Ingest(ctx context.Context, params Params) (Result, error) {
	if err := validate(params); err != nil {
		return Result{}, err
	}

	text := params.Text
	if p.anonymizer != nil {
		redacted, err := p.anonymizer.Anonymize(ctx, text)
		if err != nil {
			return Result{}, &common.UpstreamError{Op: "anonymization", Err: err}
		}
		text = redacted
	}

	pieces := segment.Chunk(text, p.segOpts)

	chunks, err := p.embedPieces(ctx, pieces)
	if err != nil {
		return Result{}, err
	}

	source, err := p.store.CreateSourceWithChunks(ctx, common.Source{
		TenantID:  params.TenantID,
		Category:  params.Category,
		Kind:      params.Kind,
		Title:     params.Title,
		FileName:  params.FileName,
		MimeType:  params.MimeType,
		SizeBytes: params.SizeBytes,
		CreatedBy: params.CreatedBy,
	}, chunks)
	if err != nil {
		return Result{}, err
	}

	logger.Info("[Ingest] Source ingested", "tenant", params.TenantID, "source", source.ID, "chunks", len(chunks))
	p.audit.Record(ctx, audit.Entry{
		TenantID: params.TenantID,
		Actor:    params.CreatedBy,
		Action:   "source.create",
		Target:   source.ID,
		Detail:   map[string]any{"title": params.Title, "chunks": len(chunks)},
	})
	return Result{Source: source, Chunks: len(chunks)}, nil
}

// IngestDocument extracts text from an uploaded file and ingests it.
func (p *Pipeline) IngestDocument(ctx context.Context, params Params, data []byte) (Result, error) {
	if p.extractor == nil {
		return Result{}, &common.ValidationError{Field: "kind", Reason: "document ingestion is not configured"}
	}
	text, err := p.extractor.ExtractText(ctx, data, params.MimeType)
	if err != nil {
		return Result{}, &common.UpstreamError{Op: "text extraction", Err: err}
	}
	params.Kind = common.SourceKindDocument
	params.Text = text
	params.SizeBytes = int64(len(data))
	return p.Ingest(ctx, params)
}

// Append segments and embeds additional text for an existing source,
// continuing its chunk sequence.
func (p *Pipeline) Append(ctx context.Context, tenantID string, sourceID string, text string) (int, error) {
	existing, err := p.store.ListChunks(ctx, tenantID, nil, sourceID, 0)
	if err != nil {
		return 0, err
	}
	nextSeq := 1
	for _, c := range existing {
		if c.Seq >= nextSeq {
			nextSeq = c.Seq + 1
		}
	}

	pieces := segment.Chunk(text, p.segOpts)
	if len(pieces) == 0 {
		return 0, nil
	}

	chunks, err := p.embedPieces(ctx, pieces)
	if err != nil {
		return 0, err
	}
	for i := range chunks {
		chunks[i].Seq = nextSeq + i
	}

	if err := p.store.AppendChunks(ctx, tenantID, sourceID, chunks); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// embedPieces embeds every piece and assembles the chunk rows, seq 1..N.
// A nil vector from the provider is replaced with a zero vector of the
// configured dimension so the batch stays rectangular.
func (p *Pipeline) embedPieces(ctx context.Context, pieces []segment.Piece) ([]common.Chunk, error) {
	if len(pieces) == 0 {
		return nil, nil
	}

	texts := make([]string, len(pieces))
	for i, piece := range pieces {
		texts[i] = piece.Content
	}

	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(pieces) {
		return nil, fmt.Errorf("embedding count mismatch: got %d vectors for %d chunks", len(vectors), len(pieces))
	}

	chunks := make([]common.Chunk, len(pieces))
	for i, piece := range pieces {
		vec := vectors[i]
		if vec == nil {
			vec = make([]float32, p.embedder.Dimensions())
		}
		chunks[i] = common.Chunk{
			Seq:     i + 1,
			Content: piece.Content,
			Tokens:  piece.Tokens,
			// Scope stays empty here; the store inherits it from the source.
			Embedding: vec,
		}
	}
	return chunks, nil
}

func validate(params Params) error {
	if strings.TrimSpace(params.TenantID) == "" {
		return &common.ValidationError{Field: "tenant_id", Reason: "tenant is required"}
	}
	if !params.Category.Valid() {
		return &common.ValidationError{Field: "category", Reason: "must be client-facing or operator-facing"}
	}
	if params.Kind != common.SourceKindDocument && params.Kind != common.SourceKindFreeText {
		return &common.ValidationError{Field: "kind", Reason: "must be document or free_text"}
	}
	if strings.TrimSpace(params.Title) == "" {
		return &common.ValidationError{Field: "title", Reason: "title is required"}
	}
	return nil
}
