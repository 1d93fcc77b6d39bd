package store

import (
	"github.com/atento/knowledge/pkg/common"
)

// ChunkRange invokes fn over [start, end) windows of at most chunkSize.
func ChunkRange(total, chunkSize int, fn func(start, end int) error) error {
	if total <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = total
	}
	for start := 0; start < total; start += chunkSize {
		end := min(start+chunkSize, total)
		if err := fn(start, end); err != nil {
			return err
		}
	}
	return nil
}

// DedupeStrings drops empty and repeated values, preserving order.
func DedupeStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// ResolveChunkScope applies the write-time scope rule for a chunk against
// its owning source: unset fields inherit, set-but-mismatched fields are
// a consistency error. Both storage implementations run this inside the
// same transaction as the chunk write.
func ResolveChunkScope(source common.Source, chunk *common.Chunk) error {
	if chunk.TenantID == "" {
		chunk.TenantID = source.TenantID
	} else if chunk.TenantID != source.TenantID {
		return &common.ConsistencyError{Field: "chunk tenant", Have: chunk.TenantID, Want: source.TenantID}
	}

	if chunk.Category == "" {
		chunk.Category = source.Category
	} else if chunk.Category != source.Category {
		return &common.ConsistencyError{Field: "chunk category", Have: string(chunk.Category), Want: string(source.Category)}
	}

	return nil
}

// NormalizeSearch applies TopK defaulting and validates the query vector
// against the store's dimension (0 = store is empty and any dimension is
// accepted).
func NormalizeSearch(query []float32, dims int, opts SearchOptions) (SearchOptions, error) {
	if len(query) == 0 {
		return opts, &common.ValidationError{Field: "query", Reason: "embedding vector is required"}
	}
	if dims > 0 && len(query) != dims {
		return opts, &common.ValidationError{Field: "query", Reason: "embedding dimension mismatch"}
	}
	if opts.Category != nil && !opts.Category.Valid() {
		return opts, &common.ValidationError{Field: "category", Reason: "unknown category"}
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	return opts, nil
}
