package common

import "time"

// Category is the two-valued scope separating knowledge a trainee may see
// from knowledge reserved for operators. The internal codes are kept for
// wire and storage compatibility; the HTTP layer exposes the descriptive
// aliases.
type Category string

const (
	CategoryClient   Category = "cliente"
	CategoryOperator Category = "operador"
)

const (
	categoryClientAlias   = "client-facing"
	categoryOperatorAlias = "operator-facing"
)

// ParseCategory accepts either the internal code or the public alias.
func ParseCategory(s string) (Category, error) {
	switch s {
	case string(CategoryClient), categoryClientAlias:
		return CategoryClient, nil
	case string(CategoryOperator), categoryOperatorAlias:
		return CategoryOperator, nil
	}
	return "", &ValidationError{Field: "category", Reason: "must be client-facing or operator-facing"}
}

// Alias returns the public name for a category.
func (c Category) Alias() string {
	if c == CategoryOperator {
		return categoryOperatorAlias
	}
	return categoryClientAlias
}

// Valid reports whether c is one of the two known categories.
func (c Category) Valid() bool {
	return c == CategoryClient || c == CategoryOperator
}

// SourceKind distinguishes uploaded documents from free-text entries.
type SourceKind string

const (
	SourceKindDocument SourceKind = "document"
	SourceKindFreeText SourceKind = "free_text"
)

// ParseSourceKind validates a source kind value.
func ParseSourceKind(s string) (SourceKind, error) {
	switch SourceKind(s) {
	case SourceKindDocument, SourceKindFreeText:
		return SourceKind(s), nil
	}
	return "", &ValidationError{Field: "kind", Reason: "must be document or free_text"}
}

// SourceStatus is the lifecycle state of a source.
type SourceStatus string

const (
	SourceStatusActive   SourceStatus = "active"
	SourceStatusArchived SourceStatus = "archived"
)

// Source is a logical document or free-text entry owned by one tenant.
// Deleting a source cascades to its chunks; graph nodes extracted from it
// keep existing with their back-reference cleared.
type Source struct {
	ID        string       `json:"id"`
	TenantID  string       `json:"tenant_id"`
	Category  Category     `json:"category"`
	Kind      SourceKind   `json:"kind"`
	Title     string       `json:"title"`
	FileName  string       `json:"file_name,omitempty"`
	MimeType  string       `json:"mime_type,omitempty"`
	SizeBytes int64        `json:"size_bytes,omitempty"`
	Status    SourceStatus `json:"status"`
	CreatedBy string       `json:"created_by"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Chunk is an ordered fragment of a source's text carrying one embedding.
// Seq is 1-based and assigned by the ingestion pipeline before embedding.
// TenantID and Category always equal the owning source's values; the
// storage layer enforces that at write time.
type Chunk struct {
	ID        string    `json:"id"`
	SourceID  string    `json:"source_id"`
	TenantID  string    `json:"tenant_id"`
	Category  Category  `json:"category"`
	Seq       int       `json:"seq"`
	Content   string    `json:"content"`
	Tokens    int       `json:"tokens"`
	Embedding []float32 `json:"embedding,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Node is an entity of the derived knowledge graph. SourceID is a weak
// back-reference to the source the node was extracted from; it becomes
// empty when that source is deleted.
type Node struct {
	ID        string         `json:"id"`
	TenantID  string         `json:"tenant_id"`
	Category  Category       `json:"category"`
	Label     string         `json:"label"`
	Type      string         `json:"type,omitempty"`
	Props     map[string]any `json:"props,omitempty"`
	SourceID  string         `json:"source_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Edge is a directed, labeled relation between two nodes of the same
// tenant and category. An edge is unique per
// (tenant, category, src, dst, relation).
type Edge struct {
	ID        string         `json:"id"`
	TenantID  string         `json:"tenant_id"`
	Category  Category       `json:"category"`
	SrcID     string         `json:"src_id"`
	DstID     string         `json:"dst_id"`
	Relation  string         `json:"relation"`
	Props     map[string]any `json:"props,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Projection is a 2D point for one chunk under one layout algorithm,
// unique per (chunk, algorithm).
type Projection struct {
	ChunkID   string  `json:"chunk_id"`
	Algorithm string  `json:"algorithm"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}
