package ai

import "context"

// Embedder converts texts into fixed-dimension vectors. Implementations
// wrap a remote provider: the call may block on I/O and may fail as a
// whole, but a successful return always has the same length and order as
// the input, with a zero vector substituted for any blank or missing
// entry so storage never receives a malformed shape.
type Embedder interface {
	EmbedTexts(ctx context.Context, inputs []string) ([][]float32, error)
	Dimensions() int
}

// ProposedNode is one graph entity suggested by the extraction model.
type ProposedNode struct {
	Label       string `json:"label" jsonschema_description:"Name of the entity, all letters capitalized"`
	Type        string `json:"type" jsonschema_description:"One of the provided entity types"`
	Description string `json:"description" jsonschema_description:"Short description of the entity as supported by the text"`
}

// ProposedEdge is one directed relation between two proposed entities,
// referencing them by label.
type ProposedEdge struct {
	Src      string `json:"src" jsonschema_description:"Label of the source entity, as identified above"`
	Dst      string `json:"dst" jsonschema_description:"Label of the target entity, as identified above"`
	Relation string `json:"relation" jsonschema_description:"Short verb phrase naming the relation"`
}

// Proposal is the extraction model's reading of one chunk of text.
type Proposal struct {
	Nodes []ProposedNode `json:"nodes" jsonschema_description:"Entities identified in the text"`
	Edges []ProposedEdge `json:"edges" jsonschema_description:"Relations identified in the text"`
}

// GraphProposer derives a graph proposal from one chunk of text. The
// LLM-backed implementations live in the openai and ollama subpackages;
// tests use deterministic stubs.
type GraphProposer interface {
	ProposeGraph(ctx context.Context, chunkText string) (Proposal, error)
}

// GenerateOptions holds configuration for extraction requests.
type GenerateOptions struct {
	Model       string
	Temperature float64
}

// GenerateOption is a functional option for extraction requests.
type GenerateOption func(*GenerateOptions)

// WithModel overrides the model used for a single request.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}
