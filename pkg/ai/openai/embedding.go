package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"

	"github.com/atento/knowledge/pkg/common"
	"github.com/atento/knowledge/pkg/logger"
)

// EmbedTexts embeds inputs in a single request, preserving order. Blank
// inputs are not sent to the provider and come back as zero vectors of the
// configured dimension; returned vectors are clamped or zero-padded to
// that dimension so callers always get a well-formed shape.
func (c *Client) EmbedTexts(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	idxMap, sendable, out := c.normalizeInputs(inputs)
	if len(sendable) == 0 {
		return out, nil
	}

	vectors, err := c.embedStrings(ctx, sendable)
	if err != nil {
		return nil, &common.UpstreamError{Op: "embedding", Err: err}
	}
	if len(vectors) != len(sendable) {
		return nil, &common.UpstreamError{
			Op:  "embedding",
			Err: fmt.Errorf("result size mismatch: got %d want %d", len(vectors), len(sendable)),
		}
	}
	for i := range vectors {
		out[idxMap[i]] = vectors[i]
	}
	return out, nil
}

// normalizeInputs splits inputs into the entries worth sending and a
// pre-filled output slice with zero vectors for the rest. Oversized
// entries are cut at the embedding model's token limit first.
func (c *Client) normalizeInputs(inputs []string) (idxMap []int, sendable []string, out [][]float32) {
	idxMap = make([]int, 0, len(inputs))
	sendable = make([]string, 0, len(inputs))
	out = make([][]float32, len(inputs))
	for i, in := range inputs {
		if strings.TrimSpace(in) == "" {
			out[i] = make([]float32, c.dimensions)
			continue
		}
		idxMap = append(idxMap, i)
		sendable = append(sendable, c.truncateToBudget(in))
	}
	return idxMap, sendable, out
}

func (c *Client) truncateToBudget(in string) string {
	if c.encoder == nil {
		return in
	}
	tokens := c.encoder.Encode(in, nil, nil)
	if len(tokens) <= c.maxInputTokens {
		return in
	}
	logger.Warn("[AI][Embed] Input exceeds embedding context, truncating",
		"tokens", len(tokens), "limit", c.maxInputTokens)
	return c.encoder.Decode(tokens[:c.maxInputTokens])
}

func (c *Client) embedStrings(ctx context.Context, inputs []string) ([][]float32, error) {
	rCtx, cancel := context.WithTimeout(ctx, time.Minute*time.Duration(c.timeoutMin))
	defer cancel()

	if err := c.reqLock.Acquire(rCtx, 1); err != nil {
		return nil, err
	}
	defer c.reqLock.Release(1)

	response, err := c.EmbeddingClient.Embeddings.New(rCtx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: inputs},
		Model: c.embeddingModel,
	})
	if err != nil {
		return nil, err
	}
	if len(response.Data) != len(inputs) {
		return nil, fmt.Errorf("response size mismatch: got %d want %d", len(response.Data), len(inputs))
	}

	out := make([][]float32, len(inputs))
	for _, embedding := range response.Data {
		dataIdx := int(embedding.Index)
		if dataIdx < 0 || dataIdx >= len(inputs) {
			return nil, fmt.Errorf("embedding index out of range: %d", embedding.Index)
		}
		out[dataIdx] = c.clampVector(embedding.Embedding)
	}
	for i := range out {
		if out[i] == nil {
			out[i] = make([]float32, c.dimensions)
		}
	}
	return out, nil
}

func (c *Client) clampVector(raw []float64) []float32 {
	vec := make([]float32, 0, c.dimensions)
	for _, v := range raw {
		if len(vec) >= c.dimensions {
			break
		}
		vec = append(vec, float32(v))
	}
	if len(vec) < c.dimensions {
		padded := make([]float32, c.dimensions)
		copy(padded, vec)
		vec = padded
	}
	return vec
}
