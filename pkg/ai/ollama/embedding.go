package ollama

import (
	"context"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"golang.org/x/sync/errgroup"

	"github.com/atento/knowledge/pkg/common"
)

// EmbedTexts embeds each input with its own request, fanned out under the
// client's concurrency cap. Blank inputs become zero vectors; every
// returned vector is clamped or padded to the configured dimension.
func (c *Client) EmbedTexts(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(inputs))
	eg, ectx := errgroup.WithContext(ctx)
	for i := range inputs {
		idx := i
		in := inputs[i]
		eg.Go(func() error {
			vec, err := c.embedOne(ectx, in)
			if err != nil {
				return err
			}
			out[idx] = vec
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, &common.UpstreamError{Op: "embedding", Err: err}
	}
	return out, nil
}

func (c *Client) embedOne(ctx context.Context, input string) ([]float32, error) {
	if strings.TrimSpace(input) == "" {
		return make([]float32, c.dimensions), nil
	}

	rCtx, cancel := context.WithTimeout(ctx, time.Minute*time.Duration(c.timeoutMin))
	defer cancel()

	if err := c.reqLock.Acquire(rCtx, 1); err != nil {
		return nil, err
	}
	defer c.reqLock.Release(1)

	res, err := c.API.Embed(rCtx, &api.EmbedRequest{
		Model: c.embeddingModel,
		Input: input,
	})
	if err != nil {
		return nil, err
	}

	out := make([]float32, 0, c.dimensions)
	for _, v := range res.Embeddings {
		for _, val := range v {
			if len(out) >= c.dimensions {
				break
			}
			out = append(out, float32(val))
		}
	}
	if len(out) < c.dimensions {
		padded := make([]float32, c.dimensions)
		copy(padded, out)
		out = padded
	}
	return out, nil
}
