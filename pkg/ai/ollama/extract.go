package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/atento/knowledge/pkg/ai"
	"github.com/atento/knowledge/pkg/common"
)

// ProposeGraph asks the extraction model for the entities and relations
// of one chunk. The JSON schema is passed through Ollama's format field.
func (c *Client) ProposeGraph(ctx context.Context, chunkText string) (ai.Proposal, error) {
	proposal, err := c.proposeGraph(ctx, chunkText)
	if err != nil {
		return ai.Proposal{}, &common.UpstreamError{Op: "extraction", Err: err}
	}
	return proposal, nil
}

func (c *Client) proposeGraph(ctx context.Context, chunkText string) (ai.Proposal, error) {
	var proposal ai.Proposal

	types := strings.Join(ai.DefaultEntityTypes, ",")
	systemPrompt := fmt.Sprintf(ai.ExtractPrompt, types, types)

	format, err := json.Marshal(ai.GenerateSchema(&proposal))
	if err != nil {
		return proposal, err
	}

	rCtx, cancel := context.WithTimeout(ctx, time.Minute*time.Duration(c.timeoutMin))
	defer cancel()

	if err := c.reqLock.Acquire(rCtx, 1); err != nil {
		return proposal, err
	}
	defer c.reqLock.Release(1)

	stream := false
	var content strings.Builder
	err = c.API.Chat(rCtx, &api.ChatRequest{
		Model: c.extractModel,
		Messages: []api.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: chunkText},
		},
		Format: format,
		Stream: &stream,
		Options: map[string]any{
			"temperature": 0.1,
		},
	}, func(res api.ChatResponse) error {
		content.WriteString(res.Message.Content)
		return nil
	})
	if err != nil {
		return proposal, err
	}
	if content.Len() == 0 {
		return proposal, fmt.Errorf("empty extraction response")
	}

	if err := ai.UnmarshalFlexible(content.String(), &proposal); err != nil {
		return proposal, err
	}
	return proposal, nil
}
