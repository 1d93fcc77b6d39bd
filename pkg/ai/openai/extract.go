package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"

	"github.com/atento/knowledge/pkg/ai"
	"github.com/atento/knowledge/pkg/common"
)

// ProposeGraph asks the extraction model for the entities and relations
// of one chunk, using a JSON schema to enforce the response structure.
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

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "propose_graph",
		Description: openai.String("Extract entities and relations from a passage."),
		Schema:      ai.GenerateSchema(&proposal),
		Strict:      openai.Bool(true),
	}

	rCtx, cancel := context.WithTimeout(ctx, time.Minute*time.Duration(c.timeoutMin))
	defer cancel()

	if err := c.reqLock.Acquire(rCtx, 1); err != nil {
		return proposal, err
	}
	defer c.reqLock.Release(1)

	response, err := c.ChatClient.Chat.Completions.New(rCtx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.extractModel),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(chunkText),
		},
		Temperature: openai.Float(0.1),
	})
	if err != nil {
		return proposal, err
	}
	if len(response.Choices) == 0 {
		return proposal, fmt.Errorf("no choices in extraction response")
	}
	message := response.Choices[0].Message.Content
	if message == "" {
		return proposal, fmt.Errorf("empty extraction response (finish_reason: %s)", response.Choices[0].FinishReason)
	}

	if err := ai.UnmarshalFlexible(message, &proposal); err != nil {
		return proposal, err
	}
	return proposal, nil
}
