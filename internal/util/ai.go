package util

import (
	"github.com/atento/knowledge/pkg/ai"
	oai "github.com/atento/knowledge/pkg/ai/ollama"
	gai "github.com/atento/knowledge/pkg/ai/openai"
	"github.com/atento/knowledge/pkg/logger"
)

// AIClient bundles the two model-backed capabilities a binary needs.
type AIClient interface {
	ai.Embedder
	ai.GraphProposer
}

// NewAIClient builds the provider selected by AI_ADAPTER. Anything other
// than "ollama" uses the OpenAI-compatible adapter.
func NewAIClient() AIClient {
	adapter := GetEnv("AI_ADAPTER")

	switch adapter {
	case "ollama":
		client, err := oai.NewClient(oai.NewClientParams{
			EmbeddingModel: GetEnv("AI_EMBED_MODEL"),
			ExtractModel:   GetEnv("AI_CHAT_EXTRACT_MODEL"),

			BaseURL: GetEnv("AI_CHAT_URL"),
			APIKey:  GetEnv("AI_CHAT_KEY"),

			Dimensions:            GetEnvInt("AI_EMBED_DIM", 1536),
			MaxConcurrentRequests: int64(GetEnvNumeric("AI_PARALLEL_REQ", 15)),
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		return client
	default:
		return gai.NewClient(gai.NewClientParams{
			EmbeddingModel: GetEnv("AI_EMBED_MODEL"),
			ExtractModel:   GetEnv("AI_CHAT_EXTRACT_MODEL"),

			EmbeddingURL: GetEnv("AI_EMBED_URL"),
			EmbeddingKey: GetEnv("AI_EMBED_KEY"),
			ChatURL:      GetEnv("AI_CHAT_URL"),
			ChatKey:      GetEnv("AI_CHAT_KEY"),

			Dimensions:            GetEnvInt("AI_EMBED_DIM", 1536),
			MaxConcurrentRequests: int64(GetEnvNumeric("AI_PARALLEL_REQ", 15)),
		})
	}
}
