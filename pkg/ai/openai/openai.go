package openai

import (
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/pkoukk/tiktoken-go"
	"golang.org/x/sync/semaphore"
)

const (
	defaultDimensions     = 1536
	defaultMaxInputTokens = 8192
	embeddingEncoder      = "cl100k_base"
)

// Client talks to an OpenAI-compatible API for embeddings and graph
// extraction. Separate underlying clients allow the two concerns to be
// served by different endpoints.
type Client struct {
	embeddingModel string
	extractModel   string

	dimensions     int
	maxInputTokens int
	timeoutMin     int

	encoder *tiktoken.Tiktoken
	reqLock *semaphore.Weighted

	EmbeddingClient *openai.Client
	ChatClient      *openai.Client
}

// NewClientParams configures a Client. Dimensions defaults to 1536,
// MaxConcurrentRequests to 8 and TimeoutMin to 5.
type NewClientParams struct {
	EmbeddingModel string
	ExtractModel   string

	EmbeddingURL string
	EmbeddingKey string
	ChatURL      string
	ChatKey      string

	Dimensions            int
	MaxInputTokens        int
	MaxConcurrentRequests int64
	TimeoutMin            int
}

// NewClient creates a Client from params.
func NewClient(params NewClientParams) *Client {
	if params.Dimensions <= 0 {
		params.Dimensions = defaultDimensions
	}
	if params.MaxInputTokens <= 0 {
		params.MaxInputTokens = defaultMaxInputTokens
	}
	if params.MaxConcurrentRequests <= 0 {
		params.MaxConcurrentRequests = 8
	}
	if params.TimeoutMin <= 0 {
		params.TimeoutMin = 5
	}

	// The encoder is only a request-size guard; chunk token accounting
	// elsewhere stays whitespace-based on purpose.
	encoder, err := tiktoken.GetEncoding(embeddingEncoder)
	if err != nil {
		encoder = nil
	}

	return &Client{
		embeddingModel: params.EmbeddingModel,
		extractModel:   params.ExtractModel,
		dimensions:     params.Dimensions,
		maxInputTokens: params.MaxInputTokens,
		timeoutMin:     params.TimeoutMin,
		encoder:        encoder,
		reqLock:        semaphore.NewWeighted(params.MaxConcurrentRequests),

		EmbeddingClient: newAPIClient(params.EmbeddingURL, params.EmbeddingKey),
		ChatClient:      newAPIClient(params.ChatURL, params.ChatKey),
	}
}

// Dimensions returns the configured embedding dimension.
func (c *Client) Dimensions() int {
	return c.dimensions
}

func newAPIClient(baseURL string, apiKey string) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(options...)
	return &client
}
