package ollama

import (
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
	"golang.org/x/sync/semaphore"
)

const defaultDimensions = 1536

// Client implements the embedder and graph proposer interfaces against a
// locally-hosted Ollama server.
type Client struct {
	embeddingModel string
	extractModel   string

	dimensions int
	timeoutMin int

	reqLock *semaphore.Weighted

	API *api.Client
}

// NewClientParams contains configuration for creating a Client.
type NewClientParams struct {
	EmbeddingModel string
	ExtractModel   string

	BaseURL string
	APIKey  string

	Dimensions            int
	MaxConcurrentRequests int64
	TimeoutMin            int
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewClient creates an Ollama-backed client for the given server URL.
func NewClient(params NewClientParams) (*Client, error) {
	var (
		u   *url.URL
		err error
	)
	if params.BaseURL != "" {
		u, err = url.Parse(params.BaseURL)
		if err != nil {
			return nil, err
		}
	}

	if params.Dimensions <= 0 {
		params.Dimensions = defaultDimensions
	}
	if params.MaxConcurrentRequests <= 0 {
		params.MaxConcurrentRequests = 4
	}
	if params.TimeoutMin <= 0 {
		params.TimeoutMin = 5
	}

	httpClient := &http.Client{
		Transport: &headerTransport{
			headers: map[string]string{
				"Authorization": "Bearer " + params.APIKey,
			},
			rt: http.DefaultTransport,
		},
	}

	return &Client{
		embeddingModel: params.EmbeddingModel,
		extractModel:   params.ExtractModel,
		dimensions:     params.Dimensions,
		timeoutMin:     params.TimeoutMin,
		reqLock:        semaphore.NewWeighted(params.MaxConcurrentRequests),
		API:            api.NewClient(u, httpClient),
	}, nil
}

// Dimensions returns the configured embedding dimension.
func (c *Client) Dimensions() int {
	return c.dimensions
}
