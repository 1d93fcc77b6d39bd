package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/atento/knowledge/internal/util"
	"github.com/atento/knowledge/pkg/common"
	"github.com/atento/knowledge/pkg/store"
)

// SearchHandler embeds the query text and returns the nearest chunks of
// the caller's tenant, optionally narrowed to one category.
func SearchHandler(c echo.Context) error {
	type searchData struct {
		Text     string `json:"text" validate:"required"`
		Category string `json:"category"`
		TopK     int    `json:"top_k"`
	}

	type searchResult struct {
		ChunkID     string  `json:"chunk_id"`
		SourceID    string  `json:"source_id"`
		SourceTitle string  `json:"source_title"`
		Category    string  `json:"category"`
		Seq         int     `json:"seq"`
		Content     string  `json:"content"`
		Score       float64 `json:"score"`
	}

	type searchResponse struct {
		Message string         `json:"message"`
		Results []searchResult `json:"results"`
	}

	data := new(searchData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, searchResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, searchResponse{Message: "Invalid request params"})
	}

	app, user, ok := appContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	topK := data.TopK
	if topK <= 0 {
		topK = util.GetEnvInt("SEARCH_TOP_K", store.DefaultTopK)
	}
	opts := store.SearchOptions{TopK: topK}
	if data.Category != "" {
		category, err := common.ParseCategory(data.Category)
		if err != nil {
			return domainError(c, err)
		}
		opts.Category = &category
	}

	ctx := c.Request().Context()
	vectors, err := app.Embedder.EmbedTexts(ctx, []string{data.Text})
	if err != nil {
		return domainError(c, err)
	}
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		return c.JSON(http.StatusBadGateway, searchResponse{Message: "Upstream provider failed"})
	}

	results, err := app.Store.SearchChunks(ctx, user.TenantID, vectors[0], opts)
	if err != nil {
		return domainError(c, err)
	}

	out := make([]searchResult, len(results))
	for i, r := range results {
		out[i] = searchResult{
			ChunkID:     r.Chunk.ID,
			SourceID:    r.Chunk.SourceID,
			SourceTitle: r.SourceTitle,
			Category:    r.Chunk.Category.Alias(),
			Seq:         r.Chunk.Seq,
			Content:     r.Chunk.Content,
			Score:       r.Score,
		}
	}

	return c.JSON(http.StatusOK, searchResponse{Message: "OK", Results: out})
}
