package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/atento/knowledge/pkg/common"
)

func GetSourceHandler(c echo.Context) error {
	type getSourceResponse struct {
		Message string         `json:"message"`
		Source  *common.Source `json:"source,omitempty"`
		Chunks  []common.Chunk `json:"chunks,omitempty"`
	}

	sourceID := c.Param("id")
	if sourceID == "" {
		return c.JSON(http.StatusBadRequest, getSourceResponse{Message: "Invalid request params"})
	}

	app, user, ok := appContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	source, err := app.Store.GetSource(ctx, user.TenantID, sourceID)
	if err != nil {
		return domainError(c, err)
	}

	chunks, err := app.Store.ListChunks(ctx, user.TenantID, nil, sourceID, 0)
	if err != nil {
		return domainError(c, err)
	}
	// Embeddings stay server-side; the payload is display metadata only.
	for i := range chunks {
		chunks[i].Embedding = nil
	}

	return c.JSON(http.StatusOK, getSourceResponse{
		Message: "OK",
		Source:  &source,
		Chunks:  chunks,
	})
}
