package routes

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/atento/knowledge/internal/queue"
	"github.com/atento/knowledge/pkg/audit"
	"github.com/atento/knowledge/pkg/common"
	"github.com/atento/knowledge/pkg/graph"
)

// ExtractGraphHandler runs graph extraction over the tenant's chunks.
// With async=true the job is queued for the worker and the handler
// returns immediately.
func ExtractGraphHandler(c echo.Context) error {
	type extractData struct {
		Category string `json:"category" validate:"required"`
		SourceID string `json:"source_id"`
		Async    bool   `json:"async"`
	}

	type extractResponse struct {
		Message string       `json:"message"`
		Stats   *graph.Stats `json:"stats,omitempty"`
	}

	data := new(extractData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, extractResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, extractResponse{Message: "Invalid request params"})
	}

	app, user, ok := appContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	category, err := common.ParseCategory(data.Category)
	if err != nil {
		return domainError(c, err)
	}

	ctx := c.Request().Context()
	app.Audit.Record(ctx, audit.Entry{
		TenantID: user.TenantID,
		Actor:    user.ID,
		Action:   "graph.extract",
		Target:   data.SourceID,
		Detail:   map[string]any{"category": category.Alias(), "async": data.Async},
	})

	if data.Async {
		msg, err := json.Marshal(queue.ExtractJobMsg{
			TenantID:    user.TenantID,
			Category:    string(category),
			SourceID:    data.SourceID,
			RequestedBy: user.ID,
		})
		if err != nil {
			return c.JSON(http.StatusInternalServerError, extractResponse{Message: "Internal server error"})
		}
		if err := queue.PublishFIFO(app.Queue, "extract_queue", msg); err != nil {
			return c.JSON(http.StatusInternalServerError, extractResponse{Message: "Failed to queue extraction"})
		}
		return c.JSON(http.StatusAccepted, extractResponse{Message: "Extraction queued"})
	}

	stats, err := graph.NewExtractor(app.Store, app.Proposer).Extract(ctx, user.TenantID, category, graph.Options{
		SourceID: data.SourceID,
	})
	if err != nil {
		return domainError(c, err)
	}

	return c.JSON(http.StatusOK, extractResponse{
		Message: "Extraction finished",
		Stats:   &stats,
	})
}
