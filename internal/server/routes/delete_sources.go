package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/atento/knowledge/internal/storage"
	"github.com/atento/knowledge/pkg/audit"
	"github.com/atento/knowledge/pkg/logger"
)

// DeleteSourceHandler removes a source with its chunks and projections.
// Extracted graph nodes survive with their back-reference cleared.
func DeleteSourceHandler(c echo.Context) error {
	type deleteSourceResponse struct {
		Message string `json:"message"`
	}

	sourceID := c.Param("id")
	if sourceID == "" {
		return c.JSON(http.StatusBadRequest, deleteSourceResponse{Message: "Invalid request params"})
	}

	app, user, ok := appContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	if err := app.Store.DeleteSource(ctx, user.TenantID, sourceID); err != nil {
		return domainError(c, err)
	}

	if app.S3 != nil {
		if err := storage.DeleteSourceText(ctx, app.S3, user.TenantID, sourceID); err != nil {
			logger.Warn("Failed to delete raw source text", "source", sourceID, "err", err)
		}
	}

	app.Audit.Record(ctx, audit.Entry{
		TenantID: user.TenantID,
		Actor:    user.ID,
		Action:   "source.delete",
		Target:   sourceID,
	})

	return c.JSON(http.StatusOK, deleteSourceResponse{Message: "Source deleted successfully"})
}
