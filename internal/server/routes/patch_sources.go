package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/atento/knowledge/pkg/audit"
	"github.com/atento/knowledge/pkg/common"
)

// ArchiveSourceHandler retires a source from new training sessions while
// keeping its chunks searchable for review.
func ArchiveSourceHandler(c echo.Context) error {
	type archiveSourceResponse struct {
		Message string         `json:"message"`
		Source  *common.Source `json:"source,omitempty"`
	}

	sourceID := c.Param("id")
	if sourceID == "" {
		return c.JSON(http.StatusBadRequest, archiveSourceResponse{Message: "Invalid request params"})
	}

	app, user, ok := appContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	if err := app.Store.ArchiveSource(ctx, user.TenantID, sourceID); err != nil {
		return domainError(c, err)
	}

	source, err := app.Store.GetSource(ctx, user.TenantID, sourceID)
	if err != nil {
		return domainError(c, err)
	}

	app.Audit.Record(ctx, audit.Entry{
		TenantID: user.TenantID,
		Actor:    user.ID,
		Action:   "source.archive",
		Target:   sourceID,
	})

	return c.JSON(http.StatusOK, archiveSourceResponse{
		Message: "Source archived successfully",
		Source:  &source,
	})
}
