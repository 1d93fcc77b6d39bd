package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/atento/knowledge/internal/storage"
	"github.com/atento/knowledge/pkg/common"
	"github.com/atento/knowledge/pkg/ingest"
	"github.com/atento/knowledge/pkg/logger"
)

// CreateSourceHandler ingests a new text source: segment, embed, persist.
func CreateSourceHandler(c echo.Context) error {
	type createSourceData struct {
		Category string `json:"category" validate:"required"`
		Kind     string `json:"kind" validate:"required"`
		Title    string `json:"title" validate:"required"`
		Text     string `json:"text"`
		FileName string `json:"file_name"`
		MimeType string `json:"mime_type"`
	}

	type createSourceResponse struct {
		Message string         `json:"message"`
		Source  *common.Source `json:"source,omitempty"`
		Chunks  int            `json:"chunks"`
	}

	data := new(createSourceData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createSourceResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createSourceResponse{Message: "Invalid request params"})
	}

	app, user, ok := appContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	category, err := common.ParseCategory(data.Category)
	if err != nil {
		return domainError(c, err)
	}
	kind, err := common.ParseSourceKind(data.Kind)
	if err != nil {
		return domainError(c, err)
	}

	ctx := c.Request().Context()
	res, err := app.Pipeline.Ingest(ctx, ingest.Params{
		TenantID:  user.TenantID,
		Category:  category,
		Kind:      kind,
		Title:     data.Title,
		Text:      data.Text,
		FileName:  data.FileName,
		MimeType:  data.MimeType,
		SizeBytes: int64(len(data.Text)),
		CreatedBy: user.ID,
	})
	if err != nil {
		return domainError(c, err)
	}

	if app.S3 != nil {
		if err := storage.PutSourceText(ctx, app.S3, user.TenantID, res.Source.ID, data.Text); err != nil {
			// The chunks are already durable; the raw copy is best-effort.
			logger.Warn("Failed to store raw source text", "source", res.Source.ID, "err", err)
		}
	}

	return c.JSON(http.StatusCreated, createSourceResponse{
		Message: "Source created successfully",
		Source:  &res.Source,
		Chunks:  res.Chunks,
	})
}
