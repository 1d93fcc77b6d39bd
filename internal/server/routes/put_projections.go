package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/atento/knowledge/pkg/common"
)

// UpsertProjectionsHandler stores a computed 2D layout for the tenant's
// chunks under one algorithm name, replacing the previous layout.
func UpsertProjectionsHandler(c echo.Context) error {
	type projectionPoint struct {
		ChunkID string  `json:"chunk_id" validate:"required"`
		X       float64 `json:"x"`
		Y       float64 `json:"y"`
	}

	type upsertProjectionsData struct {
		Points []projectionPoint `json:"points" validate:"required,dive"`
	}

	type upsertProjectionsResponse struct {
		Message string `json:"message"`
		Points  int    `json:"points"`
	}

	algorithm := c.Param("algorithm")
	if algorithm == "" {
		return c.JSON(http.StatusBadRequest, upsertProjectionsResponse{Message: "Invalid request params"})
	}

	data := new(upsertProjectionsData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, upsertProjectionsResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, upsertProjectionsResponse{Message: "Invalid request params"})
	}

	app, user, ok := appContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	points := make([]common.Projection, len(data.Points))
	for i, p := range data.Points {
		points[i] = common.Projection{
			ChunkID:   p.ChunkID,
			Algorithm: algorithm,
			X:         p.X,
			Y:         p.Y,
		}
	}

	if err := app.Store.UpsertProjections(c.Request().Context(), user.TenantID, algorithm, points); err != nil {
		return domainError(c, err)
	}

	return c.JSON(http.StatusOK, upsertProjectionsResponse{
		Message: "Projections stored successfully",
		Points:  len(points),
	})
}
