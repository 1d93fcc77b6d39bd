package routes

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// GetProjectionsHandler returns the stored layout for one algorithm with
// a bounded content preview per point.
func GetProjectionsHandler(c echo.Context) error {
	type projectionView struct {
		ChunkID     string  `json:"chunk_id"`
		X           float64 `json:"x"`
		Y           float64 `json:"y"`
		SourceID    string  `json:"source_id"`
		SourceTitle string  `json:"source_title"`
		Preview     string  `json:"preview"`
	}

	type getProjectionsResponse struct {
		Message string           `json:"message"`
		Points  []projectionView `json:"points"`
	}

	algorithm := c.Param("algorithm")
	if algorithm == "" {
		return c.JSON(http.StatusBadRequest, getProjectionsResponse{Message: "Invalid request params"})
	}

	app, user, ok := appContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	views, err := app.Store.ListProjections(c.Request().Context(), user.TenantID, algorithm, limit)
	if err != nil {
		return domainError(c, err)
	}

	points := make([]projectionView, len(views))
	for i, v := range views {
		points[i] = projectionView{
			ChunkID:     v.Projection.ChunkID,
			X:           v.Projection.X,
			Y:           v.Projection.Y,
			SourceID:    v.SourceID,
			SourceTitle: v.SourceTitle,
			Preview:     v.Preview,
		}
	}

	return c.JSON(http.StatusOK, getProjectionsResponse{Message: "OK", Points: points})
}
