package routes

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/atento/knowledge/pkg/common"
	"github.com/atento/knowledge/pkg/store"
)

// GetGraphHandler returns the tenant's knowledge graph for visualization.
func GetGraphHandler(c echo.Context) error {
	type graphCounts struct {
		Nodes int `json:"nodes"`
		Edges int `json:"edges"`
	}

	type getGraphResponse struct {
		Message string        `json:"message"`
		Nodes   []common.Node `json:"nodes"`
		Edges   []common.Edge `json:"edges"`
		Counts  graphCounts   `json:"counts"`
	}

	app, user, ok := appContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	filter := store.GraphFilter{SourceID: c.QueryParam("source_id")}
	if raw := c.QueryParam("category"); raw != "" {
		category, err := common.ParseCategory(raw)
		if err != nil {
			return domainError(c, err)
		}
		filter.Category = &category
	}
	filter.LimitNodes, _ = strconv.Atoi(c.QueryParam("limit_nodes"))
	filter.LimitEdges, _ = strconv.Atoi(c.QueryParam("limit_edges"))

	view, err := app.Store.ListGraph(c.Request().Context(), user.TenantID, filter)
	if err != nil {
		return domainError(c, err)
	}

	return c.JSON(http.StatusOK, getGraphResponse{
		Message: "OK",
		Nodes:   view.Nodes,
		Edges:   view.Edges,
		Counts:  graphCounts{Nodes: len(view.Nodes), Edges: len(view.Edges)},
	})
}
