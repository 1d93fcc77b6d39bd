package routes

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/atento/knowledge/pkg/common"
	"github.com/atento/knowledge/pkg/store"
)

// GetNeighborsHandler returns one node with its adjacent nodes and edges.
func GetNeighborsHandler(c echo.Context) error {
	type getNeighborsResponse struct {
		Message string        `json:"message"`
		Center  string        `json:"center_node_id,omitempty"`
		Nodes   []common.Node `json:"nodes"`
		Edges   []common.Edge `json:"edges"`
	}

	nodeID := c.Param("node_id")
	if nodeID == "" {
		return c.JSON(http.StatusBadRequest, getNeighborsResponse{Message: "Invalid request params"})
	}

	app, user, ok := appContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	filter := store.NeighborFilter{SourceID: c.QueryParam("source_id")}
	if raw := c.QueryParam("category"); raw != "" {
		category, err := common.ParseCategory(raw)
		if err != nil {
			return domainError(c, err)
		}
		filter.Category = &category
	}
	filter.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	view, err := app.Store.Neighbors(c.Request().Context(), user.TenantID, nodeID, filter)
	if err != nil {
		return domainError(c, err)
	}

	return c.JSON(http.StatusOK, getNeighborsResponse{
		Message: "OK",
		Center:  view.CenterNodeID,
		Nodes:   view.Nodes,
		Edges:   view.Edges,
	})
}
