package server

import (
	"github.com/atento/knowledge/internal/server/middleware"
	"github.com/atento/knowledge/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api/tenants/:tenant_id", middleware.AuthMiddleware, middleware.TenantMiddleware)

	// Source routes
	apiRoutes.POST("/sources", routes.CreateSourceHandler, middleware.RequireCapability("knowledge.write"))
	apiRoutes.GET("/sources/:id", routes.GetSourceHandler, middleware.RequireCapability("knowledge.read"))
	apiRoutes.PATCH("/sources/:id/archive", routes.ArchiveSourceHandler, middleware.RequireCapability("knowledge.write"))
	apiRoutes.DELETE("/sources/:id", routes.DeleteSourceHandler, middleware.RequireCapability("knowledge.delete"))

	// Retrieval routes
	apiRoutes.POST("/search", routes.SearchHandler, middleware.RequireCapability("knowledge.read"))

	// Graph routes
	apiRoutes.POST("/graph/extract", routes.ExtractGraphHandler, middleware.RequireCapability("graph.extract"))
	apiRoutes.GET("/graph", routes.GetGraphHandler, middleware.RequireCapability("graph.read"))
	apiRoutes.GET("/graph/nodes/:node_id/neighbors", routes.GetNeighborsHandler, middleware.RequireCapability("graph.read"))

	// Projection routes
	apiRoutes.PUT("/projections/:algorithm", routes.UpsertProjectionsHandler, middleware.RequireCapability("projection.write"))
	apiRoutes.GET("/projections/:algorithm", routes.GetProjectionsHandler, middleware.RequireCapability("projection.read"))
}
