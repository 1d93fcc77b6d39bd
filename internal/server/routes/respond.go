package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/atento/knowledge/internal/server/middleware"
	"github.com/atento/knowledge/pkg/common"
	"github.com/atento/knowledge/pkg/logger"
)

type errorResponse struct {
	Message string `json:"message"`
}

// domainError maps storage and pipeline errors onto HTTP responses. A
// cross-tenant record is reported exactly like a missing one.
func domainError(c echo.Context, err error) error {
	var (
		verr *common.ValidationError
		cerr *common.ConsistencyError
		uerr *common.UpstreamError
	)
	switch {
	case errors.Is(err, common.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Message: "Not found"})
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, errorResponse{Message: verr.Error()})
	case errors.As(err, &cerr):
		return c.JSON(http.StatusConflict, errorResponse{Message: cerr.Error()})
	case errors.As(err, &uerr):
		logger.Error("[Routes] Upstream provider failed", "op", uerr.Op, "err", uerr.Err)
		return c.JSON(http.StatusBadGateway, errorResponse{Message: "Upstream provider failed"})
	}
	logger.Error("[Routes] Unhandled error", "err", err)
	return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Internal server error"})
}

func appContext(c echo.Context) (*middleware.App, *middleware.AppUser, bool) {
	cc := c.(*middleware.AppContext)
	if cc.User == nil {
		return nil, nil, false
	}
	return cc.App, cc.User, true
}
