package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

func HasCapability(user *AppUser, capability string) bool {
	if user == nil {
		return false
	}
	return slices.Contains(user.Capabilities, capability)
}

func RequireCapability(capability string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := c.(*AppContext).User
			if user == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}

			if !HasCapability(user, capability) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Forbidden: missing capability " + capability})
			}

			return next(c)
		}
	}
}
