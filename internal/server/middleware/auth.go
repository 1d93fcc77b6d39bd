package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var allCapabilities = []string{
	"knowledge.read",
	"knowledge.write",
	"knowledge.delete",
	"graph.read",
	"graph.extract",
	"projection.read",
	"projection.write",
}

func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}

		token := strings.Split(authHeader, " ")[1]
		app := c.(*AppContext).App

		// Master API key bypass for operator tooling
		if app.MasterAPIKey != "" && app.MasterTenantID != "" && token == app.MasterAPIKey {
			c.(*AppContext).User = &AppUser{
				ID:           "master",
				TenantID:     app.MasterTenantID,
				Capabilities: allCapabilities,
			}
			return next(c)
		}

		k := *app.Key
		parsed, err := jwt.Parse(token, k.Keyfunc)
		if err != nil || !parsed.Valid {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}

		claims, ok := parsed.Claims.(jwt.MapClaims)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}

		tenantID, ok := claims["tenant_id"].(string)
		if !ok || tenantID == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing tenant"})
		}

		userID := ""
		if sub, ok := claims["sub"].(string); ok {
			userID = sub
		}

		var capabilities []string
		if capsClaim, ok := claims["capabilities"].([]any); ok {
			for _, claim := range capsClaim {
				if capStr, ok := claim.(string); ok {
					capabilities = append(capabilities, capStr)
				}
			}
		}

		if role, ok := claims["role"].(string); ok && role == "admin" && len(capabilities) == 0 {
			capabilities = allCapabilities
		}

		c.(*AppContext).User = &AppUser{
			ID:           userID,
			TenantID:     tenantID,
			Capabilities: capabilities,
		}

		return next(c)
	}
}

// TenantMiddleware rejects requests whose :tenant_id path segment does
// not match the token's tenant, so a URL can never widen the scope the
// caller authenticated for.
func TenantMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := c.(*AppContext).User
		if user == nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}
		if tenantParam := c.Param("tenant_id"); tenantParam != "" && tenantParam != user.TenantID {
			// Same body as an unknown route: existence of other tenants is
			// not disclosed.
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
		}
		return next(c)
	}
}
