package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/product-catalog/internal/api/schema"
	"github.com/99minutos/product-catalog/internal/core/domain"
)

// RBAC enforces role-based access control. With no roles given every
// authenticated caller passes.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, schema.ErrorResponse{Error: "missing authentication claims"})
			}
			if !domain.HasRequiredRole(id.Roles, allowedRoles) {
				return c.JSON(http.StatusForbidden, schema.ErrorResponse{Error: "forbidden"})
			}
			return next(c)
		}
	}
}
