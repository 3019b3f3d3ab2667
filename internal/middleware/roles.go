package middleware

import (
	"net/http"

	"github.com/andrsk/staff-portal/internal/models"
	"github.com/labstack/echo/v4"
)

// RequireRoles gates a route on an allow-list of role codes. Any single
// matching role passes. Missing roles on the context means the verifier
// never ran, which is a 401, not a 403.
func RequireRoles(allowed ...int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, ok := c.Get(ContextRoles).([]int)
			if !ok || len(roles) == 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "no roles on request")
			}

			if !models.RoleList(roles).Contains(allowed...) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}

			return next(c)
		}
	}
}
