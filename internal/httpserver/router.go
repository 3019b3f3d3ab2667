package httpserver

import (
	"net/http"

	"github.com/andrsk/staff-portal/internal/middleware"
	"github.com/andrsk/staff-portal/internal/models"
	"github.com/labstack/echo/v4"
)

type Deps struct {
	AuthHandler     *AuthHTTP
	EmployeeHandler *EmployeeHTTP
	AccessSecret    []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.POST("/register", d.AuthHandler.Register)
	e.POST("/auth", d.AuthHandler.Login)
	e.GET("/refresh", d.AuthHandler.Refresh)
	e.GET("/logout", d.AuthHandler.Logout)

	verifier := middleware.NewTokenVerifier(d.AccessSecret)

	employees := e.Group("/employees")
	employees.Use(verifier.RequireAuth)

	employees.GET("", d.EmployeeHandler.List)
	employees.GET("/search", d.EmployeeHandler.Search)
	employees.GET("/:id", d.EmployeeHandler.Get)
	employees.POST("", d.EmployeeHandler.Create,
		middleware.RequireRoles(models.RoleAdmin, models.RoleEditor))
	employees.PUT("/:id", d.EmployeeHandler.Update,
		middleware.RequireRoles(models.RoleAdmin, models.RoleEditor))
	employees.DELETE("/:id", d.EmployeeHandler.Delete,
		middleware.RequireRoles(models.RoleAdmin))
}
