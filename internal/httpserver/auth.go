package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/andrsk/staff-portal/internal/service"
	"github.com/andrsk/staff-portal/pkg/cookies"
	"github.com/andrsk/staff-portal/pkg/logging"
	"github.com/labstack/echo/v4"
)

type AuthHTTP struct {
	Svc          *service.AuthService
	RefreshTTL   time.Duration
	CookieSecure bool
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.Register(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBadRequest):
			return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
		case errors.Is(err, service.ErrConflict):
			return echo.NewHTTPError(http.StatusConflict, "username already taken")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "registration failed")
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": "new user " + user.Username + " created",
	})
}

// Login: POST /auth. Sets the refresh token as the jwt cookie and returns
// the access token with the user's role codes.
func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBadRequest):
			return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
		case errors.Is(err, service.ErrUnauthorized):
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
		}
	}

	c.SetCookie(cookies.Refresh(res.RefreshToken, h.RefreshTTL, h.CookieSecure))

	return c.JSON(http.StatusOK, echo.Map{
		"accessToken": res.AccessToken,
		"roles":       res.Roles,
	})
}

// Refresh: GET /refresh. 401 without a cookie; 403 when the cookie does not
// match a live stored refresh token.
func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	cookie, err := c.Cookie(cookies.Name)
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing refresh cookie")
	}

	accessToken, err := h.Svc.Refresh(ctx, cookie.Value)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, "invalid refresh token")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "refresh failed")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"accessToken": accessToken,
	})
}

// Logout: GET /logout. Idempotent; the cookie is cleared on every path that
// carries one.
func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	cookie, err := c.Cookie(cookies.Name)
	if err != nil || cookie.Value == "" {
		return c.NoContent(http.StatusNoContent)
	}

	if err := h.Svc.Logout(ctx, cookie.Value); err != nil {
		c.SetCookie(cookies.Clear(h.CookieSecure))
		return echo.NewHTTPError(http.StatusInternalServerError, "logout failed")
	}

	c.SetCookie(cookies.Clear(h.CookieSecure))
	return c.NoContent(http.StatusCreated)
}
