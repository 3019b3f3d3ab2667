package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andrsk/staff-portal/internal/models"
	"github.com/andrsk/staff-portal/pkg/tokens"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var accessSecret = []byte("test-access-secret")

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func doVerified(t *testing.T, authHeader string) (*httptest.ResponseRecorder, echo.Context, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/employees", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	verifier := NewTokenVerifier(accessSecret)
	err := verifier.RequireAuth(okHandler)(c)
	return rec, c, err
}

func TestTokenVerifier_ValidToken(t *testing.T) {
	t.Parallel()

	token, err := tokens.IssueAccessToken("alice", []int{models.RoleUser}, accessSecret, time.Minute)
	require.NoError(t, err)

	rec, c, hErr := doVerified(t, "Bearer "+token)
	require.NoError(t, hErr)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", c.Get(ContextUsername))
	assert.Equal(t, []int{models.RoleUser}, c.Get(ContextRoles))
}

func TestTokenVerifier_MissingOrMalformedHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing", header: ""},
		{name: "no bearer prefix", header: "Token abc"},
		{name: "lowercase scheme", header: "bearer abc"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := doVerified(t, tt.header)
			he, ok := err.(*echo.HTTPError)
			require.True(t, ok, "expected HTTPError")
			assert.Equal(t, http.StatusUnauthorized, he.Code)
		})
	}
}

// Expired and invalid tokens are 403, not 401: the client treats 403 as a
// refresh-and-retry signal while 401 means re-authenticate.
func TestTokenVerifier_InvalidToken(t *testing.T) {
	t.Parallel()

	expired, err := tokens.IssueAccessToken("alice", []int{models.RoleUser}, accessSecret, -time.Second)
	require.NoError(t, err)
	foreign, err := tokens.IssueAccessToken("alice", []int{models.RoleUser}, []byte("other"), time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "expired", token: expired},
		{name: "wrong secret", token: foreign},
		{name: "garbage", token: "not-a-jwt"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := doVerified(t, "Bearer "+tt.token)
			he, ok := err.(*echo.HTTPError)
			require.True(t, ok, "expected HTTPError")
			assert.Equal(t, http.StatusForbidden, he.Code)
		})
	}
}

func doGated(t *testing.T, roles []int, allowed ...int) error {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/employees", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if roles != nil {
		c.Set(ContextRoles, roles)
	}

	return RequireRoles(allowed...)(okHandler)(c)
}

func TestRequireRoles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		roles    []int
		allowed  []int
		wantCode int
	}{
		{
			name:    "single matching role suffices",
			roles:   []int{models.RoleEditor},
			allowed: []int{models.RoleAdmin, models.RoleEditor},
		},
		{
			name:     "no intersection",
			roles:    []int{models.RoleEditor},
			allowed:  []int{models.RoleAdmin},
			wantCode: http.StatusForbidden,
		},
		{
			name:     "empty roles",
			roles:    []int{},
			allowed:  []int{models.RoleAdmin},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "verifier skipped",
			roles:    nil,
			allowed:  []int{models.RoleAdmin},
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := doGated(t, tt.roles, tt.allowed...)
			if tt.wantCode == 0 {
				assert.NoError(t, err)
				return
			}
			he, ok := err.(*echo.HTTPError)
			require.True(t, ok, "expected HTTPError")
			assert.Equal(t, tt.wantCode, he.Code)
		})
	}
}
