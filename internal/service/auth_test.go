package service

import (
	"context"
	"testing"
	"time"

	"github.com/andrsk/staff-portal/internal/models"
	"github.com/andrsk/staff-portal/internal/repo"
	pkg_hash "github.com/andrsk/staff-portal/pkg/hash"
	"github.com/andrsk/staff-portal/pkg/tokens"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to connect to in-memory db")
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Employee{}))

	return db
}

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()

	return &AuthService{
		Repo:          &repo.GormRepo{DB: newTestDB(t)},
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     30 * time.Second,
		RefreshTTL:    24 * time.Hour,
	}
}

func seedUser(t *testing.T, svc *AuthService, username, password string, roles models.RoleList) *models.User {
	t.Helper()

	pwHash, err := pkg_hash.HashPassword(password)
	require.NoError(t, err)

	user := models.User{
		Username:     username,
		PasswordHash: pwHash,
		Roles:        roles,
	}
	require.NoError(t, svc.Repo.DB.Create(&user).Error)
	return &user
}

func TestAuthService_Login_ReturnsTokenWithStoredRoles(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()
	seedUser(t, svc, "alice", "Secret123", models.RoleList{models.RoleUser, models.RoleEditor})

	res, err := svc.Login(ctx, "alice", "Secret123")
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	require.NotEmpty(t, res.RefreshToken)

	claims, err := tokens.AccessClaimsFromToken(res.AccessToken, svc.AccessSecret)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, []int{models.RoleUser, models.RoleEditor}, claims.Roles)

	// The refresh token is now the one stored on the record.
	var stored models.User
	require.NoError(t, svc.Repo.DB.Where("username = ?", "alice").First(&stored).Error)
	assert.Equal(t, res.RefreshToken, stored.RefreshToken)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)

	res, err := svc.Login(context.Background(), "nobody", "Secret123")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	seedUser(t, svc, "alice", "Secret123", models.RoleList{models.RoleUser})

	res, err := svc.Login(context.Background(), "alice", "wrong")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_Login_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "empty username", username: "", password: "secret"},
		{name: "empty password", username: "alice", password: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := svc.Login(ctx, tt.username, tt.password)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrBadRequest)
		})
	}
}

// Logging in again rotates the stored refresh token, so the single live
// session per user is the most recent login and the older cookie dies.
func TestAuthService_Refresh_RotatedTokenIsForbidden(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()
	seedUser(t, svc, "alice", "Secret123", models.RoleList{models.RoleUser})

	first, err := svc.Login(ctx, "alice", "Secret123")
	require.NoError(t, err)

	second, err := svc.Login(ctx, "alice", "Secret123")
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrForbidden)

	accessToken, err := svc.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
}

func TestAuthService_Refresh_ReadsCurrentRoles(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()
	user := seedUser(t, svc, "alice", "Secret123", models.RoleList{models.RoleUser})

	res, err := svc.Login(ctx, "alice", "Secret123")
	require.NoError(t, err)

	// Promote the user after login; the next refresh must pick it up
	// without a new login.
	user.Roles = models.RoleList{models.RoleUser, models.RoleAdmin}
	require.NoError(t, svc.Repo.DB.Save(user).Error)

	accessToken, err := svc.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)

	claims, err := tokens.AccessClaimsFromToken(accessToken, svc.AccessSecret)
	require.NoError(t, err)
	assert.Equal(t, []int{models.RoleUser, models.RoleAdmin}, claims.Roles)
}

func TestAuthService_Refresh_UnknownToken(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)

	_, err := svc.Refresh(context.Background(), "never-issued")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthService_Refresh_ForeignSignature(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()
	user := seedUser(t, svc, "alice", "Secret123", models.RoleList{models.RoleUser})

	// A token signed with the wrong secret that somehow ends up stored
	// must still be rejected by the cryptographic check.
	forged, err := tokens.IssueRefreshToken("alice", []byte("attacker-secret"), time.Hour)
	require.NoError(t, err)
	user.RefreshToken = forged
	require.NoError(t, svc.Repo.DB.Save(user).Error)

	_, err = svc.Refresh(ctx, forged)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthService_Logout_ClearsStoredToken(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()
	seedUser(t, svc, "alice", "Secret123", models.RoleList{models.RoleUser})

	res, err := svc.Login(ctx, "alice", "Secret123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, res.RefreshToken))

	var stored models.User
	require.NoError(t, svc.Repo.DB.Where("username = ?", "alice").First(&stored).Error)
	assert.Empty(t, stored.RefreshToken)

	_, err = svc.Refresh(ctx, res.RefreshToken)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthService_Logout_Idempotent(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()
	seedUser(t, svc, "alice", "Secret123", models.RoleList{models.RoleUser})

	res, err := svc.Login(ctx, "alice", "Secret123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, res.RefreshToken))
	require.NoError(t, svc.Logout(ctx, res.RefreshToken))
	require.NoError(t, svc.Logout(ctx, "never-issued"))
}

func TestAuthService_Register_SuccessAndConflict(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "bob", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleList{models.RoleUser}, user.Roles)
	assert.NotEqual(t, "Secret123", user.PasswordHash)

	_, err = svc.Register(ctx, "bob", "Other456")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAuthService_Register_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)

	_, err := svc.Register(context.Background(), "", "secret")
	assert.ErrorIs(t, err, ErrBadRequest)

	_, err = svc.Register(context.Background(), "bob", "")
	assert.ErrorIs(t, err, ErrBadRequest)
}
