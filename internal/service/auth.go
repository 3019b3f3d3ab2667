package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andrsk/staff-portal/internal/events"
	"github.com/andrsk/staff-portal/internal/models"
	"github.com/andrsk/staff-portal/internal/repo"
	pkg_hash "github.com/andrsk/staff-portal/pkg/hash"
	"github.com/andrsk/staff-portal/pkg/logging"
	"github.com/andrsk/staff-portal/pkg/tokens"
)

type AuthService struct {
	Repo     *repo.GormRepo
	Producer *events.Producer

	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	Roles        []int
}

// Login verifies credentials, issues both tokens and persists the refresh
// token on the user record. The overwrite is the single-session rule: a
// prior session's refresh token stops matching the store and is dead from
// this point on. Two concurrent logins race on Save; the store's atomic
// per-record write means the last one decides which refresh token survives.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	if username == "" || password == "" {
		return nil, ErrBadRequest
	}

	user, err := s.Repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown user")
			return nil, ErrUnauthorized
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, fmt.Errorf("%w: find user: %v", ErrInternal, err)
	}

	if !pkg_hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "wrong password")
		return nil, ErrUnauthorized
	}

	accessToken, err := tokens.IssueAccessToken(user.Username, user.Roles, s.AccessSecret, s.AccessTTL)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, fmt.Errorf("%w: issue access token: %v", ErrInternal, err)
	}

	refreshToken, err := tokens.IssueRefreshToken(user.Username, s.RefreshSecret, s.RefreshTTL)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, fmt.Errorf("%w: issue refresh token: %v", ErrInternal, err)
	}

	user.RefreshToken = refreshToken
	if err := s.Repo.Save(ctx, user); err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return nil, fmt.Errorf("%w: save refresh token: %v", ErrInternal, err)
	}

	s.publish(ctx, events.TypeUserLogin, user.Username)
	l.Info("login_successful")

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Roles:        user.Roles,
	}, nil
}

// Refresh trades a valid refresh cookie for a fresh access token. The token
// must both verify against the refresh secret and equal the value currently
// stored on the user, so rotation and logout take effect immediately rather
// than at signature expiry. Roles come from the store, not from any old
// token, so role changes land on the next refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	user, err := s.Repo.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("refresh_failed", "status", 403, "reason", "token not in store")
			return "", ErrForbidden
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return "", fmt.Errorf("%w: find by refresh token: %v", ErrInternal, err)
	}

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		l.Warn("refresh_failed", "status", 403, "reason", "invalid token", "error", err)
		return "", ErrForbidden
	}
	if claims.Username != user.Username {
		// Token matched a record but names a different user: desync,
		// treat as revoked.
		l.Warn("refresh_failed", "status", 403, "reason", "username mismatch")
		return "", ErrForbidden
	}

	accessToken, err := tokens.IssueAccessToken(user.Username, user.Roles, s.AccessSecret, s.AccessTTL)
	if err != nil {
		l.Error("refresh_failed", "status", 500, "error", err)
		return "", fmt.Errorf("%w: issue access token: %v", ErrInternal, err)
	}

	l.Info("refresh_successful", "username", user.Username)
	return accessToken, nil
}

// Logout clears the stored refresh token. Idempotent: an unknown or already
// cleared token is not an error. The access token stays cryptographically
// valid until its own short expiry; that staleness window is accepted and
// bounded by the access TTL.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	user, err := s.Repo.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		l.Error("logout_failed", "status", 500, "error", err)
		return fmt.Errorf("%w: find by refresh token: %v", ErrInternal, err)
	}

	user.RefreshToken = ""
	if err := s.Repo.Save(ctx, user); err != nil {
		l.Error("logout_failed", "status", 500, "error", err)
		return fmt.Errorf("%w: clear refresh token: %v", ErrInternal, err)
	}

	s.publish(ctx, events.TypeUserLogout, user.Username)
	l.Info("logout_successful", "username", user.Username)
	return nil
}

// Register creates a user with the default User role.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register", "username", username)

	if username == "" || password == "" {
		return nil, ErrBadRequest
	}

	pwHash, err := pkg_hash.HashPassword(password)
	if err != nil {
		l.Error("register_failed", "status", 500, "error", err)
		return nil, fmt.Errorf("%w: hash password: %v", ErrInternal, err)
	}

	user := models.User{
		Username:     username,
		PasswordHash: pwHash,
		Roles:        models.RoleList{models.RoleUser},
	}

	if err := s.Repo.CreateUserIfNotExists(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("register_failed", "status", 409, "reason", "duplicate username")
			return nil, ErrConflict
		}
		l.Error("register_failed", "status", 500, "error", err)
		return nil, fmt.Errorf("%w: create user: %v", ErrInternal, err)
	}

	s.publish(ctx, events.TypeUserRegistered, user.Username)
	l.Info("register_successful")
	return &user, nil
}

// publish is best-effort: a broker failure is logged, never surfaced to the
// client.
func (s *AuthService) publish(ctx context.Context, eventType, username string) {
	if err := s.Producer.Publish(ctx, events.AuthEvent{
		Type:     eventType,
		Username: username,
		At:       time.Now().UTC(),
	}); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", eventType, "error", err)
	}
}
