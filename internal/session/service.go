// Package session implements sign-up, sign-in and logout against the
// backend's authentication endpoints. The Service is the only writer of the
// token and identity held by the credential store.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dukerupert/supplyline/internal/api"
	"github.com/dukerupert/supplyline/internal/credstore"
	"github.com/dukerupert/supplyline/internal/model"
)

const (
	signUpPath = "authentication/sign-up"
	signInPath = "authentication/sign-in"
)

var (
	ErrMissingToken       = errors.New("sign-in response did not include a token")
	ErrMissingCredentials = errors.New("username and password are required")
)

// Credentials is the request body for both authentication endpoints.
// RoleID is only set on sign-up; on sign-in the backend takes the role from
// the account, so the field is left out of the body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	RoleID   int64  `json:"roleId,omitempty"`
}

type authResponse struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	RoleID       int64   `json:"roleId"`
	Subscription int     `json:"subscription"`
	Token        *string `json:"token,omitempty"`
}

func (r authResponse) user() *model.User {
	return &model.User{ID: r.ID, Username: r.Username, RoleID: r.RoleID, Subscription: r.Subscription}
}

// Service state is LoggedOut until a successful SignIn and returns to
// LoggedOut on Logout. SignUp never changes it.
type Service struct {
	api    *api.Client
	creds  *credstore.Store
	logger *slog.Logger
}

func NewService(client *api.Client, creds *credstore.Store, logger *slog.Logger) *Service {
	return &Service{api: client, creds: creds, logger: logger}
}

// SignUp registers a user. It does not sign in.
func (s *Service) SignUp(ctx context.Context, username, password string, roleID int64) (*model.User, error) {
	if err := checkCredentials(username, password); err != nil {
		return nil, err
	}

	var resp authResponse
	err := s.api.Do(ctx, http.MethodPost, signUpPath, Credentials{Username: username, Password: password, RoleID: roleID}, &resp)
	if err != nil {
		s.logger.Warn("sign-up failed", "username", username, "error", err)
		return nil, fmt.Errorf("sign up: %w", err)
	}

	s.logger.Info("signed up", "user_id", resp.ID, "role_id", resp.RoleID)
	return resp.user(), nil
}

// SignIn authenticates and, on success, stores the token and identity as
// one write. On any failure, including cancellation of ctx, the credential
// store is left untouched.
func (s *Service) SignIn(ctx context.Context, username, password string) (*model.User, error) {
	if err := checkCredentials(username, password); err != nil {
		return nil, err
	}

	var resp authResponse
	err := s.api.Do(ctx, http.MethodPost, signInPath, Credentials{Username: username, Password: password}, &resp)
	if err != nil {
		s.logger.Warn("sign-in failed", "username", username, "error", err)
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if resp.Token == nil || *resp.Token == "" {
		return nil, fmt.Errorf("sign in: %w", ErrMissingToken)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	user := resp.user()
	s.creds.Establish(*resp.Token, user.Identity())

	s.logger.Info("signed in", "user_id", user.ID, "role_id", user.RoleID)
	return user, nil
}

// Logout forgets the local session. There is no server-side session to end.
func (s *Service) Logout() {
	s.creds.ClearAll()
	s.logger.Info("logged out")
}

func (s *Service) IsLoggedIn() bool {
	return s.creds.IsLoggedIn()
}

func (s *Service) CurrentUserID() (int64, bool) {
	return s.creds.UserID()
}

func (s *Service) Current() model.Session {
	return s.creds.Session()
}

// TokenExpiry reads the exp claim when the token is a JWT. The signature is
// not checked; the value is for display only.
func (s *Service) TokenExpiry() (time.Time, bool) {
	token, ok := s.creds.Token()
	if !ok {
		return time.Time{}, false
	}
	return tokenExpiry(token)
}

func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func checkCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return ErrMissingCredentials
	}
	return nil
}
