package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"go-crud-api/internal/model"
	"go-crud-api/internal/token"
	"go-crud-api/pkg/apierror"
)

type credentialStore interface {
	FindByUsername(ctx context.Context, username string) (model.Identity, error)
}

type loginRecorder interface {
	ObserveLogin(outcome string)
}

const (
	loginSuccess     = "success"
	loginBadRequest  = "bad_request"
	loginBadPassword = "bad_credentials"
	loginStoreError  = "store_error"
)

// Hash of an unguessable value, compared against when the username is unknown
// so both failure paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

type AuthService struct {
	users    credentialStore
	codec    *token.Codec
	recorder loginRecorder
}

func NewAuthService(users credentialStore, codec *token.Codec, recorder loginRecorder) *AuthService {
	return &AuthService{users: users, codec: codec, recorder: recorder}
}

// Login checks the credentials and issues a bearer token for the stored username.
func (s *AuthService) Login(ctx context.Context, username string, password string) (model.TokenResponse, error) {
	identity, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return model.TokenResponse{}, err
	}

	issued, err := s.codec.Issue(identity.Username)
	if err != nil {
		return model.TokenResponse{}, err
	}

	slog.Info("user logged in", "username", identity.Username)

	return model.TokenResponse{
		AccessToken: issued.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.codec.TTL().Seconds()),
		ExpiresAt:   issued.ExpiresAt,
	}, nil
}

// Authenticate returns the stored identity when the password matches. Unknown
// users and wrong passwords produce the same error.
func (s *AuthService) Authenticate(ctx context.Context, username string, password string) (model.Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.observe(loginBadRequest)
		return model.Identity{}, apierror.BadRequest("username and password are required", "")
	}

	identity, err := s.users.FindByUsername(ctx, username)
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		s.observe(loginBadPassword)
		return model.Identity{}, invalidCredentials(model.ErrUserNotFound)
	case err != nil:
		s.observe(loginStoreError)
		slog.Error("credential lookup failed", "error", err)
		return model.Identity{}, apierror.Wrap(errors.Join(model.ErrStoreUnavailable, err), "STORE_UNAVAILABLE", "authentication backend unavailable", http.StatusServiceUnavailable)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		s.observe(loginBadPassword)
		slog.Warn("login rejected", "username", username)
		return model.Identity{}, invalidCredentials(model.ErrBadCredentials)
	}

	s.observe(loginSuccess)
	return identity, nil
}

func (s *AuthService) observe(outcome string) {
	if s.recorder != nil {
		s.recorder.ObserveLogin(outcome)
	}
}

func invalidCredentials(cause error) error {
	return apierror.Wrap(cause, "UNAUTHORIZED", "invalid credentials", http.StatusUnauthorized)
}
