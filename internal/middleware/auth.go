package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"go-crud-api/internal/model"
	"go-crud-api/internal/security"
	"go-crud-api/internal/token"
)

const bearerPrefix = "bearer "

type tokenVerifier interface {
	Verify(ctx context.Context, tokenString string) token.Verification
}

type credentialStore interface {
	FindByUsername(ctx context.Context, username string) (model.Identity, error)
}

type sessionReader interface {
	Username(r *http.Request) (string, bool)
}

type verificationRecorder interface {
	ObserveVerification(result string)
}

type contextKey string

const principalContextKey contextKey = "principal"

type AuthMiddleware struct {
	verifier tokenVerifier
	users    credentialStore
	policy   security.Policy
	sessions sessionReader
	recorder verificationRecorder
}

func NewAuthMiddleware(verifier tokenVerifier, users credentialStore, policy security.Policy) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, users: users, policy: policy}
}

// WithSessions lets the filter restore a principal from a session cookie when
// no bearer header is sent. Ignored for stateless policies.
func (m *AuthMiddleware) WithSessions(sessions sessionReader) *AuthMiddleware {
	if m.policy.SessionsEnabled() {
		m.sessions = sessions
	}
	return m
}

func (m *AuthMiddleware) WithRecorder(recorder verificationRecorder) *AuthMiddleware {
	m.recorder = recorder
	return m
}

// Authenticate attaches a principal when the request carries a valid bearer
// token (or session). It never rejects for bad credentials; that is left to
// RequireAuth. The only failure it writes is 503 when the user store is down.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}

		principal, err := m.resolve(r)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			slog.Error("authentication aborted: credential store unavailable", "path", r.URL.Path, "error", err)
			writeAuthError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "authentication backend unavailable")
			return
		}

		if principal != nil {
			setRequestUser(r.Context(), principal.Username)
			r = r.WithContext(WithPrincipal(r.Context(), principal))
		}

		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) resolve(r *http.Request) (*model.Principal, error) {
	tokenString, ok := BearerToken(r.Header.Get("Authorization"))
	if !ok {
		if m.sessions == nil {
			return nil, nil
		}
		username, ok := m.sessions.Username(r)
		if !ok {
			return nil, nil
		}
		return m.loadPrincipal(r.Context(), username)
	}

	result := m.verifier.Verify(r.Context(), tokenString)
	if m.recorder != nil {
		m.recorder.ObserveVerification(result.Status.String())
	}
	if !result.Valid() {
		slog.Warn("bearer token rejected", "reason", result.Status.String(), "path", r.URL.Path)
		return nil, nil
	}

	return m.loadPrincipal(r.Context(), result.Subject)
}

func (m *AuthMiddleware) loadPrincipal(ctx context.Context, username string) (*model.Principal, error) {
	identity, err := m.users.FindByUsername(ctx, username)
	if errors.Is(err, model.ErrUserNotFound) {
		slog.Warn("authenticated subject no longer exists", "username", username)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
	}

	return model.NewPrincipal(identity), nil
}

// RequireAuth rejects requests without a principal: 401, or a redirect to the
// login form when form login is enabled.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			if m.policy.FormLoginEnabled {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Authorize applies RequireAuth to every path the policy does not list as public.
func (m *AuthMiddleware) Authorize(next http.Handler) http.Handler {
	guarded := m.RequireAuth(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.policy.IsPublic(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		guarded.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) RequireRoles(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}

			for _, role := range allowedRoles {
				if principal.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
		})
	}
}

// BearerToken extracts the credential from an Authorization header value.
// The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	tokenString := strings.TrimSpace(header[len(bearerPrefix):])
	return tokenString, tokenString != ""
}

func WithPrincipal(ctx context.Context, principal *model.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

func PrincipalFromContext(ctx context.Context) (*model.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(*model.Principal)
	return principal, ok && principal != nil
}

func writeAuthError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = jsonEncode(w, model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	})
}
