package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-crud-api/internal/config"
	"go-crud-api/internal/model"
)

const testSecret = "supersecretkeysupersecretkey12345678"

func testConfig() *config.Config {
	return &config.Config{
		ServerPort:         "0",
		RequestTimeout:     5 * time.Second,
		JWTSecret:          testSecret,
		JWTTTL:             config.DefaultJWTTTL,
		UserSource:         "memory",
		AdminPassword:      "admin",
		UserPassword:       "password",
		StatelessSessions:  true,
		DBMaxConns:         1,
		CORSOrigins:        []string{"*"},
		RateLimitRPM:       -1,
		AuthRateLimitRPM:   -1,
		ExternalAPITimeout: time.Second,
		LogFormat:          "json",
		LogLevel:           "error",
	}
}

func newTestHandler(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()

	require.NoError(t, cfg.Validate())
	application, err := NewWithConfig(context.Background(), cfg, bcrypt.MinCost)
	require.NoError(t, err)
	t.Cleanup(application.cleanup)

	return application.Handler()
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *model.APIError `json:"error"`
}

func do(t *testing.T, h http.Handler, method string, target string, body any, header http.Header) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}

	req := httptest.NewRequest(method, target, &payload)
	req.Header.Set("Content-Type", "application/json")
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var parsed envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(rec.Body.Bytes(), &parsed)
	}
	return rec, parsed
}

func bearer(tokenString string) http.Header {
	return http.Header{"Authorization": {"Bearer " + tokenString}}
}

func login(t *testing.T, h http.Handler, username string, password string) string {
	t.Helper()

	rec, body := do(t, h, http.MethodPost, "/auth/login", model.LoginRequest{Username: username, Password: password}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tokens model.TokenResponse
	require.NoError(t, json.Unmarshal(body.Data, &tokens))
	return tokens.AccessToken
}

func TestLoginScenario(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, testConfig())

	tokenString := login(t, h, "admin", "admin")
	require.True(t, strings.HasPrefix(tokenString, "eyJ"))

	rec, _ := do(t, h, http.MethodGet, "/books", nil, bearer(tokenString))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := do(t, h, http.MethodGet, "/books", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, body.Success)

	rec, _ = do(t, h, http.MethodGet, "/books", nil, bearer("garbage"))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/api/public", nil, bearer("garbage"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = do(t, h, http.MethodGet, "/auth/me", nil, bearer(tokenString))
	require.Equal(t, http.StatusOK, rec.Code)
	var principal model.Principal
	require.NoError(t, json.Unmarshal(body.Data, &principal))
	require.Equal(t, "admin", principal.Username)
	require.Equal(t, []string{"ROLE_ADMIN"}, principal.Authorities)
}

func TestLoginFailureGivesNoHint(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, testConfig())

	wrongRec, wrongBody := do(t, h, http.MethodPost, "/auth/login", model.LoginRequest{Username: "admin", Password: "nope"}, nil)
	ghostRec, ghostBody := do(t, h, http.MethodPost, "/auth/login", model.LoginRequest{Username: "ghost", Password: "nope"}, nil)

	require.Equal(t, http.StatusUnauthorized, wrongRec.Code)
	require.Equal(t, http.StatusUnauthorized, ghostRec.Code)
	require.Equal(t, wrongBody.Error, ghostBody.Error)
	require.Equal(t, "invalid credentials", wrongBody.Error.Message)
}

func TestLoginPlainText(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, testConfig())

	rec, _ := do(t, h, http.MethodPost, "/auth/login", model.LoginRequest{Username: "user", Password: "password"},
		http.Header{"Accept": {"text/plain"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.HasPrefix(rec.Body.String(), "eyJ"))

	rec, _ = do(t, h, http.MethodGet, "/api/secure", nil, bearer(rec.Body.String()))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Hello, user!")
}

func TestRoleGuard(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, testConfig())

	rec, _ := do(t, h, http.MethodGet, "/api/admin", nil, bearer(login(t, h, "user", "password")))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/api/admin", nil, bearer(login(t, h, "admin", "admin")))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestBookAndCarCRUD(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.SeedSampleData = true
	h := newTestHandler(t, cfg)
	auth := bearer(login(t, h, "admin", "admin"))

	rec, body := do(t, h, http.MethodGet, "/books", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	var books []model.Book
	require.NoError(t, json.Unmarshal(body.Data, &books))
	require.Len(t, books, 7)

	rec, _ = do(t, h, http.MethodPost, "/books", model.Book{ID: "20", Title: "Test Book", Author: "Test Author", PublishYear: 2025}, auth)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body = do(t, h, http.MethodPost, "/books", map[string]any{"id": "21", "title": " ", "author": "A", "publish_year": -1}, auth)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "VALIDATION_FAILED", body.Error.Code)

	rec, _ = do(t, h, http.MethodPut, "/books/1", model.Book{Title: "Updated Title", Author: "Updated Author", PublishYear: 2000}, auth)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = do(t, h, http.MethodGet, "/books/1", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code)
	var book model.Book
	require.NoError(t, json.Unmarshal(body.Data, &book))
	require.Equal(t, "Updated Title", book.Title)

	rec, _ = do(t, h, http.MethodPut, "/books/999", model.Book{Title: "New Book", Author: "New Author", PublishYear: 2025}, auth)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = do(t, h, http.MethodDelete, "/books/20", nil, auth)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/books/20", nil, auth)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/cars/2", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/cars", map[string]any{"id": "7"}, auth)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, http.MethodPut, "/cars/7", model.Car{Name: "Volvo XC60"}, auth)
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestOperationalEndpoints(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, testConfig())
	login(t, h, "admin", "admin")

	rec, _ := do(t, h, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/ready", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `crud_api_login_attempts_total{outcome="success"} 1`)

	rec, _ = do(t, h, http.MethodGet, "/openapi.json", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"/books"`)

	rec, body := do(t, h, http.MethodGet, "/api/external", nil, bearer(login(t, h, "user", "password")))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "NOT_CONFIGURED", body.Error.Code)
}

func TestFormLogin(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.StatelessSessions = false
	cfg.FormLoginEnabled = true
	cfg.SessionKey = strings.Repeat("k", 32)
	h := newTestHandler(t, cfg)

	rec, _ := do(t, h, http.MethodGet, "/api/private", nil, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))

	rec, _ = do(t, h, http.MethodGet, "/login", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `<form method="post" action="/login">`)

	submit := func(password string) *httptest.ResponseRecorder {
		form := url.Values{"username": {"user"}, "password": {password}}
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	failed := submit("wrong")
	require.Equal(t, http.StatusSeeOther, failed.Code)
	require.Equal(t, "/login?error", failed.Header().Get("Location"))

	signedIn := submit("password")
	require.Equal(t, http.StatusSeeOther, signedIn.Code)
	require.Equal(t, "/api/private", signedIn.Header().Get("Location"))
	cookies := signedIn.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, signedIn.Header().Get("Location"), nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Hello, user!")

	rec, _ = do(t, h, http.MethodGet, "/books", nil, bearer(login(t, h, "admin", "admin")))
	require.Equal(t, http.StatusOK, rec.Code)
}
