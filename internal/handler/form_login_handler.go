package handler

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"

	"go-crud-api/internal/model"
	"go-crud-api/pkg/apierror"
)

type credentialChecker interface {
	Authenticate(ctx context.Context, username string, password string) (model.Identity, error)
}

type sessionWriter interface {
	SignIn(w http.ResponseWriter, r *http.Request, username string) error
	SignOut(w http.ResponseWriter, r *http.Request) error
}

var loginPage = template.Must(template.New("login").Parse(`<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Sign in</title>
  </head>
  <body>
    {{if .Failed}}<p role="alert">Invalid username or password.</p>{{end}}
    {{if .LoggedOut}}<p>You have been signed out.</p>{{end}}
    <form method="post" action="/login">
      <label>Username <input type="text" name="username" autocomplete="username" required /></label>
      <label>Password <input type="password" name="password" autocomplete="current-password" required /></label>
      <button type="submit">Sign in</button>
    </form>
  </body>
</html>`))

// FormLoginHandler serves the browser sign-in flow backed by a session cookie.
type FormLoginHandler struct {
	auth     credentialChecker
	sessions sessionWriter
}

func NewFormLoginHandler(auth credentialChecker, sessions sessionWriter) *FormLoginHandler {
	return &FormLoginHandler{auth: auth, sessions: sessions}
}

func (h *FormLoginHandler) Form(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = loginPage.Execute(w, struct {
		Failed    bool
		LoggedOut bool
	}{
		Failed:    query.Has("error"),
		LoggedOut: query.Has("logout"),
	})
}

func (h *FormLoginHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPayloadBytes)
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/login?error", http.StatusSeeOther)
		return
	}

	identity, err := h.auth.Authenticate(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		if apierror.StatusOf(err) == http.StatusServiceUnavailable {
			writeError(w, err)
			return
		}
		http.Redirect(w, r, "/login?error", http.StatusSeeOther)
		return
	}

	if err := h.sessions.SignIn(w, r, identity.Username); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("form login succeeded", "username", identity.Username)
	http.Redirect(w, r, "/api/private", http.StatusSeeOther)
}

func (h *FormLoginHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SignOut(w, r); err != nil {
		writeError(w, err)
		return
	}

	http.Redirect(w, r, "/login?logout", http.StatusSeeOther)
}
