package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
)

const (
	sessionName        = "crud_session"
	sessionUsernameKey = "username"
	sessionMaxAge      = 8 * 60 * 60
)

// SessionManager keeps the form-login username in a signed cookie.
type SessionManager struct {
	store  *sessions.CookieStore
	secure bool
}

func NewSessionManager(key string, secure bool) *SessionManager {
	return &SessionManager{store: sessions.NewCookieStore([]byte(key)), secure: secure}
}

func (s *SessionManager) Username(r *http.Request) (string, bool) {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		return "", false
	}

	username, _ := session.Values[sessionUsernameKey].(string)
	username = strings.TrimSpace(username)
	return username, username != ""
}

func (s *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, username string) error {
	// A cookie that fails to decode still yields a fresh session to overwrite it.
	session, _ := s.store.Get(r, sessionName)
	s.applyOptions(session)
	session.Values[sessionUsernameKey] = username

	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, sessionName)
	session.Values = map[interface{}]interface{}{}
	s.applyOptions(session)
	session.Options.MaxAge = -1

	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *SessionManager) applyOptions(session *sessions.Session) {
	if session.Options == nil {
		session.Options = &sessions.Options{}
	}
	session.Options.Path = "/"
	session.Options.MaxAge = sessionMaxAge
	session.Options.HttpOnly = true
	session.Options.Secure = s.secure
	session.Options.SameSite = http.SameSiteLaxMode
}
