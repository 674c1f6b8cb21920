package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go-crud-api/internal/middleware"
	"go-crud-api/internal/model"
	"go-crud-api/pkg/apierror"
)

type loginService interface {
	Login(ctx context.Context, username string, password string) (model.TokenResponse, error)
}

type AuthHandler struct {
	service loginService
}

func NewAuthHandler(service loginService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login answers with the token envelope, or the bare token when the client
// asks for text/plain.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPayloadBytes)).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	tokens, err := h.service.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	if wantsPlainText(r) {
		writeText(w, http.StatusOK, tokens.AccessToken)
		return
	}

	writeSuccess(w, http.StatusOK, tokens, nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	writeSuccess(w, http.StatusOK, principal, nil)
}

func wantsPlainText(r *http.Request) bool {
	accept := strings.ToLower(r.Header.Get("Accept"))
	return strings.Contains(accept, "text/plain") && !strings.Contains(accept, "application/json")
}
