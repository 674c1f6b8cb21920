package handler

import (
	"context"
	"net/http"
)

type externalCaller interface {
	Call(ctx context.Context) (string, error)
}

type ExternalHandler struct {
	service externalCaller
}

func NewExternalHandler(service externalCaller) *ExternalHandler {
	return &ExternalHandler{service: service}
}

func (h *ExternalHandler) Call(w http.ResponseWriter, r *http.Request) {
	body, err := h.service.Call(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeText(w, http.StatusOK, body)
}
