package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-crud-api/internal/model"
)

type bookService interface {
	List(ctx context.Context) ([]model.Book, error)
	Get(ctx context.Context, id string) (model.Book, error)
	Create(ctx context.Context, book model.Book) (model.Book, error)
	Put(ctx context.Context, id string, book model.Book) (model.Book, bool, error)
	Delete(ctx context.Context, id string) error
}

type BookHandler struct {
	service bookService
}

func NewBookHandler(service bookService) *BookHandler {
	return &BookHandler{service: service}
}

func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, books, nil)
}

func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	book, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, book, nil)
}

func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.Book
	if err := decodeValidated(r, bookCreateSchema, &payload); err != nil {
		writeError(w, err)
		return
	}

	book, err := h.service.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, book, nil)
}

func (h *BookHandler) Put(w http.ResponseWriter, r *http.Request) {
	var payload model.Book
	if err := decodeValidated(r, bookUpdateSchema, &payload); err != nil {
		writeError(w, err)
		return
	}

	book, created, err := h.service.Put(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeSuccess(w, status, book, nil)
}

func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
