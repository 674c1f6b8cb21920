package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-crud-api/internal/model"
)

type carService interface {
	List(ctx context.Context) ([]model.Car, error)
	Get(ctx context.Context, id string) (model.Car, error)
	Create(ctx context.Context, car model.Car) (model.Car, error)
	Put(ctx context.Context, id string, car model.Car) (model.Car, bool, error)
	Delete(ctx context.Context, id string) error
}

type CarHandler struct {
	service carService
}

func NewCarHandler(service carService) *CarHandler {
	return &CarHandler{service: service}
}

func (h *CarHandler) List(w http.ResponseWriter, r *http.Request) {
	cars, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, cars, nil)
}

func (h *CarHandler) Get(w http.ResponseWriter, r *http.Request) {
	car, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, car, nil)
}

func (h *CarHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.Car
	if err := decodeValidated(r, carCreateSchema, &payload); err != nil {
		writeError(w, err)
		return
	}

	car, err := h.service.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, car, nil)
}

func (h *CarHandler) Put(w http.ResponseWriter, r *http.Request) {
	var payload model.Car
	if err := decodeValidated(r, carUpdateSchema, &payload); err != nil {
		writeError(w, err)
		return
	}

	car, created, err := h.service.Put(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeSuccess(w, status, car, nil)
}

func (h *CarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
