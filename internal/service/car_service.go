package service

import (
	"context"
	"log/slog"
	"strings"

	"go-crud-api/internal/model"
	"go-crud-api/pkg/apierror"
)

type carStore interface {
	FindAll(ctx context.Context) ([]model.Car, error)
	FindByID(ctx context.Context, id string) (model.Car, error)
	Save(ctx context.Context, car model.Car) (bool, error)
	Delete(ctx context.Context, id string) error
}

type CarService struct {
	store carStore
}

func NewCarService(store carStore) *CarService {
	return &CarService{store: store}
}

func (s *CarService) List(ctx context.Context) ([]model.Car, error) {
	return s.store.FindAll(ctx)
}

func (s *CarService) Get(ctx context.Context, id string) (model.Car, error) {
	return s.store.FindByID(ctx, strings.TrimSpace(id))
}

func (s *CarService) Create(ctx context.Context, car model.Car) (model.Car, error) {
	car.ID = strings.TrimSpace(car.ID)
	car.Name = strings.TrimSpace(car.Name)
	if car.ID == "" {
		return model.Car{}, apierror.BadRequest("id is required", "id")
	}

	if _, err := s.store.Save(ctx, car); err != nil {
		return model.Car{}, err
	}

	slog.Info("car added", "id", car.ID)
	return car, nil
}

func (s *CarService) Put(ctx context.Context, id string, car model.Car) (model.Car, bool, error) {
	car.ID = strings.TrimSpace(id)
	car.Name = strings.TrimSpace(car.Name)
	if car.ID == "" {
		return model.Car{}, false, apierror.BadRequest("id is required", "id")
	}

	created, err := s.store.Save(ctx, car)
	if err != nil {
		return model.Car{}, false, err
	}

	slog.Info("car saved", "id", car.ID, "created", created)
	return car, created, nil
}

func (s *CarService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("car deleted", "id", id)
	return nil
}
