package service

import (
	"context"
	"log/slog"
	"strings"

	"go-crud-api/internal/model"
	"go-crud-api/pkg/apierror"
)

type bookStore interface {
	FindAll(ctx context.Context) ([]model.Book, error)
	FindByID(ctx context.Context, id string) (model.Book, error)
	Save(ctx context.Context, book model.Book) (bool, error)
	Delete(ctx context.Context, id string) error
}

type BookService struct {
	store bookStore
}

func NewBookService(store bookStore) *BookService {
	return &BookService{store: store}
}

func (s *BookService) List(ctx context.Context) ([]model.Book, error) {
	return s.store.FindAll(ctx)
}

func (s *BookService) Get(ctx context.Context, id string) (model.Book, error) {
	return s.store.FindByID(ctx, strings.TrimSpace(id))
}

func (s *BookService) Create(ctx context.Context, book model.Book) (model.Book, error) {
	book = normalizeBook(book)
	if book.ID == "" {
		return model.Book{}, apierror.BadRequest("id is required", "id")
	}

	if _, err := s.store.Save(ctx, book); err != nil {
		return model.Book{}, err
	}

	slog.Info("book added", "id", book.ID)
	return book, nil
}

// Put replaces the book stored under id, creating it when absent. The path id
// wins over any id in the body.
func (s *BookService) Put(ctx context.Context, id string, book model.Book) (model.Book, bool, error) {
	book.ID = id
	book = normalizeBook(book)
	if book.ID == "" {
		return model.Book{}, false, apierror.BadRequest("id is required", "id")
	}

	created, err := s.store.Save(ctx, book)
	if err != nil {
		return model.Book{}, false, err
	}

	if created {
		slog.Info("book added", "id", book.ID)
	} else {
		slog.Info("book updated", "id", book.ID)
	}
	return book, created, nil
}

func (s *BookService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("book deleted", "id", id)
	return nil
}

func normalizeBook(book model.Book) model.Book {
	book.ID = strings.TrimSpace(book.ID)
	book.Title = strings.TrimSpace(book.Title)
	book.Author = strings.TrimSpace(book.Author)
	return book
}
