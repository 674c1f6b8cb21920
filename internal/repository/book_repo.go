package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-crud-api/internal/model"
)

type BookRepository struct {
	pool *pgxpool.Pool
}

func NewBookRepository(pool *pgxpool.Pool) *BookRepository {
	return &BookRepository{pool: pool}
}

func (r *BookRepository) FindAll(ctx context.Context) ([]model.Book, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, title, author, publish_year FROM books ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := make([]model.Book, 0)
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.PublishYear); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (r *BookRepository) FindByID(ctx context.Context, id string) (model.Book, error) {
	var b model.Book
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, author, publish_year FROM books WHERE id = $1`, id).
		Scan(&b.ID, &b.Title, &b.Author, &b.PublishYear)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Book{}, model.ErrBookNotFound
	}
	if err != nil {
		return model.Book{}, fmt.Errorf("find book by id: %w", err)
	}
	return b, nil
}

// Save upserts by id and reports whether a new row was created.
func (r *BookRepository) Save(ctx context.Context, b model.Book) (bool, error) {
	var inserted bool
	err := r.pool.QueryRow(ctx,
		`INSERT INTO books (id, title, author, publish_year)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET title = EXCLUDED.title, author = EXCLUDED.author, publish_year = EXCLUDED.publish_year
		 RETURNING (xmax = 0)`,
		b.ID, b.Title, b.Author, b.PublishYear).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("save book: %w", err)
	}
	return inserted, nil
}

func (r *BookRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}
