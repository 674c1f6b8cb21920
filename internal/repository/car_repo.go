package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-crud-api/internal/model"
)

type CarRepository struct {
	pool *pgxpool.Pool
}

func NewCarRepository(pool *pgxpool.Pool) *CarRepository {
	return &CarRepository{pool: pool}
}

func (r *CarRepository) FindAll(ctx context.Context) ([]model.Car, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM cars ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list cars: %w", err)
	}
	defer rows.Close()

	cars := make([]model.Car, 0)
	for rows.Next() {
		var c model.Car
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan car: %w", err)
		}
		cars = append(cars, c)
	}
	return cars, rows.Err()
}

func (r *CarRepository) FindByID(ctx context.Context, id string) (model.Car, error) {
	var c model.Car
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM cars WHERE id = $1`, id).Scan(&c.ID, &c.Name)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Car{}, model.ErrCarNotFound
	}
	if err != nil {
		return model.Car{}, fmt.Errorf("find car by id: %w", err)
	}
	return c, nil
}

func (r *CarRepository) Save(ctx context.Context, c model.Car) (bool, error) {
	var inserted bool
	err := r.pool.QueryRow(ctx,
		`INSERT INTO cars (id, name) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
		 RETURNING (xmax = 0)`,
		c.ID, c.Name).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("save car: %w", err)
	}
	return inserted, nil
}

func (r *CarRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cars WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete car: %w", err)
	}
	return nil
}
