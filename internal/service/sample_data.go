package service

import (
	"context"
	"fmt"
	"log/slog"

	"go-crud-api/internal/model"
)

var sampleBooks = []model.Book{
	{ID: "1", Title: "Clean Code", Author: "Robert C. Martin", PublishYear: 2008},
	{ID: "2", Title: "1984", Author: "George Orwell", PublishYear: 1949},
	{ID: "3", Title: "Effective Java", Author: "Joshua Bloch", PublishYear: 2018},
	{ID: "4", Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", PublishYear: 1925},
	{ID: "5", Title: "Refactoring", Author: "Martin Fowler", PublishYear: 1999},
	{ID: "6", Title: "To Kill a Mockingbird", Author: "Harper Lee", PublishYear: 1960},
	{ID: "7", Title: "The Pragmatic Programmer", Author: "Andrew Hunt, David Thomas", PublishYear: 1999},
}

var sampleCars = []model.Car{
	{ID: "1", Name: "Audi A4"},
	{ID: "2", Name: "BMW M5"},
	{ID: "3", Name: "Kia XCEED"},
	{ID: "4", Name: "Mazda 6"},
	{ID: "5", Name: "Mercedes Benz CLX"},
	{ID: "6", Name: "Skoda Octavia"},
}

// SeedSampleData stores the demo catalogue, overwriting rows with the same ids.
func SeedSampleData(ctx context.Context, books bookStore, cars carStore) error {
	for _, book := range sampleBooks {
		if _, err := books.Save(ctx, book); err != nil {
			return fmt.Errorf("seed book %s: %w", book.ID, err)
		}
	}
	for _, car := range sampleCars {
		if _, err := cars.Save(ctx, car); err != nil {
			return fmt.Errorf("seed car %s: %w", car.ID, err)
		}
	}

	slog.Info("sample data seeded", "books", len(sampleBooks), "cars", len(sampleCars))
	return nil
}
