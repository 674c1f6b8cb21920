package repository

import (
	"context"
	"sort"
	"sync"

	"go-crud-api/internal/model"
)

// memoryTable is an id-keyed map shared by the in-memory book and car stores.
type memoryTable[T any] struct {
	mu       sync.RWMutex
	rows     map[string]T
	notFound error
}

func newMemoryTable[T any](notFound error) *memoryTable[T] {
	return &memoryTable[T]{rows: map[string]T{}, notFound: notFound}
}

func (t *memoryTable[T]) all() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]string, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.rows[id])
	}
	return out
}

func (t *memoryTable[T]) get(id string) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, t.notFound
	}
	return row, nil
}

func (t *memoryTable[T]) put(id string, row T) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, exists := t.rows[id]
	t.rows[id] = row
	return !exists
}

func (t *memoryTable[T]) remove(id string) {
	t.mu.Lock()
	delete(t.rows, id)
	t.mu.Unlock()
}

type MemoryBookRepository struct {
	table *memoryTable[model.Book]
}

func NewMemoryBookRepository() *MemoryBookRepository {
	return &MemoryBookRepository{table: newMemoryTable[model.Book](model.ErrBookNotFound)}
}

func (r *MemoryBookRepository) FindAll(context.Context) ([]model.Book, error) {
	return r.table.all(), nil
}

func (r *MemoryBookRepository) FindByID(_ context.Context, id string) (model.Book, error) {
	return r.table.get(id)
}

func (r *MemoryBookRepository) Save(_ context.Context, b model.Book) (bool, error) {
	return r.table.put(b.ID, b), nil
}

func (r *MemoryBookRepository) Delete(_ context.Context, id string) error {
	r.table.remove(id)
	return nil
}

type MemoryCarRepository struct {
	table *memoryTable[model.Car]
}

func NewMemoryCarRepository() *MemoryCarRepository {
	return &MemoryCarRepository{table: newMemoryTable[model.Car](model.ErrCarNotFound)}
}

func (r *MemoryCarRepository) FindAll(context.Context) ([]model.Car, error) {
	return r.table.all(), nil
}

func (r *MemoryCarRepository) FindByID(_ context.Context, id string) (model.Car, error) {
	return r.table.get(id)
}

func (r *MemoryCarRepository) Save(_ context.Context, c model.Car) (bool, error) {
	return r.table.put(c.ID, c), nil
}

func (r *MemoryCarRepository) Delete(_ context.Context, id string) error {
	r.table.remove(id)
	return nil
}
