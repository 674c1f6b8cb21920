package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"go-crud-api/internal/model"
)

// SeedUser is a plain-text credential hashed once at startup.
type SeedUser struct {
	Username string
	Password string
	Role     string
}

// MemoryUserRepository keeps identities in process memory, keyed by lower-cased username.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]model.Identity
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: map[string]model.Identity{}}
}

// NewSeededMemoryUserRepository hashes every seed with the given bcrypt cost.
func NewSeededMemoryUserRepository(cost int, seeds ...SeedUser) (*MemoryUserRepository, error) {
	repo := NewMemoryUserRepository()
	for _, seed := range seeds {
		identity, err := HashSeed(seed, cost)
		if err != nil {
			return nil, err
		}
		repo.Put(identity)
	}

	return repo, nil
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (model.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identity, ok := r.users[usernameKey(username)]
	if !ok {
		return model.Identity{}, model.ErrUserNotFound
	}

	return identity, nil
}

func (r *MemoryUserRepository) Put(identity model.Identity) {
	r.mu.Lock()
	r.users[usernameKey(identity.Username)] = identity
	r.mu.Unlock()
}

func (r *MemoryUserRepository) Delete(username string) {
	r.mu.Lock()
	delete(r.users, usernameKey(username))
	r.mu.Unlock()
}

func HashSeed(seed SeedUser, cost int) (model.Identity, error) {
	if strings.TrimSpace(seed.Username) == "" || seed.Password == "" {
		return model.Identity{}, fmt.Errorf("seed user: username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), cost)
	if err != nil {
		return model.Identity{}, fmt.Errorf("hash password for %s: %w", seed.Username, err)
	}

	return model.Identity{
		Username:     strings.TrimSpace(seed.Username),
		PasswordHash: string(hash),
		Role:         model.NormalizeRole(seed.Role),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func usernameKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
