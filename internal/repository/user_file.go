package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"go-crud-api/internal/model"
)

// FileUserRepository serves identities from a YAML or JSON users file. The file
// is read once; a missing or empty file is seeded with a default admin.
type FileUserRepository struct {
	path  string
	users *MemoryUserRepository
}

func NewFileUserRepository(path string, defaultAdmin SeedUser, cost int) (*FileUserRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("users file path is required")
	}

	repo := &FileUserRepository{path: path, users: NewMemoryUserRepository()}
	if err := repo.load(defaultAdmin, cost); err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *FileUserRepository) FindByUsername(ctx context.Context, username string) (model.Identity, error) {
	return r.users.FindByUsername(ctx, username)
}

func (r *FileUserRepository) load(defaultAdmin SeedUser, cost int) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}

	data, err := os.ReadFile(r.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read users file: %w", err)
	}

	identities, err := r.decode(data)
	if err != nil {
		return err
	}

	if len(identities) == 0 {
		admin, err := HashSeed(defaultAdmin, cost)
		if err != nil {
			return err
		}
		identities = []model.Identity{admin}
		if err := r.save(identities); err != nil {
			return err
		}
	}

	for _, identity := range identities {
		if strings.TrimSpace(identity.Username) == "" || identity.PasswordHash == "" {
			return fmt.Errorf("users file %s: entry without username or password_hash", r.path)
		}
		identity.Role = model.NormalizeRole(identity.Role)
		r.users.Put(identity)
	}

	return nil
}

func (r *FileUserRepository) decode(data []byte) ([]model.Identity, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}

	var identities []model.Identity
	var err error
	if r.isJSON() {
		err = json.Unmarshal(data, &identities)
	} else {
		err = yaml.Unmarshal(data, &identities)
	}
	if err != nil {
		return nil, fmt.Errorf("parse users file %s: %w", r.path, err)
	}

	return identities, nil
}

func (r *FileUserRepository) save(identities []model.Identity) error {
	var (
		data []byte
		err  error
	)
	if r.isJSON() {
		data, err = json.MarshalIndent(identities, "", "  ")
	} else {
		data, err = yaml.Marshal(identities)
	}
	if err != nil {
		return err
	}

	return os.WriteFile(r.path, data, 0o600)
}

func (r *FileUserRepository) isJSON() bool {
	return strings.EqualFold(filepath.Ext(r.path), ".json")
}
