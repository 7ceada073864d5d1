package usersapi

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/louisbranch/restpanel/internal/platform/id"
	"github.com/louisbranch/restpanel/internal/services/usersapi/storage"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// SeedUser is one fixture user. Password is stored hashed. Stores names the
// shops created for the user.
type SeedUser struct {
	ID       string   `yaml:"id"`
	Username string   `yaml:"username"`
	Email    string   `yaml:"email"`
	FullName string   `yaml:"full_name"`
	Password string   `yaml:"password"`
	Stores   []string `yaml:"stores"`
}

type seedFile struct {
	Users []SeedUser `yaml:"users"`
}

// LoadSeedFile reads fixture users from a YAML file shaped as
//
//	users:
//	  - username: ada
//	    email: ada@example.com
//	    full_name: Ada Lovelace
//	    password: analytical
//	    stores: [Difference Engines]
func LoadSeedFile(path string) ([]SeedUser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes and validates seed YAML.
func ParseSeed(data []byte) ([]SeedUser, error) {
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	seen := make(map[string]struct{}, len(file.Users))
	for i, user := range file.Users {
		username := strings.TrimSpace(user.Username)
		if username == "" {
			return nil, fmt.Errorf("seed user %d: username is required", i)
		}
		if strings.TrimSpace(user.Email) == "" {
			return nil, fmt.Errorf("seed user %q: email is required", username)
		}
		if user.Password == "" {
			return nil, fmt.Errorf("seed user %q: password is required", username)
		}
		for _, name := range user.Stores {
			if strings.TrimSpace(name) == "" {
				return nil, fmt.Errorf("seed user %q: store name is required", username)
			}
		}
		if _, ok := seen[username]; ok {
			return nil, fmt.Errorf("seed user %q: duplicate username", username)
		}
		seen[username] = struct{}{}
	}
	return file.Users, nil
}

// Seed inserts users and their shops when the store has no users and returns
// how many users were added.
func Seed(ctx context.Context, store storage.Store, users []SeedUser, bcryptCost int) (int, error) {
	if store == nil {
		return 0, fmt.Errorf("users store is required")
	}
	count, err := store.CountUsers(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 || len(users) == 0 {
		return 0, nil
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}

	now := time.Now().UTC()
	for i, seed := range users {
		userID := strings.TrimSpace(seed.ID)
		if userID == "" {
			userID, err = id.NewID()
			if err != nil {
				return i, err
			}
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcryptCost)
		if err != nil {
			return i, fmt.Errorf("hash seed password for %q: %w", seed.Username, err)
		}
		user := storage.User{
			ID:           userID,
			Username:     seed.Username,
			Email:        seed.Email,
			FullName:     seed.FullName,
			PasswordHash: string(hash),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := store.CreateUser(ctx, user); err != nil {
			return i, fmt.Errorf("seed user %q: %w", seed.Username, err)
		}
		for _, name := range seed.Stores {
			shopID, err := id.NewID()
			if err != nil {
				return i, err
			}
			shop := storage.Shop{
				ID:        shopID,
				Name:      strings.TrimSpace(name),
				UserID:    userID,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := store.CreateShop(ctx, shop); err != nil {
				return i, fmt.Errorf("seed store %q for %q: %w", name, seed.Username, err)
			}
		}
	}
	return len(users), nil
}
