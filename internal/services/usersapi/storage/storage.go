// Package storage defines persistence contracts for the users API.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a record with the same id or unique key exists.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrUsernameTaken is the ErrAlreadyExists raised by the username index.
	ErrUsernameTaken = fmt.Errorf("username taken: %w", ErrAlreadyExists)
	// ErrUnknownOwner indicates a shop whose user_id names no user.
	ErrUnknownOwner = errors.New("store owner does not exist")
)

// User is one stored user. PasswordHash never leaves the service.
type User struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	PasswordHash string
	// StoreIDs lists the shops the user owns. Reads fill it; writes ignore it.
	StoreIDs  []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Shop is one entry of the stores collection, owned by a user.
type Shop struct {
	ID        string
	Name      string
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Fields lists the columns of a collection that lists may sort and filter by.
type Fields struct {
	Sortable   []string
	Filterable []string
}

// UserFields are the list columns of the users collection.
var UserFields = Fields{
	Sortable:   []string{"id", "username", "email", "full_name", "created_at", "updated_at"},
	Filterable: []string{"id", "username", "email", "full_name"},
}

// ShopFields are the list columns of the stores collection.
var ShopFields = Fields{
	Sortable:   []string{"id", "name", "user_id", "created_at", "updated_at"},
	Filterable: []string{"id", "name", "user_id"},
}

// IsSortable reports whether field can be used in ListQuery.Sort.
func (f Fields) IsSortable(field string) bool {
	return contains(f.Sortable, field)
}

// IsFilterable reports whether field can be used in ListQuery.Filters.
func (f Fields) IsFilterable(field string) bool {
	return contains(f.Filterable, field)
}

// ListQuery selects a window of a collection.
type ListQuery struct {
	// Sort is one of the collection's sortable fields; empty sorts by id.
	Sort string
	Desc bool
	// Offset skips rows; Limit caps them when positive.
	Offset int
	Limit  int
	// Search matches the collection's text columns case-insensitively.
	Search string
	// Filters hold exact matches keyed by filterable fields. Multiple values
	// for one field match any of them.
	Filters map[string][]string
}

// UserPage is a window of users and the size of the filtered set.
type UserPage struct {
	Users []User
	Total int
}

// ShopPage is a window of shops and the size of the filtered set.
type ShopPage struct {
	Shops []Shop
	Total int
}

// UserStore persists users.
type UserStore interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	ListUsers(ctx context.Context, query ListQuery) (UserPage, error)
	UpdateUser(ctx context.Context, user User) error
	// DeleteUser also removes the shops the user owns.
	DeleteUser(ctx context.Context, id string) error
	CountUsers(ctx context.Context) (int, error)
}

// ShopStore persists the stores collection.
type ShopStore interface {
	CreateShop(ctx context.Context, shop Shop) error
	GetShop(ctx context.Context, id string) (Shop, error)
	ListShops(ctx context.Context, query ListQuery) (ShopPage, error)
	UpdateShop(ctx context.Context, shop Shop) error
	DeleteShop(ctx context.Context, id string) error
}

// Store is a composite interface for users API storage concerns.
type Store interface {
	UserStore
	ShopStore
	Close() error
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
