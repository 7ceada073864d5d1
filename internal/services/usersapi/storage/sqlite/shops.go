package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/restpanel/internal/services/usersapi/storage"
)

const selectShopColumns = `SELECT id, name, user_id, created_at, updated_at FROM stores`

var shopSearchColumns = []string{"name"}

// CreateShop inserts one shop. The owning user must exist.
func (s *Store) CreateShop(ctx context.Context, shop storage.Shop) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	shop, err := normalizeShop(shop)
	if err != nil {
		return err
	}
	createdAt := shop.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := shop.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create store: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := requireUser(ctx, tx, shop.UserID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO stores (id, name, user_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		shop.ID,
		shop.Name,
		shop.UserID,
		toMillis(createdAt),
		toMillis(updatedAt),
	); err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create store: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create store: %w", err)
	}
	return nil
}

// GetShop returns one shop by ID.
func (s *Store) GetShop(ctx context.Context, id string) (storage.Shop, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Shop{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.Shop{}, fmt.Errorf("store id is required")
	}
	shop, err := scanShop(s.sqlDB.QueryRowContext(ctx, selectShopColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Shop{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Shop{}, fmt.Errorf("get store: %w", err)
	}
	return shop, nil
}

// ListShops returns one window of shops and the filtered total.
func (s *Store) ListShops(ctx context.Context, query storage.ListQuery) (storage.ShopPage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.ShopPage{}, err
	}
	where, tail, args, err := buildListClauses(query, storage.ShopFields, shopSearchColumns)
	if err != nil {
		return storage.ShopPage{}, err
	}

	var total int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM stores`+where, args...).Scan(&total); err != nil {
		return storage.ShopPage{}, fmt.Errorf("count stores: %w", err)
	}
	rows, err := s.sqlDB.QueryContext(ctx, selectShopColumns+where+tail, pageArgs(args, query)...)
	if err != nil {
		return storage.ShopPage{}, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	shops := make([]storage.Shop, 0)
	for rows.Next() {
		shop, err := scanShop(rows)
		if err != nil {
			return storage.ShopPage{}, fmt.Errorf("scan store: %w", err)
		}
		shops = append(shops, shop)
	}
	if err := rows.Err(); err != nil {
		return storage.ShopPage{}, fmt.Errorf("iterate stores: %w", err)
	}
	return storage.ShopPage{Shops: shops, Total: total}, nil
}

// UpdateShop replaces the name and owner of one shop.
func (s *Store) UpdateShop(ctx context.Context, shop storage.Shop) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	shop, err := normalizeShop(shop)
	if err != nil {
		return err
	}
	updatedAt := shop.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update store: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := requireUser(ctx, tx, shop.UserID); err != nil {
		return err
	}
	result, err := tx.ExecContext(
		ctx,
		`UPDATE stores SET name = ?, user_id = ?, updated_at = ? WHERE id = ?`,
		shop.Name,
		shop.UserID,
		toMillis(updatedAt),
		shop.ID,
	)
	if err != nil {
		return fmt.Errorf("update store: %w", err)
	}
	if err := requireAffected(result, "update store"); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update store: %w", err)
	}
	return nil
}

// DeleteShop removes one shop by ID.
func (s *Store) DeleteShop(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("store id is required")
	}
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM stores WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete store: %w", err)
	}
	return requireAffected(result, "delete store")
}

func requireUser(ctx context.Context, tx *sql.Tx, userID string) error {
	var found int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, userID).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrUnknownOwner
	}
	if err != nil {
		return fmt.Errorf("check store owner: %w", err)
	}
	return nil
}

func scanShop(row rowScanner) (storage.Shop, error) {
	var (
		shop      storage.Shop
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&shop.ID, &shop.Name, &shop.UserID, &createdAt, &updatedAt); err != nil {
		return storage.Shop{}, err
	}
	shop.CreatedAt = fromMillis(createdAt)
	shop.UpdatedAt = fromMillis(updatedAt)
	return shop, nil
}

func normalizeShop(shop storage.Shop) (storage.Shop, error) {
	shop.ID = strings.TrimSpace(shop.ID)
	shop.Name = strings.TrimSpace(shop.Name)
	shop.UserID = strings.TrimSpace(shop.UserID)
	if shop.ID == "" {
		return storage.Shop{}, fmt.Errorf("store id is required")
	}
	if shop.Name == "" {
		return storage.Shop{}, fmt.Errorf("store name is required")
	}
	if shop.UserID == "" {
		return storage.Shop{}, fmt.Errorf("store user id is required")
	}
	return shop, nil
}
