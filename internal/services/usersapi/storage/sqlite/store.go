// Package sqlite provides a SQLite-backed users storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/restpanel/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/restpanel/internal/services/usersapi/storage"
	"github.com/louisbranch/restpanel/internal/services/usersapi/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists users in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite users store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// CreateUser inserts one user.
func (s *Store) CreateUser(ctx context.Context, user storage.User) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	user, err := normalizeUser(user)
	if err != nil {
		return err
	}
	createdAt := user.CreatedAt.UTC()
	updatedAt := user.UpdatedAt.UTC()
	if createdAt.IsZero() && updatedAt.IsZero() {
		createdAt = time.Now().UTC()
		updatedAt = createdAt
	} else {
		if createdAt.IsZero() {
			createdAt = updatedAt
		}
		if updatedAt.IsZero() {
			updatedAt = createdAt
		}
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO users (
		   id,
		   username,
		   email,
		   full_name,
		   password_hash,
		   created_at,
		   updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.FullName,
		user.PasswordHash,
		toMillis(createdAt),
		toMillis(updatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return userConflict(err)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser returns one user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (storage.User, error) {
	if err := s.ready(ctx); err != nil {
		return storage.User{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.User{}, fmt.Errorf("user id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, selectUserColumns+` WHERE id = ?`, id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.User{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.User{}, fmt.Errorf("get user: %w", err)
	}
	users := []storage.User{user}
	if err := s.attachStoreIDs(ctx, users); err != nil {
		return storage.User{}, err
	}
	return users[0], nil
}

// ListUsers returns one window of users and the filtered total.
func (s *Store) ListUsers(ctx context.Context, query storage.ListQuery) (storage.UserPage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.UserPage{}, err
	}
	where, tail, args, err := buildListClauses(query, storage.UserFields, userSearchColumns)
	if err != nil {
		return storage.UserPage{}, err
	}

	var total int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return storage.UserPage{}, fmt.Errorf("count users: %w", err)
	}

	rows, err := s.sqlDB.QueryContext(ctx, selectUserColumns+where+tail, pageArgs(args, query)...)
	if err != nil {
		return storage.UserPage{}, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]storage.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return storage.UserPage{}, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return storage.UserPage{}, fmt.Errorf("iterate users: %w", err)
	}
	if err := s.attachStoreIDs(ctx, users); err != nil {
		return storage.UserPage{}, err
	}
	return storage.UserPage{Users: users, Total: total}, nil
}

// UpdateUser replaces the mutable fields of one user.
func (s *Store) UpdateUser(ctx context.Context, user storage.User) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	user, err := normalizeUser(user)
	if err != nil {
		return err
	}
	updatedAt := user.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE users SET
		   username = ?,
		   email = ?,
		   full_name = ?,
		   password_hash = ?,
		   updated_at = ?
		 WHERE id = ?`,
		user.Username,
		user.Email,
		user.FullName,
		user.PasswordHash,
		toMillis(updatedAt),
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return userConflict(err)
		}
		return fmt.Errorf("update user: %w", err)
	}
	return requireAffected(result, "update user")
}

// DeleteUser removes one user and the shops it owns.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("user id is required")
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete user: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM stores WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("delete user stores: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := requireAffected(result, "delete user"); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete user: %w", err)
	}
	return nil
}

// CountUsers returns the number of stored users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var total int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}

const selectUserColumns = `SELECT id, username, email, full_name, password_hash, created_at, updated_at FROM users`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (storage.User, error) {
	var (
		user      storage.User
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.User{}, err
	}
	user.CreatedAt = fromMillis(createdAt)
	user.UpdatedAt = fromMillis(updatedAt)
	return user, nil
}

func normalizeUser(user storage.User) (storage.User, error) {
	user.ID = strings.TrimSpace(user.ID)
	user.Username = strings.TrimSpace(user.Username)
	user.Email = strings.TrimSpace(user.Email)
	user.FullName = strings.TrimSpace(user.FullName)
	if user.ID == "" {
		return storage.User{}, fmt.Errorf("user id is required")
	}
	if user.Username == "" {
		return storage.User{}, fmt.Errorf("username is required")
	}
	if user.Email == "" {
		return storage.User{}, fmt.Errorf("email is required")
	}
	if user.PasswordHash == "" {
		return storage.User{}, fmt.Errorf("password hash is required")
	}
	return user, nil
}

var userSearchColumns = []string{"username", "email", "full_name"}

// attachStoreIDs fills StoreIDs for users in one query, oldest shop first.
func (s *Store) attachStoreIDs(ctx context.Context, users []storage.User) error {
	if len(users) == 0 {
		return nil
	}
	index := make(map[string]int, len(users))
	placeholders := make([]string, len(users))
	args := make([]any, len(users))
	for i := range users {
		users[i].StoreIDs = []string{}
		index[users[i].ID] = i
		placeholders[i] = "?"
		args[i] = users[i].ID
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT user_id, id FROM stores WHERE user_id IN (`+strings.Join(placeholders, ", ")+`) ORDER BY created_at, id`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("list user stores: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var userID, shopID string
		if err := rows.Scan(&userID, &shopID); err != nil {
			return fmt.Errorf("scan user store: %w", err)
		}
		if i, ok := index[userID]; ok {
			users[i].StoreIDs = append(users[i].StoreIDs, shopID)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate user stores: %w", err)
	}
	return nil
}

// buildListClauses returns the WHERE clause with its args, and the ORDER BY
// and LIMIT tail whose two args pageArgs appends.
func buildListClauses(query storage.ListQuery, fields storage.Fields, searchColumns []string) (string, string, []any, error) {
	var (
		clauses []string
		args    []any
	)
	if search := strings.TrimSpace(query.Search); search != "" && len(searchColumns) > 0 {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		matches := make([]string, len(searchColumns))
		for i, column := range searchColumns {
			matches[i] = "lower(" + column + `) LIKE ? ESCAPE '\'`
			args = append(args, pattern)
		}
		clauses = append(clauses, "("+strings.Join(matches, " OR ")+")")
	}

	filterFields := make([]string, 0, len(query.Filters))
	for field := range query.Filters {
		filterFields = append(filterFields, field)
	}
	sort.Strings(filterFields)
	for _, field := range filterFields {
		if !fields.IsFilterable(field) {
			return "", "", nil, fmt.Errorf("unsupported filter field %q", field)
		}
		values := query.Filters[field]
		if len(values) == 0 {
			continue
		}
		placeholders := make([]string, len(values))
		for i, value := range values {
			placeholders[i] = "?"
			args = append(args, value)
		}
		clauses = append(clauses, field+" IN ("+strings.Join(placeholders, ", ")+")")
	}

	sortField := strings.TrimSpace(query.Sort)
	if sortField == "" {
		sortField = "id"
	}
	if !fields.IsSortable(sortField) {
		return "", "", nil, fmt.Errorf("unsupported sort field %q", sortField)
	}
	direction := "ASC"
	if query.Desc {
		direction = "DESC"
	}
	tail := " ORDER BY " + sortField + " " + direction
	if sortField != "id" {
		tail += ", id ASC"
	}
	tail += " LIMIT ? OFFSET ?"

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}
	return where, tail, args, nil
}

func pageArgs(args []any, query storage.ListQuery) []any {
	limit := query.Limit
	if limit <= 0 {
		limit = -1
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}
	return append(append([]any{}, args...), limit, offset)
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

func requireAffected(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

// userConflict names the users index a unique violation came from.
func userConflict(err error) error {
	if strings.Contains(strings.ToLower(err.Error()), "users.username") {
		return storage.ErrUsernameTaken
	}
	return storage.ErrAlreadyExists
}

var _ storage.Store = (*Store)(nil)
