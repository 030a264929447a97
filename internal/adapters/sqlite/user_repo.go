package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/levelup/internal/ports/secondary"
)

// UserRepository implements secondary.UserRepository with SQLite.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create persists a new user. Credentials are managed elsewhere, so the
// password hash is left empty.
func (r *UserRepository) Create(ctx context.Context, user *secondary.UserRecord) error {
	displayName := user.DisplayName
	if displayName == "" {
		displayName = user.Username
	}

	result, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT INTO users (username, password_hash, display_name) VALUES (?, '', ?)",
		user.Username, displayName,
	)
	if err != nil {
		return wrapInsertErr("user", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read user id: %w", err)
	}
	user.ID = id
	user.DisplayName = displayName

	return nil
}

// GetByID retrieves a user by its ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*secondary.UserRecord, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*secondary.UserRecord, error) {
	return r.getOne(ctx, "username = ?", username)
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (*secondary.UserRecord, error) {
	var createdAt sql.NullTime

	record := &secondary.UserRecord{}
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT id, username, display_name, created_at FROM users WHERE "+where,
		arg,
	).Scan(&record.ID, &record.Username, &record.DisplayName, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %v: %w", arg, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	record.CreatedAt = formatTime(createdAt)
	return record, nil
}

var _ secondary.UserRepository = (*UserRepository)(nil)
