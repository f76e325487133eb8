package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/vocabot/pkg/models"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts the user unless it already exists. It reports whether a row was inserted.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (bool, error) {
	query := r.db.Rebind(`
		INSERT INTO users (telegram_id, username, first_name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (telegram_id) DO NOTHING
	`)
	result, err := r.db.ExecContext(ctx, query, user.ID, user.Username, user.FirstName, user.CreatedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to create user: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to create user: %w", err)
	}
	return n > 0, nil
}

// GetByTelegramID returns a user without its queries. The error wraps
// sql.ErrNoRows when the user does not exist.
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	query := r.db.Rebind("SELECT telegram_id, username, first_name, created_at FROM users WHERE telegram_id = ?")
	if err := r.db.GetContext(ctx, &user, query, telegramID); err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return &user, nil
}

// GetAllIDs returns the Telegram IDs of all users in ascending order
func (r *UserRepository) GetAllIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, "SELECT telegram_id FROM users ORDER BY telegram_id"); err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return ids, nil
}

// Count returns the number of users
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM users"); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
