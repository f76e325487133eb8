package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/vocabot/pkg/models"
)

// QueryRepository handles database operations for user queries
type QueryRepository struct {
	db *sqlx.DB
}

// NewQueryRepository creates a new repository instance
func NewQueryRepository(db *sqlx.DB) *QueryRepository {
	return &QueryRepository{db: db}
}

// Create appends a query to the user's history
func (r *QueryRepository) Create(ctx context.Context, telegramID int64, q models.Query) error {
	query := r.db.Rebind(`
		INSERT INTO queries (id, telegram_id, word, direction, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if _, err := r.db.ExecContext(ctx, query, q.ID, telegramID, q.Word, q.Direction, q.Timestamp.UTC()); err != nil {
		return fmt.Errorf("failed to create query: %w", err)
	}
	return nil
}

// ListByUser returns the user's queries, newest first. A limit <= 0 returns all of them.
func (r *QueryRepository) ListByUser(ctx context.Context, telegramID int64, limit int) ([]models.Query, error) {
	query := "SELECT id, word, direction, created_at FROM queries WHERE telegram_id = ? ORDER BY seq DESC"
	args := []interface{}{telegramID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var queries []models.Query
	if err := r.db.SelectContext(ctx, &queries, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list queries: %w", err)
	}
	for i := range queries {
		queries[i].Timestamp = queries[i].Timestamp.UTC()
	}
	return queries, nil
}
