// Package activity keeps the durable record of who uses the bot and what
// they looked up. Two backends exist: a JSON file and an SQL database.
package activity

import (
	"context"
	"errors"
	"strings"

	"github.com/example/vocabot/pkg/models"
)

var (
	// ErrNotFound is returned for unknown users
	ErrNotFound = errors.New("user not found")
	// ErrEmptyWord is returned when a query has no text after trimming
	ErrEmptyWord = errors.New("empty word")
)

// Store maps Telegram user IDs to profiles and query history.
// Implementations are safe for concurrent use.
type Store interface {
	// RegisterUser stores the profile if the user is unknown and reports
	// whether it was created. Existing profiles and history are left untouched.
	RegisterUser(ctx context.Context, user models.User) (bool, error)
	// LogQuery registers the user if needed and appends a query record.
	LogQuery(ctx context.Context, user models.User, word, direction string) (models.Query, error)
	// Users returns every known user ID in ascending order.
	Users(ctx context.Context) ([]int64, error)
	// User returns the profile with its full history in chronological order.
	User(ctx context.Context, id int64) (*models.User, error)
	// History returns up to limit queries, newest first. limit <= 0 returns all.
	History(ctx context.Context, id int64, limit int) ([]models.Query, error)
	Close() error
}

func normalizeWord(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}
