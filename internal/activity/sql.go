package activity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/example/vocabot/internal/database"
	"github.com/example/vocabot/pkg/models"
)

// SQLStore keeps activity in the users and queries tables
type SQLStore struct {
	db      *sqlx.DB
	users   *database.UserRepository
	queries *database.QueryRepository
	clock   clockwork.Clock
	log     zerolog.Logger

	// serializes register-then-append so a user row always precedes its queries
	mu sync.Mutex
}

// NewSQLStore wraps an open database
func NewSQLStore(db *sqlx.DB, clock clockwork.Clock, log zerolog.Logger) *SQLStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SQLStore{
		db:      db,
		users:   database.NewUserRepository(db),
		queries: database.NewQueryRepository(db),
		clock:   clock,
		log:     log.With().Str("component", "activity").Logger(),
	}
}

func (s *SQLStore) register(ctx context.Context, user models.User) (bool, error) {
	profile := user
	profile.CreatedAt = s.clock.Now().UTC()
	return s.users.Create(ctx, &profile)
}

func (s *SQLStore) RegisterUser(ctx context.Context, user models.User) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.register(ctx, user)
}

func (s *SQLStore) LogQuery(ctx context.Context, user models.User, word, direction string) (models.Query, error) {
	word = normalizeWord(word)
	if word == "" {
		return models.Query{}, ErrEmptyWord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.register(ctx, user); err != nil {
		return models.Query{}, err
	}
	q := models.Query{
		ID:        uuid.NewString(),
		Word:      word,
		Direction: direction,
		Timestamp: s.clock.Now().UTC(),
	}
	if err := s.queries.Create(ctx, user.ID, q); err != nil {
		return models.Query{}, err
	}
	return q, nil
}

func (s *SQLStore) Users(ctx context.Context) ([]int64, error) {
	ids, err := s.users.GetAllIDs(ctx)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

func (s *SQLStore) User(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.users.GetByTelegramID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	history, err := s.queries.ListByUser(ctx, id, 0)
	if err != nil {
		return nil, err
	}
	u.Queries = make([]models.Query, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		u.Queries = append(u.Queries, history[i])
	}
	return u, nil
}

func (s *SQLStore) History(ctx context.Context, id int64, limit int) ([]models.Query, error) {
	if _, err := s.users.GetByTelegramID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	history, err := s.queries.ListByUser(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []models.Query{}
	}
	return history, nil
}

func (s *SQLStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
