package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/example/vocabot/pkg/models"
)

// FileStore keeps all activity in a single JSON document:
//
//	{"users": {"<id>": {"username", "first_name", "created_at", "queries": [...]}}}
//
// The document is loaded once and every mutation rewrites the file
// atomically while holding the store mutex.
type FileStore struct {
	path  string
	clock clockwork.Clock
	log   zerolog.Logger

	mu     sync.Mutex
	users  map[int64]*models.User
	closed bool
}

type document struct {
	Users map[string]*models.User `json:"users"`
}

// OpenFile loads or creates the tracking file at path
func OpenFile(path string, clock clockwork.Clock, log zerolog.Logger) (*FileStore, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s := &FileStore{
		path:  path,
		clock: clock,
		log:   log.With().Str("component", "activity").Logger(),
		users: make(map[int64]*models.User),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create tracking directory: %w", err)
			}
		}
		if err := s.saveLocked(); err != nil {
			return nil, err
		}
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read tracking file: %w", err)
	}

	migrated, err := s.decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tracking file %s: %w", path, err)
	}
	if migrated {
		s.log.Info().Int("users", len(s.users)).Msg("migrated legacy tracking file")
		if err := s.saveLocked(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// decode fills s.users from data. It reports true when data used the
// legacy {"users": ["<id>", ...]} layout.
func (s *FileStore) decode(data []byte) (bool, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}

	var raw struct {
		Users json.RawMessage `json:"users"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return false, err
	}
	trimmed := bytes.TrimSpace(raw.Users)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return false, nil
	}

	if trimmed[0] == '[' {
		var ids []json.Number
		if err := json.Unmarshal(trimmed, &ids); err != nil {
			// legacy files stored ids as strings
			var sids []string
			if err := json.Unmarshal(trimmed, &sids); err != nil {
				return false, err
			}
			for _, sid := range sids {
				ids = append(ids, json.Number(sid))
			}
		}
		now := s.clock.Now().UTC()
		for _, n := range ids {
			id, err := strconv.ParseInt(n.String(), 10, 64)
			if err != nil {
				s.log.Warn().Str("id", n.String()).Msg("skipping invalid legacy user id")
				continue
			}
			if _, ok := s.users[id]; !ok {
				s.users[id] = &models.User{ID: id, CreatedAt: now, Queries: []models.Query{}}
			}
		}
		return true, nil
	}

	var users map[string]*models.User
	if err := json.Unmarshal(trimmed, &users); err != nil {
		return false, err
	}
	for key, u := range users {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil || u == nil {
			s.log.Warn().Str("id", key).Msg("skipping invalid user entry")
			continue
		}
		u.ID = id
		if u.Queries == nil {
			u.Queries = []models.Query{}
		}
		s.users[id] = u
	}
	return false, nil
}

// saveLocked writes the document to a temp file and renames it over the
// tracking file. Callers hold s.mu (or own s exclusively).
func (s *FileStore) saveLocked() error {
	doc := document{Users: make(map[string]*models.User, len(s.users))}
	for id, u := range s.users {
		doc.Users[strconv.FormatInt(id, 10)] = u
	}

	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode tracking file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp tracking file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write tracking file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write tracking file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace tracking file: %w", err)
	}
	return nil
}

func (s *FileStore) checkLocked(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed {
		return errors.New("activity store closed")
	}
	return nil
}

// ensureUserLocked returns the stored user, creating it from the profile if needed
func (s *FileStore) ensureUserLocked(profile models.User) (*models.User, bool) {
	if u, ok := s.users[profile.ID]; ok {
		return u, false
	}
	u := &models.User{
		ID:        profile.ID,
		Username:  profile.Username,
		FirstName: profile.FirstName,
		CreatedAt: s.clock.Now().UTC(),
		Queries:   []models.Query{},
	}
	s.users[profile.ID] = u
	return u, true
}

func (s *FileStore) RegisterUser(ctx context.Context, user models.User) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(ctx); err != nil {
		return false, err
	}

	_, created := s.ensureUserLocked(user)
	if !created {
		return false, nil
	}
	if err := s.saveLocked(); err != nil {
		delete(s.users, user.ID)
		return false, err
	}
	s.log.Debug().Int64("user_id", user.ID).Msg("user registered")
	return true, nil
}

func (s *FileStore) LogQuery(ctx context.Context, user models.User, word, direction string) (models.Query, error) {
	word = normalizeWord(word)
	if word == "" {
		return models.Query{}, ErrEmptyWord
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(ctx); err != nil {
		return models.Query{}, err
	}

	u, created := s.ensureUserLocked(user)
	q := models.Query{
		ID:        uuid.NewString(),
		Word:      word,
		Direction: direction,
		Timestamp: s.clock.Now().UTC(),
	}
	u.Queries = append(u.Queries, q)

	if err := s.saveLocked(); err != nil {
		// keep memory consistent with what is on disk
		if created {
			delete(s.users, user.ID)
		} else {
			u.Queries = u.Queries[:len(u.Queries)-1]
		}
		return models.Query{}, err
	}
	return q, nil
}

func (s *FileStore) Users(ctx context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(ctx); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *FileStore) User(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(ctx); err != nil {
		return nil, err
	}

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	cp.Queries = append([]models.Query(nil), u.Queries...)
	return &cp, nil
}

func (s *FileStore) History(ctx context.Context, id int64, limit int) ([]models.Query, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLocked(ctx); err != nil {
		return nil, err
	}

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	n := len(u.Queries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]models.Query, 0, n)
	for i := len(u.Queries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, u.Queries[i])
	}
	return out, nil
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
