// Package dictionary serves the local words and phrases datasets.
package dictionary

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/example/vocabot/pkg/models"
)

// Dataset holds words.json ({"word": WordInfo}) and phrases.json
// ({"topic": [phrase, ...]}) in memory.
type Dataset struct {
	wordsPath   string
	phrasesPath string
	log         zerolog.Logger

	mu      sync.RWMutex
	words   map[string]models.WordInfo // keyed as written in words.json
	index   map[string]string          // lower-cased word -> key in words
	keys    []string                   // sorted words, for random picks
	phrases map[string][]models.Phrase
}

// New creates a dataset and performs the initial load. Load problems are
// logged; the dataset then starts empty.
func New(wordsPath, phrasesPath string, log zerolog.Logger) *Dataset {
	d := &Dataset{
		wordsPath:   wordsPath,
		phrasesPath: phrasesPath,
		log:         log.With().Str("component", "dictionary").Logger(),
		words:       map[string]models.WordInfo{},
		index:       map[string]string{},
		phrases:     map[string][]models.Phrase{},
	}
	if err := d.Reload(); err != nil {
		d.log.Warn().Err(err).Msg("dataset loaded with errors")
	}
	return d
}

// Reload rereads both files. A missing file means an empty set; a malformed
// file keeps the previously loaded set and is reported in the returned error.
func (d *Dataset) Reload() error {
	var errs []error

	words, err := LoadWords(d.wordsPath)
	if err != nil {
		errs = append(errs, err)
	}
	phrases, err := loadPhrases(d.phrasesPath)
	if err != nil {
		errs = append(errs, err)
	}

	var index map[string]string
	if words != nil {
		var dups []string
		index, dups = IndexWords(words)
		if len(dups) > 0 {
			d.log.Warn().Strs("words", dups).Msg("words differing only in case, keeping the first")
		}
	}

	d.mu.Lock()
	if words != nil {
		d.words = words
		d.index = index
		d.keys = make([]string, 0, len(words))
		for k := range words {
			d.keys = append(d.keys, k)
		}
		sort.Strings(d.keys)
	}
	if phrases != nil {
		d.phrases = phrases
	}
	nWords, nTopics := len(d.words), len(d.phrases)
	d.mu.Unlock()

	d.log.Info().Int("words", nWords).Int("topics", nTopics).Msg("dataset loaded")
	return errors.Join(errs...)
}

// Lookup finds a word, ignoring case and surrounding spaces
func (d *Dataset) Lookup(word string) (models.WordInfo, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	key, ok := d.index[normalize(word)]
	if !ok {
		return models.WordInfo{}, false
	}
	return d.words[key], true
}

// RandomWord picks a word uniformly and returns it spelled as in words.json.
// ok is false when there are no words.
func (d *Dataset) RandomWord(rnd *rand.Rand) (string, models.WordInfo, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.keys) == 0 {
		return "", models.WordInfo{}, false
	}
	w := d.keys[rnd.Intn(len(d.keys))]
	return w, d.words[w], true
}

// WordCount returns the number of words in the dataset
func (d *Dataset) WordCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.words)
}

// Topics returns the phrase topics in alphabetical order
func (d *Dataset) Topics() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	topics := make([]string, 0, len(d.phrases))
	for t := range d.phrases {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics
}

// Phrases returns the phrases of a topic
func (d *Dataset) Phrases(topic string) []models.Phrase {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]models.Phrase(nil), d.phrases[topic]...)
}

func normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// LoadWords reads a words file. Keys are trimmed but keep their case. A
// missing file yields an empty, non-nil map. On error the map is nil.
func LoadWords(path string) (map[string]models.WordInfo, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]models.WordInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read words file: %w", err)
	}

	var raw map[string]models.WordInfo
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse words file %s: %w", path, err)
		}
	}

	words := make(map[string]models.WordInfo, len(raw))
	for k, v := range raw {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		words[key] = v
	}
	return words, nil
}

// IndexWords maps the lower-cased form of every key to the key itself. When
// keys differ only in case the alphabetically first one wins and the others
// are returned as duplicates.
func IndexWords(words map[string]models.WordInfo) (map[string]string, []string) {
	keys := make([]string, 0, len(words))
	for k := range words {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	index := make(map[string]string, len(keys))
	var dups []string
	for _, k := range keys {
		n := normalize(k)
		if _, taken := index[n]; taken {
			dups = append(dups, k)
			continue
		}
		index[n] = k
	}
	return index, dups
}

func loadPhrases(path string) (map[string][]models.Phrase, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string][]models.Phrase{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read phrases file: %w", err)
	}

	phrases := map[string][]models.Phrase{}
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &phrases); err != nil {
			return nil, fmt.Errorf("failed to parse phrases file %s: %w", path, err)
		}
	}
	return phrases, nil
}

// WriteWords atomically replaces the words file with words
func WriteWords(path string, words map[string]models.WordInfo) error {
	data, err := json.MarshalIndent(words, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode words: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write words file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace words file: %w", err)
	}
	return nil
}
