package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/example/vocabot/internal/metrics"
	"github.com/example/vocabot/pkg/models"
)

const (
	DefaultDictionaryURL = "https://api.dictionaryapi.dev"
	DefaultDatamuseURL   = "https://api.datamuse.com"

	maxSynonyms = 5
	maxExamples = 2
)

// ErrWordNotFound is returned when the dictionary has no entry for a word
var ErrWordNotFound = errors.New("word not found")

// DictionaryClient fetches English definitions and synonyms and caches
// successful lookups in a JSON file.
type DictionaryClient struct {
	dictionaryURL string
	datamuseURL   string
	httpClient    *http.Client
	breaker       *gobreaker.CircuitBreaker
	log           zerolog.Logger

	cachePath string
	mu        sync.Mutex
	cache     map[string]models.WordInfo
}

// DictionaryOption configures a DictionaryClient
type DictionaryOption func(*DictionaryClient)

// WithDictionaryURLs overrides the dictionary and datamuse endpoints
func WithDictionaryURLs(dictionaryURL, datamuseURL string) DictionaryOption {
	return func(c *DictionaryClient) {
		c.dictionaryURL = strings.TrimRight(dictionaryURL, "/")
		c.datamuseURL = strings.TrimRight(datamuseURL, "/")
	}
}

// NewDictionaryClient creates a client. cachePath may be empty to disable
// the on-disk cache; an unreadable cache file is logged and ignored.
func NewDictionaryClient(cachePath string, log zerolog.Logger, opts ...DictionaryOption) *DictionaryClient {
	c := &DictionaryClient{
		dictionaryURL: DefaultDictionaryURL,
		datamuseURL:   DefaultDatamuseURL,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		log:           log.With().Str("component", "dictionary_api").Logger(),
		cachePath:     cachePath,
		cache:         map[string]models.WordInfo{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = newBreaker("dictionary", c.log)

	if cachePath != "" {
		data, err := os.ReadFile(cachePath)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			c.log.Warn().Err(err).Msg("failed to read word cache")
		default:
			if err := json.Unmarshal(data, &c.cache); err != nil {
				c.log.Warn().Err(err).Msg("ignoring malformed word cache")
				c.cache = map[string]models.WordInfo{}
			}
		}
	}
	return c
}

type dictionaryEntry struct {
	Word     string `json:"word"`
	Meanings []struct {
		PartOfSpeech string `json:"partOfSpeech"`
		Definitions  []struct {
			Definition string   `json:"definition"`
			Example    string   `json:"example"`
			Synonyms   []string `json:"synonyms"`
		} `json:"definitions"`
		Synonyms []string `json:"synonyms"`
	} `json:"meanings"`
}

type datamuseWord struct {
	Word string `json:"word"`
}

// Define returns the part of speech, first definition, examples and synonyms of word
func (c *DictionaryClient) Define(ctx context.Context, word string) (models.WordInfo, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return models.WordInfo{}, ErrEmptyText
	}

	c.mu.Lock()
	cached, ok := c.cache[word]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		info, err := c.fetchDefinition(ctx, word)
		if errors.Is(err, ErrWordNotFound) {
			// a missing word is an answer, not an outage
			return nil, &notFound{err}
		}
		return info, err
	})
	var nf *notFound
	if errors.As(err, &nf) {
		metrics.TranslationRequestsTotal.WithLabelValues("dictionary", "not_found").Inc()
		return models.WordInfo{}, ErrWordNotFound
	}
	if err != nil {
		metrics.TranslationRequestsTotal.WithLabelValues("dictionary", "error").Inc()
		return models.WordInfo{}, fmt.Errorf("dictionary lookup failed: %w", err)
	}
	metrics.TranslationRequestsTotal.WithLabelValues("dictionary", "ok").Inc()
	info := out.(models.WordInfo)

	if syns, err := c.fetchSynonyms(ctx, word); err != nil {
		c.log.Debug().Err(err).Str("word", word).Msg("synonym lookup failed")
	} else if len(syns) > 0 {
		info.Synonyms = syns
	}

	c.mu.Lock()
	c.cache[word] = info
	err = c.saveCacheLocked()
	c.mu.Unlock()
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to save word cache")
	}
	return info, nil
}

// notFound lets a 404 pass through the breaker without counting as a failure
type notFound struct{ err error }

func (n *notFound) Error() string { return n.err.Error() }
func (n *notFound) Unwrap() error { return n.err }

func (c *DictionaryClient) fetchDefinition(ctx context.Context, word string) (models.WordInfo, error) {
	var entries []dictionaryEntry
	status, err := c.getJSON(ctx, c.dictionaryURL+"/api/v2/entries/en/"+url.PathEscape(word), &entries)
	if status == http.StatusNotFound {
		return models.WordInfo{}, ErrWordNotFound
	}
	if err != nil {
		return models.WordInfo{}, err
	}
	if len(entries) == 0 || len(entries[0].Meanings) == 0 {
		return models.WordInfo{}, ErrWordNotFound
	}

	var info models.WordInfo
	meaning := entries[0].Meanings[0]
	info.PartOfSpeech = meaning.PartOfSpeech
	if len(meaning.Definitions) > 0 {
		info.Definition = meaning.Definitions[0].Definition
	}
	for _, m := range entries[0].Meanings {
		for _, d := range m.Definitions {
			if d.Example != "" && len(info.Examples) < maxExamples {
				info.Examples = append(info.Examples, d.Example)
			}
		}
	}
	info.Synonyms = limit(meaning.Synonyms, maxSynonyms)
	return info, nil
}

func (c *DictionaryClient) fetchSynonyms(ctx context.Context, word string) ([]string, error) {
	var words []datamuseWord
	if _, err := c.getJSON(ctx, c.datamuseURL+"/words?rel_syn="+url.QueryEscape(word), &words); err != nil {
		return nil, err
	}
	syns := make([]string, 0, maxSynonyms)
	for _, w := range words {
		if len(syns) == maxSynonyms {
			break
		}
		syns = append(syns, w.Word)
	}
	return syns, nil
}

func (c *DictionaryClient) getJSON(ctx context.Context, u string, dst interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func (c *DictionaryClient) saveCacheLocked() error {
	if c.cachePath == "" {
		return nil
	}
	data, err := json.MarshalIndent(c.cache, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(c.cachePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := c.cachePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.cachePath)
}

func limit(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
