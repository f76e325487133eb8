// Package translate talks to the public translation and dictionary APIs.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/example/vocabot/internal/metrics"
)

const (
	DefaultTranslateURL = "https://translate.googleapis.com"

	LangAuto    = "auto"
	LangUzbek   = "uz"
	LangEnglish = "en"
)

// ErrEmptyText is returned for blank input
var ErrEmptyText = errors.New("empty text")

// Result is a translation together with the language pair used
type Result struct {
	Text   string
	Source string
	Target string
}

// Direction renders the language pair as "<source>-<target>"
func (r Result) Direction() string {
	return r.Source + "-" + r.Target
}

// Client translates between Uzbek and other languages
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	log        zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another endpoint (used in tests)
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a translation client
func NewClient(log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultTranslateURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log.With().Str("component", "translate").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = newBreaker("translate", c.log)
	return c
}

func newBreaker(name string, log zerolog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			var nf *notFound
			return err == nil || errors.As(err, &nf)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Translate picks the direction from the text: Uzbek input goes to English,
// anything else goes to Uzbek with source auto-detection. The returned
// Result always carries the direction, even on error.
func (c *Client) Translate(ctx context.Context, text string) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{Source: "unknown", Target: "unknown"}, ErrEmptyText
	}

	res := Result{Source: LangAuto, Target: LangUzbek}
	if DetectUzbek(text) {
		res = Result{Source: LangUzbek, Target: LangEnglish}
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.request(ctx, res.Source, res.Target, text)
	})
	if err != nil {
		metrics.TranslationRequestsTotal.WithLabelValues("translate", "error").Inc()
		c.log.Warn().Err(err).Str("direction", res.Direction()).Msg("translation failed")
		return res, fmt.Errorf("translation failed: %w", err)
	}
	metrics.TranslationRequestsTotal.WithLabelValues("translate", "ok").Inc()
	res.Text = out.(string)
	return res, nil
}

func (c *Client) request(ctx context.Context, source, target, text string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", source)
	q.Set("tl", target)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/translate_a/single?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	// [[["translated","original",...], ...], null, "en", ...]
	var payload []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(payload) == 0 {
		return "", errors.New("empty response")
	}
	var segments [][]interface{}
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", fmt.Errorf("failed to decode segments: %w", err)
	}

	var b strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if s, ok := seg[0].(string); ok {
			b.WriteString(s)
		}
	}
	translated := strings.TrimSpace(b.String())
	if translated == "" {
		return "", errors.New("no translation returned")
	}
	return translated, nil
}
