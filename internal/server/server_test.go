package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocabot/internal/config"
)

type recordingProcessor struct {
	mu      sync.Mutex
	updates []tgbotapi.Update
	sources []string
}

func (r *recordingProcessor) Process(_ context.Context, source string, update tgbotapi.Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, update)
	r.sources = append(r.sources, source)
}

func newTestServer(t *testing.T) (*Server, *recordingProcessor) {
	t.Helper()
	cfg := config.Default()
	cfg.Token = "123:abc"
	cfg.BotName = "Test Bot"
	proc := &recordingProcessor{}
	return New(cfg, proc, zerolog.Nop()), proc
}

func do(s *Server, method, path, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestIndex(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(s, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Test Bot is running.", rec.Body.String())
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(s, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetrics(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(s, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestWebhook_DispatchesUpdate(t *testing.T) {
	s, proc := newTestServer(t)

	body := `{"update_id": 7, "message": {"message_id": 1, "text": "hello", "chat": {"id": 5, "type": "private"}, "from": {"id": 5, "first_name": "Ali"}}}`
	rec := do(s, http.MethodPost, WebhookPath("123:abc"), "application/json", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, proc.updates, 1)
	assert.Equal(t, 7, proc.updates[0].UpdateID)
	assert.Equal(t, "hello", proc.updates[0].Message.Text)
	assert.Equal(t, "webhook", proc.sources[0])
}

func TestWebhook_AcceptsCharset(t *testing.T) {
	s, proc := newTestServer(t)

	rec := do(s, http.MethodPost, WebhookPath("123:abc"), "application/json; charset=utf-8", `{"update_id": 1}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, proc.updates, 1)
}

func TestWebhook_RejectsWrongContentType(t *testing.T) {
	s, proc := newTestServer(t)

	rec := do(s, http.MethodPost, WebhookPath("123:abc"), "text/plain", `{"update_id": 1}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, proc.updates)
}

func TestWebhook_WrongToken(t *testing.T) {
	s, proc := newTestServer(t)

	rec := do(s, http.MethodPost, WebhookPath("nope"), "application/json", `{"update_id": 1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, proc.updates)
}

func TestWebhook_MalformedBodyStillOK(t *testing.T) {
	s, proc := newTestServer(t)

	rec := do(s, http.MethodPost, WebhookPath("123:abc"), "application/json", `{not json`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, proc.updates)
}

func TestWebhookURL(t *testing.T) {
	assert.Equal(t, "https://bot.example.com/webhook/t", WebhookURL("https://bot.example.com/", "t"))
	assert.Equal(t, "https://bot.example.com/webhook/t", WebhookURL("https://bot.example.com", "t"))
}
