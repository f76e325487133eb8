package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := publicURLSecretPath
	publicURLSecretPath = filepath.Join(dir, "missing-secret")
	t.Cleanup(func() { publicURLSecretPath = old })
	for _, k := range []string{"TELEGRAM_BOT_TOKEN", "TOKEN", "PUBLIC_URL", "VOCABOT_CONFIG", "STORAGE_DRIVER", "QUIZ_INTERVAL", "ADMIN_USER_IDS"} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoad_DefaultsWithToken(t *testing.T) {
	isolate(t)
	t.Setenv("TOKEN", "abc:123")

	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, "abc:123", cfg.Token)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultBotName, cfg.BotName)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, DefaultQuizInterval, cfg.Quiz.Interval)
	assert.True(t, cfg.Quiz.Enabled)
	assert.Equal(t, filepath.Join("data", "words.json"), cfg.WordsFile())
}

func TestLoad_MissingToken(t *testing.T) {
	isolate(t)

	_, err := Load("", "")
	assert.Error(t, err)
}

func TestLoad_PreferTelegramBotToken(t *testing.T) {
	isolate(t)
	t.Setenv("TOKEN", "legacy")
	t.Setenv("TELEGRAM_BOT_TOKEN", "primary")

	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, "primary", cfg.Token)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "vocabot.yaml")
	yml := `
token: from-yaml
port: 8080
storage:
  driver: sqlite3
  path: data/vocabot.db
quiz:
  interval: 30m
  rate_per_sec: 5
admin_user_ids: [7, 9]
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	t.Setenv("PORT", "9090")

	cfg, err := Load("", path)
	require.NoError(t, err)

	assert.Equal(t, "from-yaml", cfg.Token)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "sqlite3", cfg.Storage.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Quiz.Interval)
	assert.Equal(t, 5, cfg.Quiz.RatePerSec)
	assert.True(t, cfg.IsAdmin(9))
	assert.False(t, cfg.IsAdmin(8))
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TELEGRAM_BOT_TOKEN=dotenv-token\nQUIZ_INTERVAL=1h\n"), 0o644))
	// godotenv never overrides variables that exist, even empty ones
	require.NoError(t, os.Unsetenv("TELEGRAM_BOT_TOKEN"))
	require.NoError(t, os.Unsetenv("QUIZ_INTERVAL"))

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-token", cfg.Token)
	assert.Equal(t, time.Hour, cfg.Quiz.Interval)
}

func TestLoad_PublicURLFromSecretFile(t *testing.T) {
	dir := isolate(t)
	t.Setenv("TOKEN", "abc")
	publicURLSecretPath = filepath.Join(dir, "PUBLIC_URL")
	require.NoError(t, os.WriteFile(publicURLSecretPath, []byte("https://bot.example.com\n"), 0o600))

	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, "https://bot.example.com", cfg.PublicURL)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"PORT": "http"}},
		{"bad interval", map[string]string{"QUIZ_INTERVAL": "often"}},
		{"bad driver", map[string]string{"STORAGE_DRIVER": "mongo"}},
		{"postgres without dsn", map[string]string{"STORAGE_DRIVER": "postgres"}},
		{"inverted hours", map[string]string{"NOTIFICATION_START_HOUR": "20", "NOTIFICATION_END_HOUR": "8"}},
		{"bad admin id", map[string]string{"ADMIN_USER_IDS": "1,two"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv("TOKEN", "abc")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("", "")
			assert.Error(t, err)
		})
	}
}

func TestResolve_NoTokenNeeded(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "vocabot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: /srv/vocabot\n"), 0o644))
	t.Setenv("DATA_DIR", "")

	cfg, err := Resolve("", path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Token)
	assert.Equal(t, filepath.Join("/srv/vocabot", "words.json"), cfg.WordsFile())

	_, err = Load("", path)
	assert.Error(t, err)
}
