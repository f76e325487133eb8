// Package config loads vocabot settings from an optional .env file, an
// optional YAML file and the process environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/example/vocabot/internal/logging"
)

// Default values
const (
	DefaultBotName       = "Vocabulary with Mr. Korsh"
	DefaultPort          = 5000
	DefaultDataDir       = "data"
	DefaultTrackingFile  = "tracking.json"
	DefaultWordCacheFile = "word.json"
	DefaultQuizInterval  = 12 * time.Hour
	DefaultBroadcastRate = 25
)

// publicURLSecretPath is checked when PUBLIC_URL is not set
var publicURLSecretPath = "/etc/secrets/PUBLIC_URL"

// Config represents the configuration of the whole service
type Config struct {
	Token         string         `yaml:"token" validate:"required"`
	PublicURL     string         `yaml:"public_url" validate:"omitempty,url"`
	Port          int            `yaml:"port" validate:"min=1,max=65535"`
	BotName       string         `yaml:"bot_name" validate:"required"`
	DataDir       string         `yaml:"data_dir" validate:"required"`
	WordCacheFile string         `yaml:"word_cache_file"`
	AdminUserIDs  []int64        `yaml:"admin_user_ids"`
	Storage       StorageConfig  `yaml:"storage"`
	Quiz          QuizConfig     `yaml:"quiz"`
	Log           logging.Config `yaml:"log"`
}

// StorageConfig selects the activity store backend
type StorageConfig struct {
	Driver string `yaml:"driver" validate:"oneof=file sqlite3 postgres"`
	// Path of the tracking file (file driver) or database file (sqlite3 driver)
	Path string `yaml:"path"`
	DSN  string `yaml:"dsn" validate:"required_if=Driver postgres"`
}

// QuizConfig controls the periodic quiz broadcast
type QuizConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval" validate:"required_without=Cron"`
	Cron     string        `yaml:"cron"`
	// Broadcasts only run between StartHour and EndHour inclusive (UTC)
	StartHour  int `yaml:"start_hour" validate:"min=0,max=23"`
	EndHour    int `yaml:"end_hour" validate:"min=0,max=23,gtefield=StartHour"`
	RatePerSec int `yaml:"rate_per_sec" validate:"min=1"`
}

// Default returns the configuration used before any source is applied
func Default() Config {
	return Config{
		Port:          DefaultPort,
		BotName:       DefaultBotName,
		DataDir:       DefaultDataDir,
		WordCacheFile: DefaultWordCacheFile,
		Storage: StorageConfig{
			Driver: "file",
			Path:   DefaultTrackingFile,
		},
		Quiz: QuizConfig{
			Enabled:    true,
			Interval:   DefaultQuizInterval,
			StartHour:  0,
			EndHour:    23,
			RatePerSec: DefaultBroadcastRate,
		},
		Log: logging.Config{Level: "info", Console: true},
	}
}

// WordsFile is the path of the words dataset
func (c Config) WordsFile() string { return filepath.Join(c.DataDir, "words.json") }

// PhrasesFile is the path of the phrases dataset
func (c Config) PhrasesFile() string { return filepath.Join(c.DataDir, "phrases.json") }

// IsAdmin reports whether the user id is listed in AdminUserIDs
func (c Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Load builds and validates the configuration. dotEnvPath and yamlPath may
// be empty or point to missing files; both are optional.
func Load(dotEnvPath, yamlPath string) (Config, error) {
	cfg, err := Resolve(dotEnvPath, yamlPath)
	if err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Resolve merges defaults, the YAML file and the environment without
// validating the result. Offline commands such as import use it since they
// need no bot token.
func Resolve(dotEnvPath, yamlPath string) (Config, error) {
	if err := LoadEnvFile(dotEnvPath); err != nil {
		return Config{}, err
	}

	cfg := Default()

	if yamlPath == "" {
		yamlPath = os.Getenv("VOCABOT_CONFIG")
	}
	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", yamlPath, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}

	if cfg.PublicURL == "" {
		if data, err := os.ReadFile(publicURLSecretPath); err == nil {
			cfg.PublicURL = strings.TrimSpace(string(data))
		}
	}
	return cfg, nil
}

// LoadEnvFile exports the variables of a .env file into the process
// environment. Variables that are already set win. A missing file is not an
// error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Validate checks the struct constraints of cfg
func Validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
				*dst = strings.TrimSpace(v)
				return
			}
		}
	}

	str(&cfg.Token, "TELEGRAM_BOT_TOKEN", "TOKEN")
	str(&cfg.PublicURL, "PUBLIC_URL")
	str(&cfg.BotName, "BOT_NAME")
	str(&cfg.DataDir, "DATA_DIR")
	str(&cfg.WordCacheFile, "WORD_CACHE_FILE")
	str(&cfg.Storage.Driver, "STORAGE_DRIVER")
	str(&cfg.Storage.Path, "TRACKING_FILE")
	str(&cfg.Storage.DSN, "DATABASE_URL")
	str(&cfg.Quiz.Cron, "QUIZ_CRON")
	str(&cfg.Log.Level, "LOG_LEVEL")

	ints := []struct {
		key string
		dst *int
	}{
		{"PORT", &cfg.Port},
		{"NOTIFICATION_START_HOUR", &cfg.Quiz.StartHour},
		{"NOTIFICATION_END_HOUR", &cfg.Quiz.EndHour},
		{"BROADCAST_RATE", &cfg.Quiz.RatePerSec},
	}
	for _, it := range ints {
		v, ok := lookup(it.key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", it.key, err)
		}
		*it.dst = n
	}

	if v, ok := lookup("QUIZ_INTERVAL"); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid QUIZ_INTERVAL: %w", err)
		}
		cfg.Quiz.Interval = d
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"ENABLE_SCHEDULER", &cfg.Quiz.Enabled},
		{"LOG_CONSOLE", &cfg.Log.Console},
	}
	for _, it := range bools {
		v, ok := lookup(it.key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", it.key, err)
		}
		*it.dst = b
	}

	if v, ok := lookup("ADMIN_USER_IDS"); ok && strings.TrimSpace(v) != "" {
		ids, err := parseIDs(v)
		if err != nil {
			return err
		}
		cfg.AdminUserIDs = ids
	}

	return nil
}

func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin user ID %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
