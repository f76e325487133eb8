package bot

import (
	"github.com/example/vocabot/internal/config"
)

// Options represents the configuration for the bot
type Options struct {
	// Name shown in greetings
	BotName string
	// Users allowed to run /stats and /quiz
	AdminUserIDs []int64
	// Number of queries shown by /history
	HistoryLimit int
	// Maximum synonyms shown for API enriched words
	MaxSynonyms int
}

// DefaultOptions returns the default bot configuration
func DefaultOptions() Options {
	return Options{
		BotName:      config.DefaultBotName,
		HistoryLimit: 10,
		MaxSynonyms:  5,
	}
}

// OptionsFromConfig builds bot options from the service configuration
func OptionsFromConfig(cfg config.Config) Options {
	opts := DefaultOptions()
	if cfg.BotName != "" {
		opts.BotName = cfg.BotName
	}
	opts.AdminUserIDs = cfg.AdminUserIDs
	return opts
}
