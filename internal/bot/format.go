package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/vocabot/pkg/models"
)

func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func escAll(items []string) string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = esc(s)
	}
	return strings.Join(out, ", ")
}

func greeting(botName, firstName string) string {
	if firstName == "" {
		return fmt.Sprintf("Welcome to *%s*.\nChoose an option below:", esc(botName))
	}
	return fmt.Sprintf("Hello %s!\nWelcome to *%s*.\nChoose an option below:", esc(firstName), esc(botName))
}

// formatWord renders a word card. Empty fields are omitted.
func formatWord(word, translation string, info models.WordInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📝 Word: *%s*\n🔤 Translation: *%s*\n", esc(word), esc(translation))
	if info.PartOfSpeech != "" {
		fmt.Fprintf(&sb, "📚 Part of Speech: %s\n", esc(info.PartOfSpeech))
	}
	if info.Level != "" {
		fmt.Fprintf(&sb, "⭐ Level: %s\n", esc(info.Level))
	}
	if info.Definition != "" {
		fmt.Fprintf(&sb, "📘 Definition: %s\n", esc(info.Definition))
	}
	if len(info.Prefixes) > 0 {
		fmt.Fprintf(&sb, "➕ Prefixes: %s\n", escAll(info.Prefixes))
	}
	if len(info.Suffixes) > 0 {
		fmt.Fprintf(&sb, "➖ Suffixes: %s\n", escAll(info.Suffixes))
	}
	if info.SingularPlural != "" {
		fmt.Fprintf(&sb, "👥 Singular/Plural: %s\n", esc(info.SingularPlural))
	}
	if len(info.Examples) > 0 {
		sb.WriteString("📖 Examples:\n")
		for _, ex := range info.Examples {
			fmt.Fprintf(&sb, " - %s\n", esc(ex))
		}
	}
	if len(info.Synonyms) > 0 {
		fmt.Fprintf(&sb, "💡 Synonyms: %s\n", escAll(info.Synonyms))
	}
	return strings.TrimSpace(sb.String())
}

func formatPhrases(topic string, phrases []models.Phrase) string {
	if len(phrases) == 0 {
		return "No phrases found for this topic."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📌 Phrases for *%s*:\n", esc(topic))
	for _, p := range phrases {
		fmt.Fprintf(&sb, "- %s\n", esc(p.String()))
	}
	return strings.TrimSpace(sb.String())
}

func formatHistory(queries []models.Query) string {
	if len(queries) == 0 {
		return "You have no lookups yet. Send me a word to start!"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "🕘 Your last %d lookups:\n", len(queries))
	for i, q := range queries {
		fmt.Fprintf(&sb, "%d. %s (%s) %s\n", i+1, esc(q.Word), q.Direction, q.Timestamp.UTC().Format("2006-01-02 15:04"))
	}
	return strings.TrimSpace(sb.String())
}
