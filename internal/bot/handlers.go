package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/vocabot/internal/activity"
	"github.com/example/vocabot/internal/metrics"
	"github.com/example/vocabot/internal/translate"
	"github.com/example/vocabot/pkg/models"
)

// HandleUpdate routes a single update
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.CallbackQuery != nil:
		return b.HandleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		return b.HandleMessage(ctx, update.Message)
	}
	return nil
}

// HandleMessage handles commands, menu buttons and free text
func (b *Bot) HandleMessage(ctx context.Context, message *tgbotapi.Message) error {
	if message.Chat == nil || message.From == nil {
		return nil
	}
	if message.IsCommand() {
		b.setAwaiting(message.From.ID, false)
		return b.HandleCommand(ctx, message)
	}

	text := strings.TrimSpace(message.Text)
	if text == "" {
		return nil
	}
	// The message right after the translate prompt is the word itself,
	// even when it matches a button label.
	if b.setAwaiting(message.From.ID, false) {
		return b.handleTranslate(ctx, message, text)
	}

	switch text {
	case ButtonTranslate:
		b.setAwaiting(message.From.ID, true)
		return b.send(message.Chat.ID, "Please enter the word to translate (English or Uzbek):", nil)
	case ButtonPhrase:
		return b.handlePhraseMenu(message.Chat.ID)
	}
	return b.handleTranslate(ctx, message, text)
}

// HandleCommand handles slash commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	switch message.Command() {
	case "start":
		return b.handleStart(ctx, message)
	case "help":
		return b.handleHelp(message)
	case "history":
		return b.handleHistory(ctx, message)
	case "stats":
		return b.handleStats(ctx, message)
	case "quiz":
		return b.handleQuiz(ctx, message)
	default:
		return b.sendMainMenu(message.Chat.ID, "")
	}
}

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) error {
	created, err := b.deps.Store.RegisterUser(ctx, userFrom(message.From))
	if err != nil {
		b.log.Error().Err(err).Int64("user_id", message.From.ID).Msg("failed to register user")
	} else if created {
		metrics.UsersRegisteredTotal.Inc()
		b.log.Info().Int64("user_id", message.From.ID).Str("username", message.From.UserName).Msg("new user")
	}
	return b.sendMainMenu(message.Chat.ID, message.From.FirstName)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) error {
	text := "Send me any English or Uzbek word and I will translate it.\n\n" +
		"/start - main menu\n" +
		"/history - your last lookups\n" +
		"/help - this message"
	if b.isAdmin(message.From.ID) {
		text += "\n/stats - user statistics\n/quiz - send a quiz to everyone now"
	}
	return b.send(message.Chat.ID, text, nil)
}

func (b *Bot) handleHistory(ctx context.Context, message *tgbotapi.Message) error {
	queries, err := b.deps.Store.History(ctx, message.From.ID, b.opts.HistoryLimit)
	if err != nil && !errors.Is(err, activity.ErrNotFound) {
		return fmt.Errorf("load history: %w", err)
	}
	return b.send(message.Chat.ID, formatHistory(queries), nil)
}

func (b *Bot) handleStats(ctx context.Context, message *tgbotapi.Message) error {
	if !b.isAdmin(message.From.ID) {
		return b.send(message.Chat.ID, "⛔ This command is for admins only.", nil)
	}
	users, err := b.deps.Store.Users(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	text := fmt.Sprintf("📊 Statistics\n👥 Users: %d\n📚 Words in dataset: %d\n🗂 Phrase topics: %d",
		len(users), b.deps.Dictionary.WordCount(), len(b.deps.Dictionary.Topics()))
	return b.send(message.Chat.ID, text, nil)
}

func (b *Bot) handleQuiz(ctx context.Context, message *tgbotapi.Message) error {
	if !b.isAdmin(message.From.ID) {
		return b.send(message.Chat.ID, "⛔ This command is for admins only.", nil)
	}
	runner := b.quizRunner()
	if runner == nil {
		return b.send(message.Chat.ID, "Quiz broadcasting is disabled.", nil)
	}
	report, err := runner.RunNow(ctx)
	if err != nil {
		b.log.Error().Err(err).Msg("manual quiz dispatch failed")
		return b.send(message.Chat.ID, "❌ Quiz dispatch failed. Check the logs.", nil)
	}
	text := fmt.Sprintf("✅ Quiz dispatched to %d users: %d sent, %d failed, %d skipped.",
		report.Users, report.Sent, report.Failed, report.Skipped)
	return b.send(message.Chat.ID, text, nil)
}

func (b *Bot) sendMainMenu(chatID int64, firstName string) error {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonTranslate),
			tgbotapi.NewKeyboardButton(ButtonPhrase),
		),
	)
	keyboard.ResizeKeyboard = true
	return b.send(chatID, greeting(b.opts.BotName, firstName), keyboard)
}

func (b *Bot) handlePhraseMenu(chatID int64) error {
	topics := b.deps.Dictionary.Topics()

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, topic := range topics {
		data := phraseTopicPrefix + topic
		if len(data) > maxCallbackData {
			b.log.Warn().Str("topic", topic).Msg("topic name too long for a button")
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(topic, data)))
	}
	if len(rows) == 0 {
		return b.send(chatID, "No phrase topics found.", nil)
	}
	return b.send(chatID, "Select a phrase topic:", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

// HandleCallback handles inline keyboard presses
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	// Stop the loading indicator on the button
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.log.Warn().Err(err).Msg("failed to answer callback")
	}
	if callback.Message == nil || callback.Message.Chat == nil {
		return nil
	}
	chatID := callback.Message.Chat.ID

	topic, ok := strings.CutPrefix(callback.Data, phraseTopicPrefix)
	if !ok {
		b.log.Debug().Str("data", callback.Data).Msg("unknown callback")
		return nil
	}
	return b.send(chatID, formatPhrases(topic, b.deps.Dictionary.Phrases(topic)), nil)
}

func (b *Bot) handleTranslate(ctx context.Context, message *tgbotapi.Message, text string) error {
	user := userFrom(message.From)
	log := b.log.With().Int64("user_id", user.ID).Str("word", text).Logger()

	var (
		reply     string
		direction string
	)
	if info, ok := b.deps.Dictionary.Lookup(text); ok {
		direction = "en-uz"
		translation := info.Translation
		if translation == "" {
			translation = text
		}
		reply = formatWord(text, translation, info)
	} else {
		result, err := b.deps.Translator.Translate(ctx, text)
		direction = result.Direction()
		switch {
		case errors.Is(err, translate.ErrEmptyText):
			return nil
		case err != nil:
			log.Warn().Err(err).Msg("translation failed")
			reply = "⚠️ Sorry, I couldn't translate that right now. Please try again later."
		default:
			reply = formatWord(text, result.Text, b.enrich(ctx, text, result))
		}
	}

	if _, err := b.deps.Store.LogQuery(ctx, user, text, direction); err != nil {
		log.Error().Err(err).Msg("failed to log query")
	} else {
		metrics.QueriesTotal.WithLabelValues(direction).Inc()
	}

	if err := b.send(message.Chat.ID, reply, nil); err != nil {
		return err
	}
	return b.sendMainMenu(message.Chat.ID, "")
}

// enrich looks up single English words in the dictionary service. Failures
// only cost the extra details.
func (b *Bot) enrich(ctx context.Context, text string, result translate.Result) models.WordInfo {
	if b.deps.Definer == nil || result.Source == translate.LangUzbek || strings.ContainsAny(text, " \t\n") {
		return models.WordInfo{}
	}
	info, err := b.deps.Definer.Define(ctx, text)
	if err != nil {
		if !errors.Is(err, translate.ErrWordNotFound) {
			b.log.Warn().Err(err).Str("word", text).Msg("dictionary lookup failed")
		}
		return models.WordInfo{}
	}
	if b.opts.MaxSynonyms > 0 && len(info.Synonyms) > b.opts.MaxSynonyms {
		info.Synonyms = info.Synonyms[:b.opts.MaxSynonyms]
	}
	return info
}

func userFrom(u *tgbotapi.User) models.User {
	return models.User{ID: u.ID, Username: u.UserName, FirstName: u.FirstName}
}
