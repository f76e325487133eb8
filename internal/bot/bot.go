// Package bot routes Telegram updates to the translation, phrase and
// activity features and delivers quiz prompts.
package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/example/vocabot/internal/activity"
	"github.com/example/vocabot/internal/metrics"
	"github.com/example/vocabot/internal/scheduler"
	"github.com/example/vocabot/internal/translate"
	"github.com/example/vocabot/pkg/models"
)

// Menu buttons
const (
	ButtonTranslate = "🌐 Translate a Word"
	ButtonPhrase    = "🗣 Learn a Phrase"
)

const phraseTopicPrefix = "phrase_topic:"

// Telegram rejects callback data longer than this
const maxCallbackData = 64

// Messenger is the part of the Telegram API the bot needs.
// *tgbotapi.BotAPI satisfies it.
type Messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Translator translates free text
type Translator interface {
	Translate(ctx context.Context, text string) (translate.Result, error)
}

// Definer enriches an English word from a dictionary service
type Definer interface {
	Define(ctx context.Context, word string) (models.WordInfo, error)
}

// Dictionary is the local word and phrase dataset
type Dictionary interface {
	Lookup(word string) (models.WordInfo, bool)
	WordCount() int
	Topics() []string
	Phrases(topic string) []models.Phrase
}

// QuizRunner triggers a quiz broadcast on demand
type QuizRunner interface {
	RunNow(ctx context.Context) (scheduler.Report, error)
}

// Deps groups the collaborators of the bot. Definer is optional.
type Deps struct {
	Store      activity.Store
	Dictionary Dictionary
	Translator Translator
	Definer    Definer
}

// Bot represents the Telegram bot application
type Bot struct {
	api     Messenger
	deps    Deps
	opts    Options
	admins  map[int64]bool
	log     zerolog.Logger
	handled sync.WaitGroup

	mu       sync.Mutex
	awaiting map[int64]bool
	quiz     QuizRunner

	// per-chat backlog of polled updates; a key is present while a worker runs
	queueMu sync.Mutex
	queues  map[int64][]tgbotapi.Update
}

// New creates a new bot instance
func New(api Messenger, deps Deps, opts Options, log zerolog.Logger) (*Bot, error) {
	if api == nil {
		return nil, errors.New("telegram api is required")
	}
	if deps.Store == nil || deps.Dictionary == nil || deps.Translator == nil {
		return nil, errors.New("store, dictionary and translator are required")
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultOptions().HistoryLimit
	}

	b := &Bot{
		api:      api,
		deps:     deps,
		opts:     opts,
		admins:   make(map[int64]bool),
		log:      log.With().Str("component", "bot").Logger(),
		awaiting: make(map[int64]bool),
		queues:   make(map[int64][]tgbotapi.Update),
	}
	for _, id := range opts.AdminUserIDs {
		b.admins[id] = true
	}
	return b, nil
}

// SetQuizRunner wires the scheduler used by /quiz
func (b *Bot) SetQuizRunner(q QuizRunner) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.quiz = q
}

func (b *Bot) quizRunner() QuizRunner {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.quiz
}

// Poll handles updates from a long polling channel until ctx is done or the
// channel is closed, then waits for in-flight handlers. Different chats are
// handled concurrently; updates of one chat run in arrival order.
func (b *Bot) Poll(ctx context.Context, updates <-chan tgbotapi.Update) error {
	defer b.handled.Wait()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.enqueue(ctx, "polling", update)
		}
	}
}

// enqueue hands update to the worker of its chat, starting one if needed
func (b *Bot) enqueue(ctx context.Context, source string, update tgbotapi.Update) {
	key := chatKey(update)

	b.queueMu.Lock()
	if backlog, busy := b.queues[key]; busy {
		b.queues[key] = append(backlog, update)
		b.queueMu.Unlock()
		return
	}
	b.queues[key] = nil
	b.queueMu.Unlock()

	b.handled.Add(1)
	go func() {
		defer b.handled.Done()
		next := update
		for {
			b.Process(ctx, source, next)

			b.queueMu.Lock()
			backlog := b.queues[key]
			if len(backlog) == 0 {
				delete(b.queues, key)
				b.queueMu.Unlock()
				return
			}
			next, b.queues[key] = backlog[0], backlog[1:]
			b.queueMu.Unlock()
		}
	}()
}

// chatKey groups updates by chat. Updates without a chat share key 0.
func chatKey(update tgbotapi.Update) int64 {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}

// Process handles one update and records the outcome. Errors are logged and
// never returned so a bad update cannot stall the transport.
func (b *Bot) Process(ctx context.Context, source string, update tgbotapi.Update) {
	if err := b.HandleUpdate(ctx, update); err != nil {
		metrics.UpdatesTotal.WithLabelValues(source, "error").Inc()
		b.log.Error().Err(err).Int("update_id", update.UpdateID).Str("source", source).Msg("failed to handle update")
		return
	}
	metrics.UpdatesTotal.WithLabelValues(source, "ok").Inc()
}

// SetWebhook points Telegram at url, replacing any previous webhook
func (b *Bot) SetWebhook(url string) error {
	if err := b.RemoveWebhook(); err != nil {
		return err
	}
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	resp, err := b.api.Request(wh)
	if err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	if !resp.Ok {
		return fmt.Errorf("telegram rejected webhook %s: %s", url, resp.Description)
	}
	b.log.Info().Str("url", url).Msg("webhook set")
	return nil
}

// RemoveWebhook deletes the webhook so long polling can be used
func (b *Bot) RemoveWebhook() error {
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("failed to remove webhook: %w", err)
	}
	return nil
}

// SendQuiz delivers a quiz prompt rendered as Markdown
func (b *Bot) SendQuiz(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send quiz to %d: %w", chatID, err)
	}
	return nil
}

// send sends a Markdown message with an optional keyboard
func (b *Bot) send(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send message to %d: %w", chatID, err)
	}
	return nil
}

func (b *Bot) setAwaiting(userID int64, v bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	was := b.awaiting[userID]
	if v {
		b.awaiting[userID] = true
	} else {
		delete(b.awaiting, userID)
	}
	return was
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.admins[userID]
}
