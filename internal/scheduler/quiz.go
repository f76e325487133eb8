package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/example/vocabot/internal/metrics"
	"github.com/example/vocabot/pkg/models"
)

// Sender delivers a quiz prompt to a chat
type Sender interface {
	SendQuiz(ctx context.Context, chatID int64, text string) error
}

// UserSource lists the users that receive quizzes
type UserSource interface {
	Users(ctx context.Context) ([]int64, error)
}

// WordSource picks quiz words
type WordSource interface {
	RandomWord(rnd *rand.Rand) (string, models.WordInfo, bool)
}

// Report summarizes one dispatch
type Report struct {
	Users    int
	Sent     int
	Failed   int
	Skipped  int
	Duration time.Duration
}

// QuizText is the Markdown prompt sent for word
func QuizText(word string) string {
	return fmt.Sprintf("🎯 Quiz time! Translate this word: *%s*", tgbotapi.EscapeText(tgbotapi.ModeMarkdown, word))
}

// QuizDispatcher sends one random quiz word to every known user
type QuizDispatcher struct {
	users   UserSource
	words   WordSource
	sender  Sender
	limiter *rate.Limiter
	clock   clockwork.Clock
	log     zerolog.Logger

	rndMu sync.Mutex
	rnd   *rand.Rand
}

// NewQuizDispatcher creates a dispatcher sending at most ratePerSec messages per second
func NewQuizDispatcher(users UserSource, words WordSource, sender Sender, ratePerSec int, log zerolog.Logger) *QuizDispatcher {
	if ratePerSec <= 0 {
		ratePerSec = 25
	}
	return &QuizDispatcher{
		users:   users,
		words:   words,
		sender:  sender,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
		clock:   clockwork.NewRealClock(),
		log:     log.With().Str("component", "quiz").Logger(),
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRand replaces the random source used to pick words
func (d *QuizDispatcher) SetRand(rnd *rand.Rand) {
	d.rndMu.Lock()
	d.rnd = rnd
	d.rndMu.Unlock()
}

func (d *QuizDispatcher) pick() (string, bool) {
	d.rndMu.Lock()
	defer d.rndMu.Unlock()
	w, _, ok := d.words.RandomWord(d.rnd)
	return w, ok
}

// Dispatch sends a quiz to every user. A failed send is logged and counted
// and the loop moves on; only a canceled context stops it early.
func (d *QuizDispatcher) Dispatch(ctx context.Context) (report Report, err error) {
	start := d.clock.Now()
	defer func() {
		report.Duration = d.clock.Since(start)
		metrics.BroadcastDuration.Observe(report.Duration.Seconds())
	}()

	users, err := d.users.Users(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to load users: %w", err)
	}
	report.Users = len(users)

	if _, ok := d.pick(); !ok {
		d.log.Warn().Int("users", len(users)).Msg("no words available, skipping quiz dispatch")
		report.Skipped = len(users)
		return report, nil
	}

	for i, uid := range users {
		if err := d.limiter.Wait(ctx); err != nil {
			report.Skipped += len(users) - i
			return report, err
		}

		word, ok := d.pick()
		if !ok {
			report.Skipped++
			continue
		}

		if err := d.sender.SendQuiz(ctx, uid, QuizText(word)); err != nil {
			if ctx.Err() != nil {
				report.Skipped += len(users) - i
				return report, ctx.Err()
			}
			report.Failed++
			metrics.QuizMessagesTotal.WithLabelValues("failed").Inc()
			d.log.Warn().Err(err).Int64("user_id", uid).Msg("failed to send quiz")
			continue
		}
		report.Sent++
		metrics.QuizMessagesTotal.WithLabelValues("sent").Inc()
	}

	return report, nil
}
