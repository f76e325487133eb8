package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/example/vocabot/internal/activity"
	"github.com/example/vocabot/internal/bot"
	"github.com/example/vocabot/internal/config"
	"github.com/example/vocabot/internal/dictionary"
	"github.com/example/vocabot/internal/logging"
	"github.com/example/vocabot/internal/scheduler"
	"github.com/example/vocabot/internal/server"
	"github.com/example/vocabot/internal/translate"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot, the quiz scheduler and the HTTP server",
	Long: `Run the bot. With PUBLIC_URL set, Telegram delivers updates to the
webhook route; otherwise updates are fetched by long polling.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(envFile, configFile)
	if err != nil {
		return err
	}
	log := logging.New(cfg.Log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := activity.Open(cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to open activity store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close activity store")
		}
	}()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	dataset := dictionary.New(cfg.WordsFile(), cfg.PhrasesFile(), log)
	log.Info().Int("words", dataset.WordCount()).Int("topics", len(dataset.Topics())).Msg("dataset loaded")

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %w", err)
	}
	log.Info().Str("account", api.Self.UserName).Msg("authorized")

	b, err := bot.New(api, bot.Deps{
		Store:      store,
		Dictionary: dataset,
		Translator: translate.NewClient(log),
		Definer:    translate.NewDictionaryClient(cfg.WordCacheFile, log),
	}, bot.OptionsFromConfig(cfg), log)
	if err != nil {
		return err
	}

	if cfg.Quiz.Enabled {
		quiz := scheduler.NewQuizDispatcher(store, dataset, b, cfg.Quiz.RatePerSec, log)
		sched := scheduler.New(cfg.Quiz, quiz, clockwork.NewRealClock(), log)
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer sched.Stop()
		b.SetQuizRunner(sched)
	} else {
		log.Info().Msg("quiz scheduler disabled")
	}

	srv := server.New(cfg, b, log)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		// A broken watcher only disables hot reload
		if err := dataset.Watch(gctx); err != nil {
			log.Warn().Err(err).Msg("dataset watcher stopped")
		}
		return nil
	})

	if cfg.PublicURL != "" {
		if err := b.SetWebhook(server.WebhookURL(cfg.PublicURL, cfg.Token)); err != nil {
			log.Error().Err(err).Msg("failed to set webhook")
		}
	} else {
		log.Info().Msg("PUBLIC_URL not set; using long polling")
		if err := b.RemoveWebhook(); err != nil {
			log.Warn().Err(err).Msg("failed to remove webhook")
		}
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		updates := api.GetUpdatesChan(u)
		g.Go(func() error {
			err := b.Poll(gctx, updates)
			api.StopReceivingUpdates()
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	log.Info().Str("bot", cfg.BotName).Msg("bot started")
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("bot stopped")
	return nil
}
