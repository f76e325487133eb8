package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/example/vocabot/internal/config"
)

// Dispatcher runs one broadcast over all users
type Dispatcher interface {
	Dispatch(ctx context.Context) (Report, error)
}

// Scheduler manages the periodic quiz broadcast
type Scheduler struct {
	scheduler  *gocron.Scheduler
	dispatcher Dispatcher
	cfg        config.QuizConfig
	clock      clockwork.Clock
	log        zerolog.Logger
}

// New creates a new scheduler instance
func New(cfg config.QuizConfig, dispatcher Dispatcher, clock clockwork.Clock, log zerolog.Logger) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s := gocron.NewScheduler(time.UTC)
	// a slow broadcast never overlaps with the next one
	s.SingletonModeAll()
	return &Scheduler{
		scheduler:  s,
		dispatcher: dispatcher,
		cfg:        cfg,
		clock:      clock,
		log:        log.With().Str("component", "scheduler").Logger(),
	}
}

// Start schedules the broadcast and returns immediately. Interval schedules
// fire right away and then every interval; cron schedules wait for their first slot.
func (s *Scheduler) Start(ctx context.Context) error {
	var err error
	if s.cfg.Cron != "" {
		_, err = s.scheduler.Cron(s.cfg.Cron).Do(s.run, ctx)
	} else {
		_, err = s.scheduler.Every(s.cfg.Interval).Do(s.run, ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to schedule quiz broadcast: %w", err)
	}

	s.scheduler.StartAsync()
	s.log.Info().Dur("interval", s.cfg.Interval).Str("cron", s.cfg.Cron).Msg("quiz scheduler started")
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.log.Info().Msg("quiz scheduler stopped")
}

// RunNow dispatches immediately, ignoring the notification window
func (s *Scheduler) RunNow(ctx context.Context) (Report, error) {
	return s.dispatch(ctx)
}

// inWindow reports whether hour lies in the notification window
func (s *Scheduler) inWindow(hour int) bool {
	return hour >= s.cfg.StartHour && hour <= s.cfg.EndHour
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	hour := s.clock.Now().UTC().Hour()
	if !s.inWindow(hour) {
		s.log.Info().Int("hour", hour).Int("start_hour", s.cfg.StartHour).Int("end_hour", s.cfg.EndHour).
			Msg("outside notification hours, skipping quiz broadcast")
		return
	}
	if _, err := s.dispatch(ctx); err != nil {
		s.log.Error().Err(err).Msg("quiz broadcast failed")
	}
}

func (s *Scheduler) dispatch(ctx context.Context) (Report, error) {
	report, err := s.dispatcher.Dispatch(ctx)
	ev := s.log.Info()
	if report.Failed > 0 {
		ev = s.log.Warn()
	}
	ev.Int("users", report.Users).Int("sent", report.Sent).Int("failed", report.Failed).
		Int("skipped", report.Skipped).Dur("dur", report.Duration).Msg("quiz broadcast finished")
	return report, err
}
