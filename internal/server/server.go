// Package server exposes the webhook endpoint and operational routes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/example/vocabot/internal/config"
)

// UpdateProcessor handles one decoded Telegram update
type UpdateProcessor interface {
	Process(ctx context.Context, source string, update tgbotapi.Update)
}

type Server struct {
	echo    *echo.Echo
	cfg     config.Config
	updates UpdateProcessor
	log     zerolog.Logger
}

// WebhookPath is the route Telegram posts updates to
func WebhookPath(token string) string {
	return "/webhook/" + token
}

// WebhookURL joins the public base URL with the webhook route
func WebhookURL(publicURL, token string) string {
	return strings.TrimRight(publicURL, "/") + WebhookPath(token)
}

func New(cfg config.Config, updates UpdateProcessor, log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		cfg:     cfg,
		updates: updates,
		log:     log.With().Str("component", "server").Logger(),
	}
	s.registerRoutes()
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.log.Info().Str("addr", addr).Msg("starting http server")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogRoutePath: true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			// Route pattern only: the webhook URI carries the bot token
			ev := s.log.Debug()
			if v.Error != nil {
				ev = s.log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("route", v.RoutePath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
