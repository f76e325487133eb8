package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"mime"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
)

func (s *Server) handleIndex(c echo.Context) error {
	return c.String(http.StatusOK, s.cfg.BotName+" is running.")
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleWebhook accepts Telegram updates. Anything past the content type
// check is answered with 200 so Telegram does not redeliver bad updates.
func (s *Server) handleWebhook(c echo.Context) error {
	token := c.Param("token")
	if s.cfg.Token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.Token)) != 1 {
		return echo.ErrNotFound
	}

	mediaType, _, err := mime.ParseMediaType(c.Request().Header.Get(echo.HeaderContentType))
	if err != nil || mediaType != echo.MIMEApplicationJSON {
		return echo.ErrForbidden
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(c.Request().Body).Decode(&update); err != nil {
		s.log.Warn().Err(err).Msg("failed to decode update")
		return c.NoContent(http.StatusOK)
	}

	// Finish the update even if Telegram hangs up
	ctx := context.WithoutCancel(c.Request().Context())
	s.updates.Process(ctx, "webhook", update)
	return c.NoContent(http.StatusOK)
}
