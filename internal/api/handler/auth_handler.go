package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/ledgerai/merchant-ledger/internal/telegramauth"
)

// AuthHandler exchanges Telegram Mini-App init data for session tokens
type AuthHandler struct {
	botToken string
	sessions *telegramauth.SessionManager
	logger   *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(logger *slog.Logger, botToken string, sessions *telegramauth.SessionManager) *AuthHandler {
	return &AuthHandler{
		botToken: botToken,
		sessions: sessions,
		logger:   logger,
	}
}

// Authenticate handles POST /api/v1/auth/telegram
func (h *AuthHandler) Authenticate(c *gin.Context) {
	var req TelegramAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	user, err := telegramauth.ValidateInitData(req.InitData, h.botToken)
	if err != nil {
		switch {
		case errors.Is(err, telegramauth.ErrBadSignature):
			h.logger.Warn("Rejected init data with bad signature")
			RespondUnauthorized(c, "Init data signature mismatch")
		case errors.Is(err, telegramauth.ErrMissingHash),
			errors.Is(err, telegramauth.ErrMissingUser),
			errors.Is(err, telegramauth.ErrMalformedInitData{}):
			RespondBadRequest(c, err.Error())
		default:
			h.logger.Error("Failed to validate init data", "error", err)
			RespondInternalError(c)
		}
		return
	}

	token, err := h.sessions.Issue(user)
	if err != nil {
		h.logger.Error("Failed to issue session token", "telegram_id", user.ID, "error", err)
		RespondInternalError(c)
		return
	}

	h.logger.Info("Telegram user authenticated", "telegram_id", user.ID, "username", user.Username)
	RespondOK(c, TelegramAuthResponse{
		Token: token,
		User: TelegramUserResponse{
			TelegramID:   user.ID,
			FirstName:    user.FirstName,
			LastName:     user.LastName,
			Username:     user.Username,
			LanguageCode: user.LanguageCode,
			PhotoURL:     user.PhotoURL,
		},
	})
}
