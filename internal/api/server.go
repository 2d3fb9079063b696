// Package api exposes the ledger over HTTP for the Mini-App frontend. It
// wires gin handlers, middleware, and the optional Telegram session guard.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ledgerai/merchant-ledger/internal/api/handler"
	"github.com/ledgerai/merchant-ledger/internal/api/middleware"
	"github.com/ledgerai/merchant-ledger/internal/config"
	"github.com/ledgerai/merchant-ledger/internal/telegramauth"
)

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger // For structured logging
	httpServer *http.Server // Underlying HTTP server
	httpRouter *gin.Engine  // Gin router instance
}

// NewServer creates and configures a new HTTP server over the given ledger
func NewServer(log *slog.Logger, cfg *config.Config, l handler.Ledger) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	productHandler := handler.NewProductHandler(log, l)
	transactionHandler := handler.NewTransactionHandler(log, l)
	metricsHandler := handler.NewMetricsHandler(log, l)

	// The auth boundary only exists when a bot token is configured. Without
	// one the API runs open, which is the local development mode.
	var authHandler *handler.AuthHandler
	var sessionAuth gin.HandlerFunc
	if cfg.Telegram.BotToken != "" {
		sessions := telegramauth.NewSessionManager(cfg.Telegram.SessionSecret, cfg.Telegram.SessionTTL)
		authHandler = handler.NewAuthHandler(log, cfg.Telegram.BotToken, sessions)
		if cfg.Telegram.RequireAuth {
			sessionAuth = middleware.SessionAuth(log, sessions)
		}
	}

	setupRouter(log, httpRouter, productHandler, transactionHandler, metricsHandler, authHandler, sessionAuth)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server with a timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.httpServer.WriteTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}

	return nil
}
