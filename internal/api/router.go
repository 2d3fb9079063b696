package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ledgerai/merchant-ledger/internal/api/handler"
	"github.com/ledgerai/merchant-ledger/internal/api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	productHandler *handler.ProductHandler,
	transactionHandler *handler.TransactionHandler,
	metricsHandler *handler.MetricsHandler,
	authHandler *handler.AuthHandler,
	sessionAuth gin.HandlerFunc,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Session establishment stays open; everything else may be guarded
		if authHandler != nil {
			v1.POST("/auth/telegram", authHandler.Authenticate)
		}

		guarded := v1.Group("")
		if sessionAuth != nil {
			guarded.Use(sessionAuth)
		}

		// Product registry operations
		products := guarded.Group("/products")
		{
			products.POST("", productHandler.Create)
			products.GET("", productHandler.List)
			products.PATCH("/:id", productHandler.Update)
		}

		// Transaction log operations
		transactions := guarded.Group("/transactions")
		{
			transactions.POST("", transactionHandler.Create)
			transactions.GET("", transactionHandler.List)
		}

		// Dashboard summary
		guarded.GET("/metrics", metricsHandler.Get)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
