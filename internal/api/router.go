package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-review-api/internal/config"
	"github.com/portfolio-review-api/internal/models"
	"github.com/portfolio-review-api/internal/service"
	"github.com/rs/zerolog"
)

// identityHeader carries the caller's email, set by the upstream auth proxy.
// An absent header means no one is signed in.
const identityHeader = "X-Auth-Email"

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	accountHandler := NewAccountHandler(services, cfg, log)
	portfolioHandler := NewPortfolioHandler(services, log)

	// Health check
	router.GET("/health", healthCheck)
	router.GET("/metrics", metricsHandler(services))

	// API v1
	v1 := router.Group("/v1")
	{
		// Account endpoints
		accounts := v1.Group("/accounts")
		{
			accounts.POST("/sync", accountHandler.SyncAccount)
			accounts.GET("", accountHandler.ListAccounts)
			accounts.POST("/:email/promote-reviewer", accountHandler.PromoteReviewer)
			accounts.POST("/:email/promote-admin", accountHandler.PromoteAdmin)
		}

		// Flash messages
		v1.GET("/flash", accountHandler.GetFlash)

		// Portfolio endpoints
		portfolios := v1.Group("/portfolios")
		{
			// Listing of portfolios with unread comments (reviewers)
			portfolios.GET("", portfolioHandler.UpdatedPortfolios)
			portfolios.GET("/:email/overview", portfolioHandler.Overview)
			portfolios.GET("/:email/sections/:section", portfolioHandler.Section)
			portfolios.POST("/:email/sections/:section/comments", portfolioHandler.AddComment)
		}
	}

	return router
}

// currentIdentity extracts the authenticated identity from the request.
// Returns nil when the caller is anonymous.
func currentIdentity(c *gin.Context) *models.Identity {
	email := c.GetHeader(identityHeader)
	if email == "" {
		return nil
	}
	return &models.Identity{Email: email}
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "portfolio-review-api",
	})
}

// metricsHandler returns entity counts
func metricsHandler(services *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		counts, err := services.Review.Counts(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to collect metrics"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"database":  counts,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+identityHeader)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
