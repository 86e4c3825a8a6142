package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lingua-board/api/handlers"
	"lingua-board/api/middleware"
	"lingua-board/config"
	"lingua-board/db"
)

// New wires the HTTP surface: health check, refresh trigger, and the daily
// quote read endpoint.
func New(cfg config.AppConfig, runner handlers.RefreshRunner, reader handlers.QuoteReader) *gin.Engine {
	r := gin.Default()

	// Health check
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// v1 routes
	api := r.Group("/api/v1")
	{
		api.GET("/refresh",
			middleware.TriggerAuthMiddleware(cfg.TriggerSecret),
			handlers.RefreshHandler(runner))
		api.GET("/quotes/daily", handlers.DailyQuoteHandler(reader))
	}

	return r
}
