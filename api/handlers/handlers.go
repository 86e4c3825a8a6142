package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lingua-board/api/middleware"
	"lingua-board/models"
	"lingua-board/pipeline"
)

// RefreshRunner is the slice of the pipeline the trigger handler needs.
type RefreshRunner interface {
	Run(ctx context.Context, credential string) pipeline.RunReport
}

// QuoteReader serves the read side: one random quote from the live bucket.
type QuoteReader interface {
	FindRandomByBucket(ctx context.Context, bucket string) (*models.Quote, error)
}

// RefreshHandler triggers one refresh run. The auth middleware has already
// vetted the credential; the pipeline re-checks it in its Authorizing phase.
func RefreshHandler(runner RefreshRunner) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := c.GetString(middleware.CredentialKey)

		report := runner.Run(c.Request.Context(), credential)
		if !report.Success {
			c.JSON(http.StatusInternalServerError, report)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

// DailyQuoteHandler returns one random quote from today's bucket.
func DailyQuoteHandler(reader QuoteReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		bucket := models.DayBucketFor(time.Now())
		q, err := reader.FindRandomByBucket(c.Request.Context(), bucket)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no quotes for today"})
			return
		}
		c.JSON(http.StatusOK, q)
	}
}
