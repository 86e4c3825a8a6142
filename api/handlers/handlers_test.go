package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingua-board/api/handlers"
	"lingua-board/api/middleware"
	"lingua-board/models"
	"lingua-board/pipeline"
)

const secret = "test-secret"

type fakeRunner struct {
	report     pipeline.RunReport
	credential string
	calls      int
}

func (f *fakeRunner) Run(ctx context.Context, credential string) pipeline.RunReport {
	f.calls++
	f.credential = credential
	return f.report
}

type fakeReader struct {
	quote *models.Quote
	err   error
}

func (f *fakeReader) FindRandomByBucket(ctx context.Context, bucket string) (*models.Quote, error) {
	return f.quote, f.err
}

func newTestEngine(runner handlers.RefreshRunner, reader handlers.QuoteReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/v1/refresh",
		middleware.TriggerAuthMiddleware(secret),
		handlers.RefreshHandler(runner))
	r.GET("/api/v1/quotes/daily", handlers.DailyQuoteHandler(reader))
	return r
}

func doRefresh(t *testing.T, r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/refresh", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRefreshMissingHeaderRejected(t *testing.T) {
	runner := &fakeRunner{}
	w := doRefresh(t, newTestEngine(runner, &fakeReader{}), "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, runner.calls)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unauthorized", body["error"])
	assert.NotEmpty(t, body["message"])
}

func TestRefreshWrongSecretRejected(t *testing.T) {
	runner := &fakeRunner{}
	w := doRefresh(t, newTestEngine(runner, &fakeReader{}), "Bearer nope")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, runner.calls)
}

func TestRefreshSuccess(t *testing.T) {
	runner := &fakeRunner{report: pipeline.RunReport{
		Success:     true,
		ExecutionID: "refresh-1-abc",
		Statistics: pipeline.Statistics{
			QuotesGenerated: 30,
			QuotesDeleted:   30,
			QuotesInserted:  30,
			Batches:         6,
			BatchSize:       5,
		},
	}}
	w := doRefresh(t, newTestEngine(runner, &fakeReader{}), "Bearer "+secret)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, secret, runner.credential)

	var body struct {
		Success     bool   `json:"success"`
		ExecutionID string `json:"executionId"`
		Statistics  struct {
			QuotesGenerated int `json:"quotesGenerated"`
			QuotesDeleted   int `json:"quotesDeleted"`
			QuotesInserted  int `json:"quotesInserted"`
			Batches         int `json:"batches"`
			BatchSize       int `json:"batchSize"`
		} `json:"statistics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "refresh-1-abc", body.ExecutionID)
	assert.Equal(t, 30, body.Statistics.QuotesInserted)
	assert.Equal(t, 6, body.Statistics.Batches)
}

func TestRefreshFailureReturns500(t *testing.T) {
	runner := &fakeRunner{report: pipeline.RunReport{
		Success:       false,
		ExecutionID:   "refresh-2-def",
		ErrorCategory: "generation",
		Message:       "generation failed after 4 attempts: quota exceeded",
	}}
	w := doRefresh(t, newTestEngine(runner, &fakeReader{}), "Bearer "+secret)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "generation", body["error"])
	assert.NotEmpty(t, body["message"])
}

func TestDailyQuote(t *testing.T) {
	translation := "Seize the day."
	reader := &fakeReader{quote: &models.Quote{
		Text:         "Carpe diem.",
		Attribution:  "Horace",
		LanguageCode: "la",
		Translation:  &translation,
	}}
	r := newTestEngine(&fakeRunner{}, reader)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes/daily", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var q models.Quote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
	assert.Equal(t, "Carpe diem.", q.Text)
	require.NotNil(t, q.Translation)
	assert.Equal(t, "Seize the day.", *q.Translation)
}

func TestDailyQuoteEmptyBucket(t *testing.T) {
	reader := &fakeReader{err: errors.New("no documents")}
	r := newTestEngine(&fakeRunner{}, reader)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes/daily", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
