package generator

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"lingua-board/config"
	"lingua-board/models"
)

var (
	clientOnce sync.Once
	client     *genai.Client
	clientErr  error
)

// getClient constructs the genai client once and caches both the handle and
// any construction error for subsequent calls.
func getClient(ctx context.Context) (*genai.Client, error) {
	clientOnce.Do(func() {
		client, clientErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: config.GetConfig().GeminiAPIKey,
		})
	})
	return client, clientErr
}

// Client performs single-shot quote generation calls. It holds no retry
// logic; the pipeline's retry layer wraps it.
type Client struct {
	model string
	mix   []config.LanguageShare
}

func NewClient(cfg config.AppConfig) *Client {
	return &Client{model: cfg.GeminiModel, mix: cfg.Refresh.LanguageMix}
}

// GenerateBatch issues exactly one request for `requested` quotes and parses
// the response into validated models tagged with dayBucket. Transport and
// payload failures surface as *GenerationError, contract violations as
// *ValidationError.
func (c *Client) GenerateBatch(ctx context.Context, requested int, dayBucket string) ([]models.Quote, error) {
	if requested <= 0 {
		return nil, &GenerationError{Err: fmt.Errorf("requested must be positive, got %d", requested)}
	}

	cl, err := getClient(ctx)
	if err != nil {
		return nil, &GenerationError{Err: fmt.Errorf("genai client: %w", err)}
	}

	result, err := cl.Models.GenerateContent(
		ctx,
		c.model,
		genai.Text(buildPrompt(requested, c.mix)),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: SYSTEM_INSTRUCTION}}},
		},
	)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}

	return ParseBatch(result.Text(), requested, dayBucket)
}
