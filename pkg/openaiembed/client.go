// Package openaiembed embeds text with the OpenAI embeddings API.
package openaiembed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/WessleyAI/wessley-fitment/engine/domain"
	"github.com/WessleyAI/wessley-fitment/pkg/fn"
)

// DefaultModel matches the model the fitment catalog was indexed with.
const DefaultModel = string(openai.AdaEmbeddingV2)

// Client implements fitment.Embedder over go-openai.
type Client struct {
	api   *openai.Client
	model openai.EmbeddingModel
	retry fn.RetryOpts
}

// New creates a client. baseURL may be empty for the public API.
func New(apiKey, model, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, domain.NewConfigError("OPENAI_API_KEY", "required when EMBED_PROVIDER=openai")
	}
	if model == "" {
		model = DefaultModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(cfg),
		model: openai.EmbeddingModel(model),
		retry: fn.RetryOpts{
			MaxAttempts: 3,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Jitter:      true,
			Retryable:   retryable,
		},
	}, nil
}

// Model returns the embedding model name.
func (c *Client) Model() string { return string(c.model) }

// Embed returns the embedding vector for text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	return fn.Retry(ctx, c.retry, func(ctx context.Context) ([]float32, error) {
		resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: []string{text},
			Model: c.model,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embed: %w", err)
		}
		if len(resp.Data) == 0 {
			return nil, fmt.Errorf("openai embed: empty response")
		}
		return resp.Data[0].Embedding, nil
	})
}

// retryable retries rate limits, server errors, and transport failures.
func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
