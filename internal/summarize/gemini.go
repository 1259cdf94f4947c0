package summarize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/deusflow/ainews/internal/retry"
)

// Generator is the text-generation collaborator: prompt in, raw text out.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiClient drives the Gemini API for batched summarization. Transient
// API failures are retried with linear backoff.
type GeminiClient struct {
	client  *genai.Client
	model   string
	retries retry.Config
}

func NewGeminiClient(ctx context.Context, apiKey, model string, attempts int, delay time.Duration) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiClient{
		client:  client,
		model:   model,
		retries: retry.Config{MaxAttempts: attempts, Delay: delay, Backoff: true},
	}, nil
}

func (c *GeminiClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.model)

	var resp *genai.GenerateContentResponse
	err := retry.Do(ctx, c.retries, func() error {
		var genErr error
		resp, genErr = model.GenerateContent(ctx, genai.Text(prompt))
		return genErr
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}
	return b.String(), nil
}
