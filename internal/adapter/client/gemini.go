// Package client holds the Gemini-backed provider adapters.
package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"neuropilot/internal/domain/entity"
	"neuropilot/internal/domain/repository"
)

// GeminiClassifier adapts the genai SDK to the TextClassifier port.
// Output is constrained to JSON with bounded length and low randomness.
type GeminiClassifier struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGeminiClassifier(c *genai.Client, model string) *GeminiClassifier {
	return &GeminiClassifier{
		client:  c,
		model:   model,
		timeout: 25 * time.Second, // global cap per call, timeout counts as provider failure
	}
}

func (g *GeminiClassifier) Model() string { return g.model }

func (g *GeminiClassifier) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32, maxOutputTokens int) (*repository.Completion, error) {
	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(temperature),
		MaxOutputTokens:   int32(maxOutputTokens),
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(cctx, g.model, genai.Text(userPrompt), cfg)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", entity.ErrProviderTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", entity.ErrProviderUnavailable, err)
	}

	tokens := 0
	if result.UsageMetadata != nil {
		tokens = int(result.UsageMetadata.TotalTokenCount)
	}
	return &repository.Completion{
		Content:    result.Text(),
		TokensUsed: tokens,
	}, nil
}
