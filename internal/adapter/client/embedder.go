package client

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Embedder produces vectors for the semantic result cache.
type Embedder struct {
	client *genai.Client
	model  string // e.g. "text-embedding-004"
}

func NewEmbedder(c *genai.Client, model string) *Embedder {
	return &Embedder{client: c, model: model}
}

func (e *Embedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	res, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), nil)
	if err != nil {
		return nil, err
	}
	return firstEmbedding(res, e.model)
}

func firstEmbedding(res *genai.EmbedContentResponse, model string) ([]float32, error) {
	if res == nil || len(res.Embeddings) == 0 || len(res.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("model %s returned no embedding", model)
	}
	return res.Embeddings[0].Values, nil
}
