package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestFirstEmbedding(t *testing.T) {
	res := &genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: []float32{0.1, 0.2}}},
	}

	v, err := firstEmbedding(res, "text-embedding-004")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2}, v)
}

func TestFirstEmbeddingEmptyResponse(t *testing.T) {
	cases := []struct {
		name string
		res  *genai.EmbedContentResponse
	}{
		{"nil response", nil},
		{"no embeddings", &genai.EmbedContentResponse{}},
		{"empty values", &genai.EmbedContentResponse{Embeddings: []*genai.ContentEmbedding{{}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := firstEmbedding(tc.res, "text-embedding-004")
			assert.Error(t, err)
		})
	}
}
