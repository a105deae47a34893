package embeddings

import (
	"context"
	"fmt"

	"github.com/mentormatch/mentormatch/config"
	"github.com/mentormatch/mentormatch/internal"
	"github.com/mentormatch/mentormatch/pkg/models"
)

var log = internal.GetLogger()

// NewEmbeddingClient creates the embedding client configured in
// embeddings.service.
func NewEmbeddingClient(cfg *config.Config) (models.EmbeddingClient, error) {
	switch cfg.Embeddings.Service {
	case "http", "":
		return NewHTTPEmbeddingClient(cfg)
	case "openai":
		return NewOpenAIEmbeddingClient(cfg)
	default:
		return nil, fmt.Errorf("invalid embeddings service: %s", cfg.Embeddings.Service)
	}
}

// EmbedTexts embeds a batch of texts, one vector per text, via the
// configured client. An empty batch is rejected before any provider call.
func EmbedTexts(
	ctx context.Context,
	appState *models.AppState,
	texts []string,
) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, models.NewBadRequestError("no texts to embed")
	}
	if appState.EmbeddingClient == nil {
		return nil, models.NewEmbeddingUnavailableError("embedding client is not set", nil)
	}
	return appState.EmbeddingClient.EmbedTexts(ctx, texts)
}

// EmbedTokens embeds a token set into a single vector: each token is
// embedded independently by the provider and the results are mean-pooled
// element-wise. An empty token set returns (nil, nil) without a provider
// call; callers treat the nil vector as "nothing to score".
func EmbedTokens(
	ctx context.Context,
	appState *models.AppState,
	tokens []string,
) ([]float32, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	vectors, err := EmbedTexts(ctx, appState, tokens)
	if err != nil {
		return nil, err
	}

	pooled, err := MeanPool(vectors)
	if err != nil {
		return nil, err
	}
	return pooled, nil
}

// MeanPool combines one-vector-per-token embeddings into a single vector via
// an element-wise arithmetic mean. All input vectors must share dimension.
func MeanPool(vectors [][]float32) ([]float32, error) {
	if len(vectors) == 0 {
		return nil, models.NewEmbeddingUnavailableError("provider returned no embeddings", nil)
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, models.NewEmbeddingUnavailableError("provider returned an empty embedding", nil)
	}

	sums := make([]float64, dim)
	for _, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf(
				"%w: expected %d, got %d", models.ErrDimensionMismatch, dim, len(v),
			)
		}
		for i := range v {
			sums[i] += float64(v[i])
		}
	}

	mean := make([]float32, dim)
	n := float64(len(vectors))
	for i := range sums {
		mean[i] = float32(sums[i] / n)
	}
	return mean, nil
}
