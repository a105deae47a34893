package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentormatch/mentormatch/config"
	"github.com/mentormatch/mentormatch/pkg/models"
)

func TestMeanPool(t *testing.T) {
	vectors := [][]float32{
		{1.0, 2.0, 3.0},
		{3.0, 4.0, 5.0},
	}
	pooled, err := MeanPool(vectors)
	assert.NoError(t, err)
	assert.Equal(t, []float32{2.0, 3.0, 4.0}, pooled)
}

func TestMeanPoolSingleVector(t *testing.T) {
	pooled, err := MeanPool([][]float32{{0.5, -0.5}})
	assert.NoError(t, err)
	assert.Equal(t, []float32{0.5, -0.5}, pooled)
}

func TestMeanPoolDimensionMismatch(t *testing.T) {
	_, err := MeanPool([][]float32{{1.0, 2.0}, {1.0}})
	assert.ErrorIs(t, err, models.ErrDimensionMismatch)
}

func TestMeanPoolEmpty(t *testing.T) {
	_, err := MeanPool(nil)
	assert.ErrorIs(t, err, models.ErrEmbeddingUnavailable)

	_, err = MeanPool([][]float32{{}})
	assert.ErrorIs(t, err, models.ErrEmbeddingUnavailable)
}

type fixedEmbeddingClient struct {
	vectors [][]float32
	err     error
	calls   int
}

func (c *fixedEmbeddingClient) EmbedTexts(
	_ context.Context,
	texts []string,
) ([][]float32, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.vectors[:len(texts)], nil
}

func TestEmbedTokens(t *testing.T) {
	client := &fixedEmbeddingClient{
		vectors: [][]float32{
			{1.0, 0.0},
			{0.0, 1.0},
		},
	}
	appState := &models.AppState{EmbeddingClient: client, Config: &config.Config{}}

	vector, err := EmbedTokens(context.Background(), appState, []string{"ml", "nlp"})
	assert.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, vector)
	assert.Equal(t, 1, client.calls)
}

func TestEmbedTokensEmptySet(t *testing.T) {
	client := &fixedEmbeddingClient{}
	appState := &models.AppState{EmbeddingClient: client, Config: &config.Config{}}

	// An empty token set is a sentinel, not an error, and makes no
	// provider call.
	vector, err := EmbedTokens(context.Background(), appState, nil)
	assert.NoError(t, err)
	assert.Nil(t, vector)
	assert.Equal(t, 0, client.calls)
}

func TestEmbedTextsEmptyBatch(t *testing.T) {
	appState := &models.AppState{
		EmbeddingClient: &fixedEmbeddingClient{},
		Config:          &config.Config{},
	}
	_, err := EmbedTexts(context.Background(), appState, nil)
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestEmbedTextsNoClient(t *testing.T) {
	appState := &models.AppState{Config: &config.Config{}}
	_, err := EmbedTexts(context.Background(), appState, []string{"ml"})
	assert.ErrorIs(t, err, models.ErrEmbeddingUnavailable)
}

func newTestHTTPClient(t *testing.T, serverURL string) *HTTPEmbeddingClient {
	t.Helper()
	cfg := &config.Config{}
	cfg.Embeddings.URL = serverURL
	cfg.Embeddings.TimeoutSeconds = 5
	client, err := NewHTTPEmbeddingClient(cfg)
	require.NoError(t, err)
	client.httpClient.RetryMax = 0
	return client
}

func TestHTTPEmbeddingClient(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req embeddingRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, []string{"ml", "nlp"}, req.Texts)

			resp := embeddingResponse{
				Embeddings: [][]float32{
					{0.1, 0.2},
					{0.3, 0.4},
				},
			}
			require.NoError(t, json.NewEncoder(w).Encode(resp))
		}),
	)
	defer server.Close()

	client := newTestHTTPClient(t, server.URL)
	vectors, err := client.EmbedTexts(context.Background(), []string{"ml", "nlp"})
	assert.NoError(t, err)
	assert.Equal(t, [][]float32{{0.1, 0.2}, {0.3, 0.4}}, vectors)
}

func TestHTTPEmbeddingClientCountMismatch(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			resp := embeddingResponse{Embeddings: [][]float32{{0.1, 0.2}}}
			require.NoError(t, json.NewEncoder(w).Encode(resp))
		}),
	)
	defer server.Close()

	client := newTestHTTPClient(t, server.URL)
	_, err := client.EmbedTexts(context.Background(), []string{"ml", "nlp"})
	assert.ErrorIs(t, err, models.ErrEmbeddingUnavailable)
}

func TestHTTPEmbeddingClientMalformedBody(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}),
	)
	defer server.Close()

	client := newTestHTTPClient(t, server.URL)
	_, err := client.EmbedTexts(context.Background(), []string{"ml"})
	assert.ErrorIs(t, err, models.ErrEmbeddingUnavailable)
}

func TestHTTPEmbeddingClientServerError(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}),
	)
	defer server.Close()

	client := newTestHTTPClient(t, server.URL)
	_, err := client.EmbedTexts(context.Background(), []string{"ml"})
	assert.ErrorIs(t, err, models.ErrEmbeddingUnavailable)
}
