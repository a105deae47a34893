package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/mentormatch/mentormatch/config"
	"github.com/mentormatch/mentormatch/internal"
	"github.com/mentormatch/mentormatch/pkg/models"
)

const (
	DefaultEmbeddingTimeout  = 30 * time.Second
	MaxEmbeddingAPIAttempts  = 3
	DefaultEmbeddingEndpoint = "http://localhost:8000/embedding"
)

var _ models.EmbeddingClient = &HTTPEmbeddingClient{}

// HTTPEmbeddingClient calls a self-hosted embedding server. The wire format
// is POST {"texts": [...]} returning {"embeddings": [[...], ...]}, one
// vector per input text, same order, equal dimension across the response.
type HTTPEmbeddingClient struct {
	url        string
	httpClient *retryablehttp.Client
}

func NewHTTPEmbeddingClient(cfg *config.Config) (*HTTPEmbeddingClient, error) {
	url := cfg.Embeddings.URL
	if url == "" {
		url = DefaultEmbeddingEndpoint
	}

	timeout := DefaultEmbeddingTimeout
	if cfg.Embeddings.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.Embeddings.TimeoutSeconds) * time.Second
	}

	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = MaxEmbeddingAPIAttempts
	httpClient.HTTPClient.Timeout = timeout
	httpClient.Logger = internal.NewLeveledLogrus(log)
	httpClient.Backoff = retryablehttp.DefaultBackoff

	return &HTTPEmbeddingClient{url: url, httpClient: httpClient}, nil
}

type embeddingRequest struct {
	Texts []string `json:"texts"`
}

type embeddingResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (c *HTTPEmbeddingClient) EmbedTexts(
	ctx context.Context,
	texts []string,
) ([][]float32, error) {
	jsonBody, err := json.Marshal(embeddingRequest{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("error marshaling embedding request: %w", err)
	}

	bodyBytes, err := c.makeEmbedRequest(ctx, jsonBody)
	if err != nil {
		return nil, models.NewEmbeddingUnavailableError("request failed", err)
	}

	var resp embeddingResponse
	if err := json.Unmarshal(bodyBytes, &resp); err != nil {
		return nil, models.NewEmbeddingUnavailableError("malformed response body", err)
	}

	if len(resp.Embeddings) == 0 {
		return nil, models.NewEmbeddingUnavailableError("response contained no embeddings", nil)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, models.NewEmbeddingUnavailableError(
			fmt.Sprintf(
				"expected %d embeddings, got %d", len(texts), len(resp.Embeddings),
			),
			nil,
		)
	}

	return resp.Embeddings, nil
}

func (c *HTTPEmbeddingClient) makeEmbedRequest(
	ctx context.Context,
	jsonBody []byte,
) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.url,
		bytes.NewBuffer(jsonBody),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("Error making POST request to embedding server:", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"embedding server returned %d - %s", resp.StatusCode, resp.Status,
		)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Error reading embedding response body:", err)
		return nil, err
	}

	return bodyBytes, nil
}
