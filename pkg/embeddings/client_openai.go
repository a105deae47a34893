package embeddings

import (
	"context"

	"github.com/tmc/langchaingo/llms/openai"

	"github.com/mentormatch/mentormatch/config"
	"github.com/mentormatch/mentormatch/pkg/models"
)

const OpenAIAPIKeyNotSetError = "MENTORMATCH_OPENAI_API_KEY is not set" //nolint:gosec

// A chat model must be set on the client even when it is only used for
// embeddings.
const openAIPlaceholderModel = "gpt-3.5-turbo"

var _ models.EmbeddingClient = &OpenAIEmbeddingClient{}

// OpenAIEmbeddingClient embeds texts via the OpenAI embeddings API.
type OpenAIEmbeddingClient struct {
	client *openai.Chat
}

func NewOpenAIEmbeddingClient(cfg *config.Config) (*OpenAIEmbeddingClient, error) {
	apiKey := cfg.Embeddings.OpenAIAPIKey
	if apiKey == "" {
		log.Fatal(OpenAIAPIKeyNotSetError)
	}

	client, err := openai.NewChat(
		openai.WithToken(apiKey),
		openai.WithModel(openAIPlaceholderModel),
	)
	if err != nil {
		return nil, err
	}

	return &OpenAIEmbeddingClient{client: client}, nil
}

func (c *OpenAIEmbeddingClient) EmbedTexts(
	ctx context.Context,
	texts []string,
) ([][]float32, error) {
	thisCtx, cancel := context.WithTimeout(ctx, DefaultEmbeddingTimeout)
	defer cancel()

	vectors, err := c.client.CreateEmbedding(thisCtx, texts)
	if err != nil {
		return nil, models.NewEmbeddingUnavailableError("openai embedding failed", err)
	}
	return vectors, nil
}
