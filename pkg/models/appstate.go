package models

import (
	"context"

	"github.com/mentormatch/mentormatch/config"
)

// EmbeddingClient converts a batch of texts into one vector per text.
// Implementations own retry and timeout semantics for the provider call.
type EmbeddingClient interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// AppState is a struct that holds the state of the application
// Use cmd.NewAppState to create a new instance
type AppState struct {
	EmbeddingClient EmbeddingClient
	MatchStore      MatchStore
	Config          *config.Config
}
