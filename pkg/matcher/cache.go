package matcher

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/mentormatch/mentormatch/pkg/embeddings"
	"github.com/mentormatch/mentormatch/pkg/models"
)

const mentorEmbedAttempts = 3

// EnsureMentorEmbeddings lazily computes and persists an embedding for every
// mentor that lacks one and has at least one usable research-area token.
// Mentors with no usable tokens are left unembedded and excluded from later
// scoring; that is not an error.
//
// Each mentor is an independent retryable unit: a failure on one mentor is
// logged and skipped so embeddings already persisted earlier in the pass are
// never abandoned. The pass fails only when every attempted mentor failed,
// which indicates the provider itself is down.
//
// Idempotent: once all mentors are embedded, a pass performs no network
// calls.
func EnsureMentorEmbeddings(ctx context.Context, appState *models.AppState) error {
	mentors, err := appState.MatchStore.Mentors().ListUnembedded(ctx)
	if err != nil {
		return err
	}

	var attempted, failed int
	var lastErr error
	for _, mentor := range mentors {
		tokens := mentor.ResearchAreaTokens()
		if len(tokens) == 0 {
			continue
		}
		attempted++

		if err := embedMentor(ctx, appState, mentor.MentorID, tokens); err != nil {
			log.Errorf(
				"failed to embed research areas for mentor %s: %v", mentor.MentorID, err,
			)
			failed++
			lastErr = err
		}
	}

	if attempted > 0 && failed == attempted {
		return models.NewEmbeddingUnavailableError(
			"all mentor embedding attempts failed", lastErr,
		)
	}

	return nil
}

func embedMentor(
	ctx context.Context,
	appState *models.AppState,
	mentorID string,
	tokens []string,
) error {
	return retry.Do(
		func() error {
			vector, err := embeddings.EmbedTokens(ctx, appState, tokens)
			if err != nil {
				return err
			}
			return appState.MatchStore.Mentors().UpdateEmbedding(ctx, mentorID, vector)
		},
		retry.Attempts(mentorEmbedAttempts),
		retry.Delay(time.Second),
		retry.Context(ctx),
	)
}
