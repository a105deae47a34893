// Package matcher implements the recommendation engine: lazy mentor
// embedding, similarity scoring, ranking, and the two generation strategies
// (advisory top-K ranking and capacity-constrained single assignment).
package matcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/mentormatch/mentormatch/internal"
	"github.com/mentormatch/mentormatch/pkg/embeddings"
	"github.com/mentormatch/mentormatch/pkg/models"
)

var log = internal.GetLogger()

// Strategy selects how generated rankings are persisted. The two strategies
// have different persistence targets and failure modes and are never merged.
type Strategy string

const (
	// AdvisoryRanking persists the top-K ranked mentors as advisory
	// recommendations. No capacity is consumed.
	AdvisoryRanking Strategy = "advisory"
	// CapacityConstrainedAssignment binds the student to the highest-ranked
	// mentor with remaining capacity.
	CapacityConstrainedAssignment Strategy = "assignment"
)

const (
	DefaultTopK           = 5
	DefaultMentorCapacity = 3
)

// ParseStrategy validates a configured strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case AdvisoryRanking, CapacityConstrainedAssignment:
		return Strategy(s), nil
	case "":
		return CapacityConstrainedAssignment, nil
	default:
		return "", fmt.Errorf("invalid matching strategy: %q", s)
	}
}

// GetOrGenerate returns the stored recommendation result for a student, or
// generates, persists, and returns a fresh one. Generation happens at most
// once per student: subsequent calls are pure cache hits.
func GetOrGenerate(
	ctx context.Context,
	appState *models.AppState,
	studentID string,
) ([]models.Recommendation, error) {
	strategy, err := ParseStrategy(appState.Config.Matching.Strategy)
	if err != nil {
		return nil, err
	}

	if cached, err := cachedResult(ctx, appState, strategy, studentID); err != nil {
		return nil, err
	} else if cached != nil {
		log.Debugf("returning stored recommendations for student %s", studentID)
		return cached, nil
	}

	ranked, err := rankForStudent(ctx, appState, studentID)
	if err != nil {
		return nil, err
	}

	switch strategy {
	case AdvisoryRanking:
		return persistAdvisory(ctx, appState, studentID, ranked)
	default:
		return persistAssignment(ctx, appState, studentID, ranked)
	}
}

// cachedResult implements the at-most-once generation guarantee. In
// assignment mode the binding assignment is authoritative; in advisory mode
// any stored recommendations are.
func cachedResult(
	ctx context.Context,
	appState *models.AppState,
	strategy Strategy,
	studentID string,
) ([]models.Recommendation, error) {
	store := appState.MatchStore

	if strategy == CapacityConstrainedAssignment {
		assignment, err := store.Assignments().Get(ctx, studentID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, nil
			}
			return nil, err
		}

		recs, err := store.Recommendations().GetForStudent(ctx, studentID)
		if err != nil {
			return nil, err
		}
		for i := range recs {
			if recs[i].MentorID == assignment.MentorID {
				return recs[i : i+1], nil
			}
		}
		// The recommendation row is written with the assignment; if it is
		// missing, reconstruct the result from the assignment itself.
		return []models.Recommendation{{
			StudentID: assignment.StudentID,
			MentorID:  assignment.MentorID,
			Score:     assignment.Score,
		}}, nil
	}

	recs, err := store.Recommendations().GetForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs, nil
}

// rankForStudent runs the shared pipeline: embedding prerequisite, student
// vector, scoring, ranking.
func rankForStudent(
	ctx context.Context,
	appState *models.AppState,
	studentID string,
) ([]ScoredMentor, error) {
	if err := EnsureMentorEmbeddings(ctx, appState); err != nil {
		return nil, err
	}

	student, err := appState.MatchStore.Students().Get(ctx, studentID)
	if err != nil {
		return nil, err
	}

	keywords := student.Keywords()
	if len(keywords) == 0 {
		return nil, models.ErrInsufficientProfileData
	}

	studentVector, err := embeddings.EmbedTokens(ctx, appState, keywords)
	if err != nil {
		return nil, err
	}

	mentors, err := appState.MatchStore.Mentors().ListEmbedded(ctx)
	if err != nil {
		return nil, err
	}

	return scoreAndRank(studentVector, keywords, mentors)
}

// persistAdvisory upserts the top-K candidates as recommendations and
// returns them in ranked order.
func persistAdvisory(
	ctx context.Context,
	appState *models.AppState,
	studentID string,
	ranked []ScoredMentor,
) ([]models.Recommendation, error) {
	topK := appState.Config.Matching.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	recs := make([]models.Recommendation, len(ranked))
	for i, candidate := range ranked {
		recs[i] = models.Recommendation{
			StudentID: studentID,
			MentorID:  candidate.Mentor.MentorID,
			Score:     candidate.Score,
			Reason:    candidate.Reason,
		}
		if err := appState.MatchStore.Recommendations().Upsert(ctx, &recs[i]); err != nil {
			return nil, err
		}
	}

	return recs, nil
}

// persistAssignment walks the ranked list and binds the student to the first
// mentor with remaining capacity. The capacity check and both writes are one
// critical section per mentor inside the store. No mentor with capacity
// left means no writes at all.
func persistAssignment(
	ctx context.Context,
	appState *models.AppState,
	studentID string,
	ranked []ScoredMentor,
) ([]models.Recommendation, error) {
	capacity := appState.Config.Matching.MentorCapacity
	if capacity <= 0 {
		capacity = DefaultMentorCapacity
	}

	for _, candidate := range ranked {
		rec := models.Recommendation{
			StudentID: studentID,
			MentorID:  candidate.Mentor.MentorID,
			Score:     candidate.Score,
			Reason:    candidate.Reason,
		}

		_, err := appState.MatchStore.Assignments().AssignIfCapacity(ctx, &rec, capacity)
		if err != nil {
			if errors.Is(err, models.ErrMentorAtCapacity) {
				continue
			}
			return nil, err
		}

		log.Infof(
			"assigned student %s to mentor %s (score %.4f)",
			studentID, rec.MentorID, rec.Score,
		)
		return []models.Recommendation{rec}, nil
	}

	return nil, models.ErrNoCapacityAvailable
}
