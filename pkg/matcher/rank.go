package matcher

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mentormatch/mentormatch/pkg/embeddings"
	"github.com/mentormatch/mentormatch/pkg/models"
)

// ScoredMentor is one ranked candidate.
type ScoredMentor struct {
	Mentor *models.Mentor
	Score  float64
	Reason string
}

// scoreAndRank scores every embedded mentor against the student vector and
// returns the candidates ordered by score descending, mentor_id ascending.
//
// A mentor whose stored vector is degenerate is logged and excluded rather
// than scored as zero. A dimension mismatch is a configuration fault and
// aborts the whole pass.
func scoreAndRank(
	studentVector []float32,
	keywords []string,
	mentors []*models.Mentor,
) ([]ScoredMentor, error) {
	scored := make([]ScoredMentor, 0, len(mentors))
	for _, mentor := range mentors {
		score, err := embeddings.Cosine(studentVector, mentor.Embedding)
		if err != nil {
			if errors.Is(err, models.ErrDegenerateVector) {
				log.Warnf("skipping mentor %s: %v", mentor.MentorID, err)
				continue
			}
			return nil, fmt.Errorf("scoring mentor %s: %w", mentor.MentorID, err)
		}

		scored = append(scored, ScoredMentor{
			Mentor: mentor,
			Score:  score,
			Reason: matchReason(keywords, mentor.ResearchAreaTokens()),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Mentor.MentorID < scored[j].Mentor.MentorID
	})

	return scored, nil
}

// matchReason annotates a candidate with the token intersection of the
// student's keywords and the mentor's research areas. Tokens are compared
// case-folded so "ML" intersects "ml". Advisory metadata only; it never
// affects ranking.
func matchReason(keywords, researchAreas []string) string {
	keywordSet := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		keywordSet[strings.ToLower(k)] = struct{}{}
	}

	var matched []string
	for _, area := range researchAreas {
		folded := strings.ToLower(area)
		if _, ok := keywordSet[folded]; ok {
			matched = append(matched, folded)
		}
	}

	if len(matched) == 0 {
		return "Semantic match"
	}
	return "Matched areas: " + strings.Join(matched, ", ")
}
