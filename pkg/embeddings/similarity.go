package embeddings

import (
	"fmt"
	"math"

	"github.com/viterin/vek/vek32"

	"github.com/mentormatch/mentormatch/pkg/models"
)

// Cosine computes the cosine similarity dot(a,b) / (|a|*|b|) between two
// equal-dimension vectors, in [-1, 1].
//
// Vectors of different dimension must never reach this function; the
// mismatch is reported as ErrDimensionMismatch and callers abort. A
// zero-norm input yields ErrDegenerateVector rather than a NaN score.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf(
			"%w: len(a)=%d, len(b)=%d", models.ErrDimensionMismatch, len(a), len(b),
		)
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("%w: empty vectors", models.ErrDegenerateVector)
	}

	normA := math.Sqrt(float64(vek32.Dot(a, a)))
	normB := math.Sqrt(float64(vek32.Dot(b, b)))
	if normA == 0 || normB == 0 {
		return 0, models.ErrDegenerateVector
	}

	return float64(vek32.Dot(a, b)) / (normA * normB), nil
}
