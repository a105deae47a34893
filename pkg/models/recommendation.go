package models

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Recommendation is an advisory ranked suggestion. At most one exists per
// (StudentID, MentorID) pair; Upsert replaces score and reason on conflict.
type Recommendation struct {
	UUID      uuid.UUID `json:"uuid"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	StudentID string    `json:"student_id"`
	MentorID  string    `json:"mentor_id"`
	Score     float64   `json:"score"`
	Reason    string    `json:"reason"`
}

// Assignment binds a student to a single mentor. At most one exists per
// StudentID. Assignments consume mentor capacity; recommendations do not.
type Assignment struct {
	UUID      uuid.UUID `json:"uuid"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	StudentID string    `json:"student_id"`
	MentorID  string    `json:"mentor_id"`
	Score     float64   `json:"score"`
}

type RecommendationStore interface {
	// Upsert is keyed on (StudentID, MentorID).
	Upsert(ctx context.Context, recommendation *Recommendation) error
	// GetForStudent returns stored recommendations ordered by score
	// descending, mentor_id ascending.
	GetForStudent(ctx context.Context, studentID string) ([]Recommendation, error)
}

type AssignmentStore interface {
	Get(ctx context.Context, studentID string) (*Assignment, error)
	CountForMentor(ctx context.Context, mentorID string) (int, error)
	// AssignIfCapacity upserts the assignment and its recommendation record
	// only if the mentor's current assignment count is strictly below
	// capacity. The capacity read and both writes are serialized per mentor.
	// Returns ErrMentorAtCapacity when the mentor is full.
	AssignIfCapacity(ctx context.Context, recommendation *Recommendation, capacity int) (*Assignment, error)
}

// MatchStore aggregates the persistence surfaces the recommendation engine
// depends on.
type MatchStore interface {
	Students() StudentStore
	Mentors() MentorStore
	Recommendations() RecommendationStore
	Assignments() AssignmentStore
	Close() error
}
