package models

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Student struct {
	UUID      uuid.UUID `json:"uuid"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	StudentID string    `json:"student_id"`
	FullName  string    `json:"full_name,omitempty"`
	Email     string    `json:"email,omitempty"`
	// Skills and Interests are comma-joined token strings. Use Keywords to
	// obtain the normalized token set.
	Skills    string `json:"skills,omitempty"`
	Interests string `json:"interests,omitempty"`
}

// Keywords returns the student's keyword set: skills followed by interests,
// trimmed, empties dropped, deduplicated by first occurrence. Order is
// preserved so repeated generation passes see identical input.
func (s *Student) Keywords() []string {
	skills := SplitTokens(s.Skills)
	interests := SplitTokens(s.Interests)
	return dedupeTokens(append(skills, interests...))
}

type CreateStudentRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	FullName  string `json:"full_name"`
	Email     string `json:"email" validate:"omitempty,email"`
	Skills    string `json:"skills"`
	Interests string `json:"interests"`
}

type UpdateStudentRequest struct {
	StudentID string `json:"student_id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email" validate:"omitempty,email"`
	Skills    string `json:"skills"`
	Interests string `json:"interests"`
}

type StudentStore interface {
	Create(ctx context.Context, student *CreateStudentRequest) (*Student, error)
	Get(ctx context.Context, studentID string) (*Student, error)
	Update(ctx context.Context, student *UpdateStudentRequest) (*Student, error)
	ListAll(ctx context.Context, cursor int64, limit int) ([]*Student, error)
}
