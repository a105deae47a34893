package models

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Mentor struct {
	UUID       uuid.UUID `json:"uuid"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	MentorID   string    `json:"mentor_id"`
	FullName   string    `json:"full_name,omitempty"`
	Email      string    `json:"email,omitempty"`
	Department string    `json:"department,omitempty"`
	// ResearchAreas is a comma-joined token string. Use ResearchAreaTokens
	// to obtain the normalized token list.
	ResearchAreas string `json:"research_areas,omitempty"`
	// Embedding is nil until lazily computed from ResearchAreas.
	Embedding []float32 `json:"embedding,omitempty"`
}

// ResearchAreaTokens returns the mentor's normalized research-area tokens.
func (m *Mentor) ResearchAreaTokens() []string {
	return SplitTokens(m.ResearchAreas)
}

type CreateMentorRequest struct {
	MentorID      string `json:"mentor_id" validate:"required"`
	FullName      string `json:"full_name"`
	Email         string `json:"email" validate:"omitempty,email"`
	Department    string `json:"department"`
	ResearchAreas string `json:"research_areas"`
}

type UpdateMentorRequest struct {
	MentorID      string `json:"mentor_id"`
	FullName      string `json:"full_name"`
	Email         string `json:"email" validate:"omitempty,email"`
	Department    string `json:"department"`
	ResearchAreas string `json:"research_areas"`
}

type MentorStore interface {
	Create(ctx context.Context, mentor *CreateMentorRequest) (*Mentor, error)
	Get(ctx context.Context, mentorID string) (*Mentor, error)
	// Update clears the persisted embedding when ResearchAreas changes so it
	// is lazily recomputed on the next generation pass.
	Update(ctx context.Context, mentor *UpdateMentorRequest) (*Mentor, error)
	ListAll(ctx context.Context, cursor int64, limit int) ([]*Mentor, error)
	// ListEmbedded returns mentors with a non-null embedding.
	ListEmbedded(ctx context.Context) ([]*Mentor, error)
	// ListUnembedded returns mentors lacking an embedding.
	ListUnembedded(ctx context.Context) ([]*Mentor, error)
	// UpdateEmbedding persists a computed embedding onto a mentor record.
	UpdateEmbedding(ctx context.Context, mentorID string, embedding []float32) error
}
