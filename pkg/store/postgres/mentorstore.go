package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pgvector/pgvector-go"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/mentormatch/mentormatch/pkg/models"
)

var _ models.MentorStore = &MentorStoreDAO{}

type MentorStoreDAO struct {
	db *bun.DB
}

func NewMentorStoreDAO(db *bun.DB) *MentorStoreDAO {
	return &MentorStoreDAO{
		db: db,
	}
}

// Create creates a new mentor.
func (dao *MentorStoreDAO) Create(
	ctx context.Context,
	mentor *models.CreateMentorRequest,
) (*models.Mentor, error) {
	if mentor.MentorID == "" {
		return nil, models.NewBadRequestError("MentorID cannot be empty")
	}
	mentorDB := &MentorSchema{
		MentorID:      mentor.MentorID,
		FullName:      mentor.FullName,
		Email:         mentor.Email,
		Department:    mentor.Department,
		ResearchAreas: mentor.ResearchAreas,
	}
	_, err := dao.db.NewInsert().
		Model(mentorDB).
		Column("uuid", "mentor_id", "created_at", "updated_at", "full_name",
			"email", "department", "research_areas").
		Returning("*").
		Exec(ctx)
	if err != nil {
		if err, ok := err.(pgdriver.Error); ok && err.IntegrityViolation() {
			return nil, models.NewBadRequestError(
				"mentor already exists with mentor_id: " + mentor.MentorID,
			)
		}
		return nil, err
	}

	return mentorSchemaToMentor(mentorDB), nil
}

// Get gets a mentor by MentorID.
func (dao *MentorStoreDAO) Get(ctx context.Context, mentorID string) (*models.Mentor, error) {
	mentor := new(MentorSchema)
	err := dao.db.NewSelect().Model(mentor).Where("mentor_id = ?", mentorID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NewNotFoundError("mentor " + mentorID)
		}
		return nil, err
	}
	return mentorSchemaToMentor(mentor), nil
}

// Update updates a mentor's profile fields. A change to ResearchAreas clears
// the persisted embedding so the next generation pass recomputes it.
func (dao *MentorStoreDAO) Update(
	ctx context.Context,
	mentor *models.UpdateMentorRequest,
) (*models.Mentor, error) {
	if mentor.MentorID == "" {
		return nil, models.NewBadRequestError("MentorID cannot be empty")
	}

	existing, err := dao.Get(ctx, mentor.MentorID)
	if err != nil {
		return nil, err
	}

	mentorDB := MentorSchema{
		FullName:      mentor.FullName,
		Email:         mentor.Email,
		Department:    mentor.Department,
		ResearchAreas: mentor.ResearchAreas,
	}
	columns := []string{"full_name", "email", "department", "research_areas", "updated_at"}

	query := dao.db.NewUpdate().
		Model(&mentorDB).
		Column(columns...).
		Where("mentor_id = ?", mentor.MentorID)

	// Research areas drive the embedding; invalidate it in the same UPDATE.
	if mentor.ResearchAreas != existing.ResearchAreas {
		query = query.
			Set("embedding = NULL").
			Set("embedded = ?", false)
	}

	if _, err := query.Exec(ctx); err != nil {
		return nil, err
	}

	return dao.Get(ctx, mentor.MentorID)
}

// ListAll lists all mentors, paginated by the ID cursor.
func (dao *MentorStoreDAO) ListAll(
	ctx context.Context,
	cursor int64,
	limit int,
) ([]*models.Mentor, error) {
	var mentorsDB []*MentorSchema
	query := dao.db.NewSelect().
		Model(&mentorsDB).
		Where("id > ?", cursor).
		OrderExpr("id ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, err
	}

	return mentorSchemasToMentors(mentorsDB), nil
}

// ListEmbedded returns mentors holding a persisted embedding. Only these
// participate in scoring. Filters on the indexed embedded flag, which is
// kept in lockstep with the embedding column by UpdateEmbedding and Update.
func (dao *MentorStoreDAO) ListEmbedded(ctx context.Context) ([]*models.Mentor, error) {
	var mentorsDB []*MentorSchema
	err := dao.db.NewSelect().
		Model(&mentorsDB).
		Where("embedded = ?", true).
		OrderExpr("mentor_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return mentorSchemasToMentors(mentorsDB), nil
}

// ListUnembedded returns mentors lacking a persisted embedding.
func (dao *MentorStoreDAO) ListUnembedded(ctx context.Context) ([]*models.Mentor, error) {
	var mentorsDB []*MentorSchema
	err := dao.db.NewSelect().
		Model(&mentorsDB).
		Where("embedded = ?", false).
		OrderExpr("mentor_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return mentorSchemasToMentors(mentorsDB), nil
}

// UpdateEmbedding persists a computed embedding onto a mentor record.
func (dao *MentorStoreDAO) UpdateEmbedding(
	ctx context.Context,
	mentorID string,
	embedding []float32,
) error {
	r, err := dao.db.NewUpdate().
		Model((*MentorSchema)(nil)).
		Set("embedding = ?", pgvector.NewVector(embedding)).
		Set("embedded = ?", true).
		Set("updated_at = current_timestamp").
		Where("mentor_id = ?", mentorID).
		Exec(ctx)
	if err != nil {
		return err
	}

	rows, err := r.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.NewNotFoundError("mentor " + mentorID)
	}

	return nil
}

func mentorSchemaToMentor(m *MentorSchema) *models.Mentor {
	mentor := &models.Mentor{
		UUID:          m.UUID,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		MentorID:      m.MentorID,
		FullName:      m.FullName,
		Email:         m.Email,
		Department:    m.Department,
		ResearchAreas: m.ResearchAreas,
	}
	if vec := m.Embedding.Slice(); len(vec) > 0 {
		mentor.Embedding = vec
	}
	return mentor
}

func mentorSchemasToMentors(mentorsDB []*MentorSchema) []*models.Mentor {
	mentors := make([]*models.Mentor, len(mentorsDB))
	for i, mentorDB := range mentorsDB {
		mentors[i] = mentorSchemaToMentor(mentorDB)
	}
	return mentors
}
