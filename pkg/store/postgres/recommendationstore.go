package postgres

import (
	"context"

	"github.com/jinzhu/copier"
	"github.com/uptrace/bun"

	"github.com/mentormatch/mentormatch/pkg/models"
	"github.com/mentormatch/mentormatch/pkg/store"
)

var _ models.RecommendationStore = &RecommendationStoreDAO{}

type RecommendationStoreDAO struct {
	db *bun.DB
}

func NewRecommendationStoreDAO(db *bun.DB) *RecommendationStoreDAO {
	return &RecommendationStoreDAO{
		db: db,
	}
}

// Upsert stores a recommendation, keyed on (student_id, mentor_id). On
// conflict the score and reason are replaced.
func (dao *RecommendationStoreDAO) Upsert(
	ctx context.Context,
	recommendation *models.Recommendation,
) error {
	return upsertRecommendation(ctx, dao.db, recommendation)
}

// upsertRecommendation accepts a bun.IDB so the assignment critical section
// can reuse it inside a transaction.
func upsertRecommendation(
	ctx context.Context,
	db bun.IDB,
	recommendation *models.Recommendation,
) error {
	if recommendation.StudentID == "" || recommendation.MentorID == "" {
		return store.NewStorageError("recommendation is missing student_id or mentor_id", nil)
	}

	recDB := RecommendationSchema{}
	if err := copier.Copy(&recDB, recommendation); err != nil {
		return store.NewStorageError("failed to copy recommendation", err)
	}

	_, err := db.NewInsert().
		Model(&recDB).
		Column("uuid", "created_at", "updated_at", "student_id", "mentor_id",
			"score", "reason").
		On("CONFLICT (student_id, mentor_id) DO UPDATE").
		Set("score = EXCLUDED.score").
		Set("reason = EXCLUDED.reason").
		Set("updated_at = current_timestamp").
		Exec(ctx)
	if err != nil {
		return store.NewStorageError("failed to upsert recommendation", err)
	}

	return nil
}

// GetForStudent returns all stored recommendations for a student ordered by
// score descending, mentor_id ascending. The secondary order keeps tied
// scores deterministic.
func (dao *RecommendationStoreDAO) GetForStudent(
	ctx context.Context,
	studentID string,
) ([]models.Recommendation, error) {
	var recsDB []RecommendationSchema
	err := dao.db.NewSelect().
		Model(&recsDB).
		Where("student_id = ?", studentID).
		OrderExpr("score DESC, mentor_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, store.NewStorageError("failed to get recommendations", err)
	}

	recs := make([]models.Recommendation, len(recsDB))
	if err := copier.Copy(&recs, &recsDB); err != nil {
		return nil, store.NewStorageError("failed to copy recommendations", err)
	}

	return recs, nil
}
