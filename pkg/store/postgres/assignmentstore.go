package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/jinzhu/copier"
	"github.com/uptrace/bun"

	"github.com/mentormatch/mentormatch/pkg/models"
	"github.com/mentormatch/mentormatch/pkg/store"
)

var _ models.AssignmentStore = &AssignmentStoreDAO{}

type AssignmentStoreDAO struct {
	db *bun.DB
}

func NewAssignmentStoreDAO(db *bun.DB) *AssignmentStoreDAO {
	return &AssignmentStoreDAO{
		db: db,
	}
}

// Get gets the binding assignment for a student, if one exists.
func (dao *AssignmentStoreDAO) Get(
	ctx context.Context,
	studentID string,
) (*models.Assignment, error) {
	assignmentDB := new(AssignmentSchema)
	err := dao.db.NewSelect().
		Model(assignmentDB).
		Where("student_id = ?", studentID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NewNotFoundError("assignment for student " + studentID)
		}
		return nil, err
	}

	assignment := new(models.Assignment)
	if err := copier.Copy(assignment, assignmentDB); err != nil {
		return nil, store.NewStorageError("failed to copy assignment", err)
	}
	return assignment, nil
}

// CountForMentor returns the number of students currently assigned to a
// mentor.
func (dao *AssignmentStoreDAO) CountForMentor(
	ctx context.Context,
	mentorID string,
) (int, error) {
	count, err := dao.db.NewSelect().
		Model((*AssignmentSchema)(nil)).
		Where("mentor_id = ?", mentorID).
		Count(ctx)
	if err != nil {
		return 0, store.NewStorageError("failed to count assignments", err)
	}
	return count, nil
}

// AssignIfCapacity binds a student to a mentor if the mentor's assignment
// count is strictly below capacity. The count and both writes run inside a
// transaction holding a per-mentor transaction-scoped advisory lock, so two
// students racing for the last slot on the same mentor are serialized and
// the cap is never exceeded. The lock is released automatically at commit or
// rollback. Returns ErrMentorAtCapacity when the mentor is full.
func (dao *AssignmentStoreDAO) AssignIfCapacity(
	ctx context.Context,
	recommendation *models.Recommendation,
	capacity int,
) (*models.Assignment, error) {
	if capacity <= 0 {
		return nil, store.NewStorageError(
			fmt.Sprintf("invalid mentor capacity %d", capacity), nil,
		)
	}

	tx, err := dao.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, store.NewStorageError("failed to begin transaction", err)
	}
	defer rollbackOnError(tx)

	lockRetryPolicy := retrypolicy.Builder[any]().
		HandleErrors(models.ErrLockAcquisitionFailed).
		WithBackoff(200*time.Millisecond, 10*time.Second).
		WithMaxRetries(7).
		Build()

	err = failsafe.Run(func() error {
		return tryAcquireAdvisoryXactLock(ctx, tx, "mentor:"+recommendation.MentorID)
	}, lockRetryPolicy)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire advisory lock: %w", err)
	}

	return dao.assignLocked(ctx, tx, recommendation, capacity)
}

func (dao *AssignmentStoreDAO) assignLocked(
	ctx context.Context,
	tx bun.Tx,
	recommendation *models.Recommendation,
	capacity int,
) (*models.Assignment, error) {
	count, err := tx.NewSelect().
		Model((*AssignmentSchema)(nil)).
		Where("mentor_id = ?", recommendation.MentorID).
		Count(ctx)
	if err != nil {
		return nil, store.NewStorageError("failed to count assignments", err)
	}
	if count >= capacity {
		return nil, models.ErrMentorAtCapacity
	}

	if err := upsertRecommendation(ctx, tx, recommendation); err != nil {
		return nil, err
	}

	assignmentDB := AssignmentSchema{
		StudentID: recommendation.StudentID,
		MentorID:  recommendation.MentorID,
		Score:     recommendation.Score,
	}
	_, err = tx.NewInsert().
		Model(&assignmentDB).
		Column("uuid", "created_at", "updated_at", "student_id", "mentor_id", "score").
		On("CONFLICT (student_id) DO UPDATE").
		Set("mentor_id = EXCLUDED.mentor_id").
		Set("score = EXCLUDED.score").
		Set("updated_at = current_timestamp").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, store.NewStorageError("failed to upsert assignment", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, store.NewStorageError("failed to commit assignment", err)
	}

	assignment := new(models.Assignment)
	if err := copier.Copy(assignment, &assignmentDB); err != nil {
		return nil, store.NewStorageError("failed to copy assignment", err)
	}
	return assignment, nil
}

// rollbackOnError rolls back the transaction if an error is encountered.
// If the error is sql.ErrTxDone, the transaction has already been committed
// or rolled back and we ignore the error.
func rollbackOnError(tx bun.Tx) {
	if rollBackErr := tx.Rollback(); rollBackErr != nil && !errors.Is(rollBackErr, sql.ErrTxDone) {
		log.Error("failed to rollback transaction", rollBackErr)
	}
}
