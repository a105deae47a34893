//go:build testutils

package postgres

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentormatch/mentormatch/pkg/models"
)

func TestAssignmentStoreDAO(t *testing.T) {
	assignmentStore := NewAssignmentStoreDAO(testDB)

	mentor := createTestMentor(t, "Machine Learning")
	studentA := createTestStudent(t)
	studentB := createTestStudent(t)
	studentC := createTestStudent(t)

	t.Run("AssignIfCapacity assigns below capacity", func(t *testing.T) {
		assignment, err := assignmentStore.AssignIfCapacity(testCtx, &models.Recommendation{
			StudentID: studentA.StudentID,
			MentorID:  mentor.MentorID,
			Score:     0.9,
			Reason:    "Matched areas: ml",
		}, 2)
		require.NoError(t, err)
		assert.Equal(t, mentor.MentorID, assignment.MentorID)

		count, err := assignmentStore.CountForMentor(testCtx, mentor.MentorID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		// The recommendation record is written in the same transaction.
		recs, err := NewRecommendationStoreDAO(testDB).GetForStudent(testCtx, studentA.StudentID)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, mentor.MentorID, recs[0].MentorID)
	})

	t.Run("AssignIfCapacity rejects at capacity", func(t *testing.T) {
		_, err := assignmentStore.AssignIfCapacity(testCtx, &models.Recommendation{
			StudentID: studentB.StudentID,
			MentorID:  mentor.MentorID,
			Score:     0.8,
		}, 2)
		require.NoError(t, err)

		_, err = assignmentStore.AssignIfCapacity(testCtx, &models.Recommendation{
			StudentID: studentC.StudentID,
			MentorID:  mentor.MentorID,
			Score:     0.7,
		}, 2)
		assert.ErrorIs(t, err, models.ErrMentorAtCapacity)

		count, err := assignmentStore.CountForMentor(testCtx, mentor.MentorID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("Get", func(t *testing.T) {
		assignment, err := assignmentStore.Get(testCtx, studentA.StudentID)
		require.NoError(t, err)
		assert.Equal(t, mentor.MentorID, assignment.MentorID)
		assert.Equal(t, 0.9, assignment.Score)
	})

	t.Run("Get non-existent assignment should fail", func(t *testing.T) {
		_, err := assignmentStore.Get(testCtx, "missing-student")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("Reassignment does not duplicate the student", func(t *testing.T) {
		otherMentor := createTestMentor(t, "Databases")
		_, err := assignmentStore.AssignIfCapacity(testCtx, &models.Recommendation{
			StudentID: studentA.StudentID,
			MentorID:  otherMentor.MentorID,
			Score:     0.6,
		}, 2)
		require.NoError(t, err)

		assignment, err := assignmentStore.Get(testCtx, studentA.StudentID)
		require.NoError(t, err)
		assert.Equal(t, otherMentor.MentorID, assignment.MentorID)
	})
}

func TestAssignIfCapacityConcurrent(t *testing.T) {
	assignmentStore := NewAssignmentStoreDAO(testDB)
	mentor := createTestMentor(t, "Security")

	const workers = 8
	const capacity = 3

	students := make([]*models.Student, workers)
	for i := range students {
		students[i] = createTestStudent(t)
	}

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = assignmentStore.AssignIfCapacity(testCtx, &models.Recommendation{
				StudentID: students[i].StudentID,
				MentorID:  mentor.MentorID,
				Score:     0.5,
			}, capacity)
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, models.ErrMentorAtCapacity)
		}
	}
	assert.Equal(t, capacity, succeeded)

	count, err := assignmentStore.CountForMentor(testCtx, mentor.MentorID)
	require.NoError(t, err)
	assert.Equal(t, capacity, count)
}
