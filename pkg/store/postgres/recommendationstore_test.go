//go:build testutils

package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentormatch/mentormatch/pkg/models"
	"github.com/mentormatch/mentormatch/pkg/testutils"
)

func createTestStudent(t *testing.T) *models.Student {
	t.Helper()
	studentID, err := testutils.GenerateRandomID(16)
	require.NoError(t, err)

	student, err := NewStudentStoreDAO(testDB).Create(testCtx, &models.CreateStudentRequest{
		StudentID: studentID,
		Skills:    "python, ml",
		Interests: "nlp",
	})
	require.NoError(t, err)
	return student
}

func TestRecommendationStoreDAO(t *testing.T) {
	recStore := NewRecommendationStoreDAO(testDB)

	student := createTestStudent(t)
	mentorA := createTestMentor(t, "Machine Learning")
	mentorB := createTestMentor(t, "Databases")

	t.Run("Upsert and GetForStudent ordering", func(t *testing.T) {
		low := &models.Recommendation{
			StudentID: student.StudentID,
			MentorID:  mentorB.MentorID,
			Score:     0.2,
			Reason:    "Semantic match",
		}
		high := &models.Recommendation{
			StudentID: student.StudentID,
			MentorID:  mentorA.MentorID,
			Score:     0.9,
			Reason:    "Matched areas: ml",
		}
		require.NoError(t, recStore.Upsert(testCtx, low))
		require.NoError(t, recStore.Upsert(testCtx, high))

		recs, err := recStore.GetForStudent(testCtx, student.StudentID)
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, mentorA.MentorID, recs[0].MentorID)
		assert.Equal(t, 0.9, recs[0].Score)
		assert.Equal(t, mentorB.MentorID, recs[1].MentorID)
	})

	t.Run("Upsert on conflict replaces score and reason", func(t *testing.T) {
		require.NoError(t, recStore.Upsert(testCtx, &models.Recommendation{
			StudentID: student.StudentID,
			MentorID:  mentorA.MentorID,
			Score:     0.5,
			Reason:    "Semantic match",
		}))

		recs, err := recStore.GetForStudent(testCtx, student.StudentID)
		require.NoError(t, err)
		require.Len(t, recs, 2)
		for _, rec := range recs {
			if rec.MentorID == mentorA.MentorID {
				assert.Equal(t, 0.5, rec.Score)
				assert.Equal(t, "Semantic match", rec.Reason)
			}
		}
	})

	t.Run("GetForStudent with no rows is empty", func(t *testing.T) {
		recs, err := recStore.GetForStudent(testCtx, "missing-student")
		assert.NoError(t, err)
		assert.Empty(t, recs)
	})
}
