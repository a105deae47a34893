package matcher

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentormatch/mentormatch/config"
	"github.com/mentormatch/mentormatch/pkg/models"
)

// fakeEmbeddingClient returns a fixed vector per text and counts provider
// calls so tests can assert on laziness and idempotence.
type fakeEmbeddingClient struct {
	vectors map[string][]float32
	calls   int
}

func (c *fakeEmbeddingClient) EmbedTexts(
	_ context.Context,
	texts []string,
) ([][]float32, error) {
	c.calls++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, ok := c.vectors[text]
		if !ok {
			v = []float32{1.0, 0.0, 0.0}
		}
		out[i] = v
	}
	return out, nil
}

// fakeMatchStore is an in-memory MatchStore with the same ordering and
// conflict semantics as the Postgres DAOs.
type fakeMatchStore struct {
	mu          sync.Mutex
	students    map[string]*models.Student
	mentors     map[string]*models.Mentor
	recs        map[string][]models.Recommendation
	assignments map[string]*models.Assignment
}

func newFakeMatchStore() *fakeMatchStore {
	return &fakeMatchStore{
		students:    make(map[string]*models.Student),
		mentors:     make(map[string]*models.Mentor),
		recs:        make(map[string][]models.Recommendation),
		assignments: make(map[string]*models.Assignment),
	}
}

func (s *fakeMatchStore) Students() models.StudentStore { return &fakeStudentStore{s} }

func (s *fakeMatchStore) Mentors() models.MentorStore { return &fakeMentorStore{s} }

func (s *fakeMatchStore) Recommendations() models.RecommendationStore { return &fakeRecStore{s} }

func (s *fakeMatchStore) Assignments() models.AssignmentStore { return &fakeAssignmentStore{s} }

func (s *fakeMatchStore) Close() error { return nil }

type fakeStudentStore struct{ s *fakeMatchStore }

func (f *fakeStudentStore) Create(
	_ context.Context,
	req *models.CreateStudentRequest,
) (*models.Student, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	student := &models.Student{
		StudentID: req.StudentID,
		FullName:  req.FullName,
		Email:     req.Email,
		Skills:    req.Skills,
		Interests: req.Interests,
	}
	f.s.students[req.StudentID] = student
	return student, nil
}

func (f *fakeStudentStore) Get(_ context.Context, studentID string) (*models.Student, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	student, ok := f.s.students[studentID]
	if !ok {
		return nil, models.NewNotFoundError("student " + studentID)
	}
	return student, nil
}

func (f *fakeStudentStore) Update(
	_ context.Context,
	req *models.UpdateStudentRequest,
) (*models.Student, error) {
	return nil, models.NewNotFoundError("student " + req.StudentID)
}

func (f *fakeStudentStore) ListAll(
	_ context.Context,
	_ int64,
	_ int,
) ([]*models.Student, error) {
	return nil, nil
}

type fakeMentorStore struct{ s *fakeMatchStore }

func (f *fakeMentorStore) Create(
	_ context.Context,
	req *models.CreateMentorRequest,
) (*models.Mentor, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	mentor := &models.Mentor{
		MentorID:      req.MentorID,
		FullName:      req.FullName,
		Email:         req.Email,
		Department:    req.Department,
		ResearchAreas: req.ResearchAreas,
	}
	f.s.mentors[req.MentorID] = mentor
	return mentor, nil
}

func (f *fakeMentorStore) Get(_ context.Context, mentorID string) (*models.Mentor, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	mentor, ok := f.s.mentors[mentorID]
	if !ok {
		return nil, models.NewNotFoundError("mentor " + mentorID)
	}
	return mentor, nil
}

func (f *fakeMentorStore) Update(
	_ context.Context,
	req *models.UpdateMentorRequest,
) (*models.Mentor, error) {
	return nil, models.NewNotFoundError("mentor " + req.MentorID)
}

func (f *fakeMentorStore) ListAll(
	_ context.Context,
	_ int64,
	_ int,
) ([]*models.Mentor, error) {
	return f.list(func(*models.Mentor) bool { return true }), nil
}

func (f *fakeMentorStore) ListEmbedded(_ context.Context) ([]*models.Mentor, error) {
	return f.list(func(m *models.Mentor) bool { return m.Embedding != nil }), nil
}

func (f *fakeMentorStore) ListUnembedded(_ context.Context) ([]*models.Mentor, error) {
	return f.list(func(m *models.Mentor) bool { return m.Embedding == nil }), nil
}

func (f *fakeMentorStore) list(keep func(*models.Mentor) bool) []*models.Mentor {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.Mentor
	for _, m := range f.s.mentors {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MentorID < out[j].MentorID })
	return out
}

func (f *fakeMentorStore) UpdateEmbedding(
	_ context.Context,
	mentorID string,
	embedding []float32,
) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	mentor, ok := f.s.mentors[mentorID]
	if !ok {
		return models.NewNotFoundError("mentor " + mentorID)
	}
	mentor.Embedding = embedding
	return nil
}

type fakeRecStore struct{ s *fakeMatchStore }

func (f *fakeRecStore) Upsert(_ context.Context, rec *models.Recommendation) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.upsertRecLocked(rec)
	return nil
}

func (s *fakeMatchStore) upsertRecLocked(rec *models.Recommendation) {
	recs := s.recs[rec.StudentID]
	for i := range recs {
		if recs[i].MentorID == rec.MentorID {
			recs[i] = *rec
			return
		}
	}
	s.recs[rec.StudentID] = append(recs, *rec)
}

func (f *fakeRecStore) GetForStudent(
	_ context.Context,
	studentID string,
) ([]models.Recommendation, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	recs := make([]models.Recommendation, len(f.s.recs[studentID]))
	copy(recs, f.s.recs[studentID])
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].MentorID < recs[j].MentorID
	})
	return recs, nil
}

type fakeAssignmentStore struct{ s *fakeMatchStore }

func (f *fakeAssignmentStore) Get(
	_ context.Context,
	studentID string,
) (*models.Assignment, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	assignment, ok := f.s.assignments[studentID]
	if !ok {
		return nil, models.NewNotFoundError("assignment for student " + studentID)
	}
	return assignment, nil
}

func (f *fakeAssignmentStore) CountForMentor(
	_ context.Context,
	mentorID string,
) (int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return f.s.countForMentorLocked(mentorID), nil
}

func (s *fakeMatchStore) countForMentorLocked(mentorID string) int {
	count := 0
	for _, a := range s.assignments {
		if a.MentorID == mentorID {
			count++
		}
	}
	return count
}

func (f *fakeAssignmentStore) AssignIfCapacity(
	_ context.Context,
	rec *models.Recommendation,
	capacity int,
) (*models.Assignment, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.countForMentorLocked(rec.MentorID) >= capacity {
		return nil, models.ErrMentorAtCapacity
	}
	f.s.upsertRecLocked(rec)
	assignment := &models.Assignment{
		StudentID: rec.StudentID,
		MentorID:  rec.MentorID,
		Score:     rec.Score,
	}
	f.s.assignments[rec.StudentID] = assignment
	return assignment, nil
}

func newTestAppState(strategy string, client *fakeEmbeddingClient) (*models.AppState, *fakeMatchStore) {
	cfg := &config.Config{}
	cfg.Matching.Strategy = strategy
	cfg.Matching.TopK = 2
	cfg.Matching.MentorCapacity = 1
	store := newFakeMatchStore()
	return &models.AppState{
		EmbeddingClient: client,
		MatchStore:      store,
		Config:          cfg,
	}, store
}

func seedMentors(t *testing.T, appState *models.AppState) {
	t.Helper()
	ctx := context.Background()
	mentors := []models.CreateMentorRequest{
		{MentorID: "m-ada", ResearchAreas: "ML, Robotics"},
		{MentorID: "m-grace", ResearchAreas: "Databases"},
		{MentorID: "m-alan", ResearchAreas: "Security"},
	}
	for i := range mentors {
		_, err := appState.MatchStore.Mentors().Create(ctx, &mentors[i])
		require.NoError(t, err)
	}
}

func seedStudent(t *testing.T, appState *models.AppState, studentID, skills, interests string) {
	t.Helper()
	_, err := appState.MatchStore.Students().Create(context.Background(), &models.CreateStudentRequest{
		StudentID: studentID,
		Skills:    skills,
		Interests: interests,
	})
	require.NoError(t, err)
}

// mlClient maps research and skill tokens onto three nearly independent
// directions so ranking order is predictable: ml-related tokens score
// highest for an ml-interested student, databases second, security last.
func mlClient() *fakeEmbeddingClient {
	return &fakeEmbeddingClient{
		vectors: map[string][]float32{
			"ml":        {1.0, 0.0, 0.0},
			"ML":        {1.0, 0.0, 0.0},
			"Robotics":  {0.8, 0.6, 0.0},
			"Databases": {0.2, 1.0, 0.0},
			"Security":  {0.0, 0.1, 1.0},
		},
	}
}

func TestEnsureMentorEmbeddings(t *testing.T) {
	client := mlClient()
	appState, store := newTestAppState("advisory", client)
	seedMentors(t, appState)

	ctx := context.Background()
	require.NoError(t, EnsureMentorEmbeddings(ctx, appState))

	embedded, err := store.Mentors().ListEmbedded(ctx)
	require.NoError(t, err)
	assert.Len(t, embedded, 3)

	// m-ada's vector is the mean of its two token vectors.
	ada, err := store.Mentors().Get(ctx, "m-ada")
	require.NoError(t, err)
	assert.InDelta(t, 0.9, ada.Embedding[0], 1e-6)
	assert.InDelta(t, 0.3, ada.Embedding[1], 1e-6)

	// A second pass finds nothing to embed and makes no provider calls.
	callsAfterFirstPass := client.calls
	require.NoError(t, EnsureMentorEmbeddings(ctx, appState))
	assert.Equal(t, callsAfterFirstPass, client.calls)
}

func TestEnsureMentorEmbeddingsSkipsTokenless(t *testing.T) {
	client := mlClient()
	appState, store := newTestAppState("advisory", client)

	ctx := context.Background()
	_, err := store.Mentors().Create(ctx, &models.CreateMentorRequest{
		MentorID:      "m-empty",
		ResearchAreas: " , ",
	})
	require.NoError(t, err)

	require.NoError(t, EnsureMentorEmbeddings(ctx, appState))
	assert.Equal(t, 0, client.calls)

	embedded, err := store.Mentors().ListEmbedded(ctx)
	require.NoError(t, err)
	assert.Empty(t, embedded)
}

func TestGetOrGenerateAdvisory(t *testing.T) {
	client := mlClient()
	appState, _ := newTestAppState("advisory", client)
	seedMentors(t, appState)
	seedStudent(t, appState, "s-alice", "ml", "")

	ctx := context.Background()
	recs, err := GetOrGenerate(ctx, appState, "s-alice")
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "m-ada", recs[0].MentorID)
	assert.Equal(t, "m-grace", recs[1].MentorID)
	assert.Greater(t, recs[0].Score, recs[1].Score)
	assert.Equal(t, "Matched areas: ml", recs[0].Reason)
	assert.Equal(t, "Semantic match", recs[1].Reason)

	// The second call is a cache hit: same result, no new provider calls.
	callsAfterGeneration := client.calls
	recsAgain, err := GetOrGenerate(ctx, appState, "s-alice")
	require.NoError(t, err)
	assert.Equal(t, recs, recsAgain)
	assert.Equal(t, callsAfterGeneration, client.calls)
}

func TestGetOrGenerateAssignment(t *testing.T) {
	client := mlClient()
	appState, store := newTestAppState("assignment", client)
	seedMentors(t, appState)
	seedStudent(t, appState, "s-alice", "ml", "")

	ctx := context.Background()
	recs, err := GetOrGenerate(ctx, appState, "s-alice")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "m-ada", recs[0].MentorID)

	assignment, err := store.Assignments().Get(ctx, "s-alice")
	require.NoError(t, err)
	assert.Equal(t, "m-ada", assignment.MentorID)

	// Repeated calls return the stored assignment, not a new one.
	callsAfterGeneration := client.calls
	recsAgain, err := GetOrGenerate(ctx, appState, "s-alice")
	require.NoError(t, err)
	require.Len(t, recsAgain, 1)
	assert.Equal(t, "m-ada", recsAgain[0].MentorID)
	assert.Equal(t, callsAfterGeneration, client.calls)
}

func TestAssignmentSpillover(t *testing.T) {
	client := mlClient()
	appState, store := newTestAppState("assignment", client)
	seedMentors(t, appState)

	ctx := context.Background()

	// Capacity is 1, so each successive ml student spills to the next
	// ranked mentor.
	students := []string{"s-one", "s-two", "s-three"}
	expected := []string{"m-ada", "m-grace", "m-alan"}
	for i, studentID := range students {
		seedStudent(t, appState, studentID, "ml", "")
		recs, err := GetOrGenerate(ctx, appState, studentID)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, expected[i], recs[0].MentorID)
	}

	// All mentors full: the next student gets no assignment and no writes.
	seedStudent(t, appState, "s-four", "ml", "")
	_, err := GetOrGenerate(ctx, appState, "s-four")
	assert.ErrorIs(t, err, models.ErrNoCapacityAvailable)

	_, err = store.Assignments().Get(ctx, "s-four")
	assert.ErrorIs(t, err, models.ErrNotFound)
	recs, err := store.Recommendations().GetForStudent(ctx, "s-four")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestAssignmentCapacityNeverExceeded(t *testing.T) {
	client := mlClient()
	appState, store := newTestAppState("assignment", client)
	appState.Config.Matching.MentorCapacity = 2
	seedMentors(t, appState)

	ctx := context.Background()
	for _, studentID := range []string{"s-a", "s-b", "s-c", "s-d", "s-e"} {
		seedStudent(t, appState, studentID, "ml", "")
		_, err := GetOrGenerate(ctx, appState, studentID)
		require.NoError(t, err)
	}

	for _, mentorID := range []string{"m-ada", "m-grace", "m-alan"} {
		count, err := store.Assignments().CountForMentor(ctx, mentorID)
		require.NoError(t, err)
		assert.LessOrEqual(t, count, 2)
	}
}

func TestGetOrGenerateInsufficientProfile(t *testing.T) {
	appState, _ := newTestAppState("assignment", mlClient())
	seedMentors(t, appState)
	seedStudent(t, appState, "s-empty", "", " , ")

	_, err := GetOrGenerate(context.Background(), appState, "s-empty")
	assert.ErrorIs(t, err, models.ErrInsufficientProfileData)
}

func TestGetOrGenerateStudentNotFound(t *testing.T) {
	appState, _ := newTestAppState("assignment", mlClient())
	seedMentors(t, appState)

	_, err := GetOrGenerate(context.Background(), appState, "s-missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestScoreAndRankTieBreak(t *testing.T) {
	vector := []float32{1.0, 0.0}
	mentors := []*models.Mentor{
		{MentorID: "m-zed", Embedding: []float32{2.0, 0.0}},
		{MentorID: "m-abe", Embedding: []float32{1.0, 0.0}},
	}

	ranked, err := scoreAndRank(vector, []string{"ml"}, mentors)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	// Identical scores order by mentor_id ascending.
	assert.Equal(t, "m-abe", ranked[0].Mentor.MentorID)
	assert.Equal(t, "m-zed", ranked[1].Mentor.MentorID)
}

func TestScoreAndRankSkipsDegenerate(t *testing.T) {
	vector := []float32{1.0, 0.0}
	mentors := []*models.Mentor{
		{MentorID: "m-zero", Embedding: []float32{0.0, 0.0}},
		{MentorID: "m-ok", Embedding: []float32{1.0, 1.0}},
	}

	ranked, err := scoreAndRank(vector, nil, mentors)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "m-ok", ranked[0].Mentor.MentorID)
}

func TestScoreAndRankDimensionMismatch(t *testing.T) {
	vector := []float32{1.0, 0.0}
	mentors := []*models.Mentor{
		{MentorID: "m-bad", Embedding: []float32{1.0, 0.0, 0.0}},
	}

	_, err := scoreAndRank(vector, nil, mentors)
	assert.ErrorIs(t, err, models.ErrDimensionMismatch)
}

func TestMatchReason(t *testing.T) {
	assert.Equal(
		t,
		"Matched areas: ml",
		matchReason([]string{"ml", "statistics"}, []string{"ML", "Robotics"}),
	)
	assert.Equal(
		t,
		"Matched areas: ml, robotics",
		matchReason([]string{"ml", "robotics"}, []string{"ML", "Robotics"}),
	)
	assert.Equal(
		t,
		"Semantic match",
		matchReason([]string{"databases"}, []string{"ML", "Robotics"}),
	)
}

func TestParseStrategy(t *testing.T) {
	strategy, err := ParseStrategy("advisory")
	assert.NoError(t, err)
	assert.Equal(t, AdvisoryRanking, strategy)

	strategy, err = ParseStrategy("assignment")
	assert.NoError(t, err)
	assert.Equal(t, CapacityConstrainedAssignment, strategy)

	strategy, err = ParseStrategy("")
	assert.NoError(t, err)
	assert.Equal(t, CapacityConstrainedAssignment, strategy)

	_, err = ParseStrategy("bogus")
	assert.Error(t, err)
}
