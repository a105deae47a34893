package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/mentormatch/mentormatch/internal"
	"github.com/mentormatch/mentormatch/pkg/models"
	"github.com/mentormatch/mentormatch/pkg/store"
)

var log = internal.GetLogger()

// NewPostgresMatchStore returns a new PostgresMatchStore. Use this to correctly initialize the store.
func NewPostgresMatchStore(
	appState *models.AppState,
	client *bun.DB,
) (*PostgresMatchStore, error) {
	if appState == nil {
		return nil, store.NewStorageError("nil appState received", nil)
	}

	pms := &PostgresMatchStore{
		client:          client,
		studentStore:    NewStudentStoreDAO(client),
		mentorStore:     NewMentorStoreDAO(client),
		recommendations: NewRecommendationStoreDAO(client),
		assignments:     NewAssignmentStoreDAO(client),
		appState:        appState,
	}

	err := pms.OnStart(context.Background())
	if err != nil {
		return nil, store.NewStorageError("failed to run OnStart", err)
	}
	return pms, nil
}

// Force compiler to validate that PostgresMatchStore implements the MatchStore interface.
var _ models.MatchStore = &PostgresMatchStore{}

type PostgresMatchStore struct {
	client          *bun.DB
	studentStore    *StudentStoreDAO
	mentorStore     *MentorStoreDAO
	recommendations *RecommendationStoreDAO
	assignments     *AssignmentStoreDAO
	appState        *models.AppState
}

func (pms *PostgresMatchStore) OnStart(ctx context.Context) error {
	err := CreateSchema(ctx, pms.appState, pms.client)
	if err != nil {
		return store.NewStorageError("failed to ensure postgres schema setup", err)
	}

	return nil
}

func (pms *PostgresMatchStore) GetClient() *bun.DB {
	return pms.client
}

func (pms *PostgresMatchStore) Students() models.StudentStore {
	return pms.studentStore
}

func (pms *PostgresMatchStore) Mentors() models.MentorStore {
	return pms.mentorStore
}

func (pms *PostgresMatchStore) Recommendations() models.RecommendationStore {
	return pms.recommendations
}

func (pms *PostgresMatchStore) Assignments() models.AssignmentStore {
	return pms.assignments
}

func (pms *PostgresMatchStore) Close() error {
	if pms.client != nil {
		return pms.client.Close()
	}
	return nil
}

func generateLockID(key string) uint64 {
	hasher := sha256.New()
	hasher.Write([]byte(key))
	hash := hasher.Sum(nil)
	return binary.BigEndian.Uint64(hash[:8])
}

// tryAcquireAdvisoryXactLock attempts to acquire a transaction-scoped
// PostgreSQL advisory lock using pg_try_advisory_xact_lock. The lock lives on
// the transaction's connection and is released automatically at commit or
// rollback; there is no unlock call. Session-level advisory locks do not work
// here: on a pooled *bun.DB the acquiring connection is returned to the pool
// as soon as the row is scanned, so a second caller handed the same
// connection would re-enter the lock and the unlock may run on a different
// session entirely.
// This function will fail if it's unable to immediately acquire the lock.
func tryAcquireAdvisoryXactLock(ctx context.Context, tx bun.Tx, key string) error {
	lockID := generateLockID(key)

	var acquired bool
	if err := tx.QueryRowContext(ctx, "SELECT pg_try_advisory_xact_lock(?)", lockID).Scan(&acquired); err != nil {
		return fmt.Errorf("tryAcquireAdvisoryXactLock: %w", err)
	}
	if !acquired {
		return models.NewAdvisoryLockError(
			fmt.Errorf("failed to acquire advisory lock for %s", key),
		)
	}
	return nil
}
