package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bunotel"

	"github.com/mentormatch/mentormatch/pkg/models"
)

// defaultEmbeddingDims matches the default all-MiniLM class of embedding
// servers. CreateSchema migrates the column when config differs.
const defaultEmbeddingDims = 384

type StudentSchema struct {
	bun.BaseModel `bun:"table:student,alias:st"`

	UUID      uuid.UUID `bun:",pk,type:uuid,default:gen_random_uuid()"`
	ID        int64     `bun:",autoincrement"` // used as a cursor for pagination
	StudentID string    `bun:",unique,notnull"`
	CreatedAt time.Time `bun:"type:timestamptz,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"type:timestamptz,nullzero,notnull,default:current_timestamp"`
	FullName  string    `bun:",nullzero"`
	Email     string    `bun:",nullzero"`
	Skills    string    `bun:",nullzero"`
	Interests string    `bun:",nullzero"`
}

var _ bun.BeforeAppendModelHook = (*StudentSchema)(nil)

func (s *StudentSchema) BeforeAppendModel(_ context.Context, query bun.Query) error {
	if _, ok := query.(*bun.UpdateQuery); ok {
		s.UpdatedAt = time.Now()
	}
	return nil
}

// BeforeCreateTable is a marker method to ensure uniform interface across all table models - used in table creation iterator
func (s *StudentSchema) BeforeCreateTable(
	_ context.Context,
	_ *bun.CreateTableQuery,
) error {
	return nil
}

type MentorSchema struct {
	bun.BaseModel `bun:"table:mentor,alias:mn"`

	UUID          uuid.UUID `bun:",pk,type:uuid,default:gen_random_uuid()"`
	ID            int64     `bun:",autoincrement"`
	MentorID      string    `bun:",unique,notnull"`
	CreatedAt     time.Time `bun:"type:timestamptz,nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"type:timestamptz,nullzero,notnull,default:current_timestamp"`
	FullName      string    `bun:",nullzero"`
	Email         string    `bun:",nullzero"`
	Department    string    `bun:",nullzero"`
	ResearchAreas string    `bun:",nullzero"`
	// Embedding is null until lazily computed from ResearchAreas.
	Embedding pgvector.Vector `bun:"type:vector(384),nullzero"`
	Embedded  bool            `bun:"type:bool,notnull,default:false"`
}

var _ bun.BeforeAppendModelHook = (*MentorSchema)(nil)

func (s *MentorSchema) BeforeAppendModel(_ context.Context, query bun.Query) error {
	if _, ok := query.(*bun.UpdateQuery); ok {
		s.UpdatedAt = time.Now()
	}
	return nil
}

func (s *MentorSchema) BeforeCreateTable(
	_ context.Context,
	_ *bun.CreateTableQuery,
) error {
	return nil
}

// RecommendationSchema stores advisory recommendations, unique per
// (student_id, mentor_id).
type RecommendationSchema struct {
	bun.BaseModel `bun:"table:recommendation,alias:r"`

	UUID      uuid.UUID      `bun:",pk,type:uuid,default:gen_random_uuid()"`
	CreatedAt time.Time      `bun:"type:timestamptz,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time      `bun:"type:timestamptz,nullzero,notnull,default:current_timestamp"`
	StudentID string         `bun:",notnull,unique:rec_student_mentor_idx"`
	MentorID  string         `bun:",notnull,unique:rec_student_mentor_idx"`
	Score     float64        `bun:",notnull"`
	Reason    string         `bun:",nullzero"`
	Student   *StudentSchema `bun:"rel:belongs-to,join:student_id=student_id,on_delete:cascade"`
	Mentor    *MentorSchema  `bun:"rel:belongs-to,join:mentor_id=mentor_id,on_delete:cascade"`
}

var _ bun.BeforeAppendModelHook = (*RecommendationSchema)(nil)

func (s *RecommendationSchema) BeforeAppendModel(_ context.Context, query bun.Query) error {
	if _, ok := query.(*bun.UpdateQuery); ok {
		s.UpdatedAt = time.Now()
	}
	return nil
}

func (s *RecommendationSchema) BeforeCreateTable(
	_ context.Context,
	_ *bun.CreateTableQuery,
) error {
	return nil
}

// AssignmentSchema stores binding assignments, unique per student_id.
type AssignmentSchema struct {
	bun.BaseModel `bun:"table:assignment,alias:a"`

	UUID      uuid.UUID      `bun:",pk,type:uuid,default:gen_random_uuid()"`
	CreatedAt time.Time      `bun:"type:timestamptz,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time      `bun:"type:timestamptz,nullzero,notnull,default:current_timestamp"`
	StudentID string         `bun:",unique,notnull"`
	MentorID  string         `bun:",notnull"`
	Score     float64        `bun:",notnull"`
	Student   *StudentSchema `bun:"rel:belongs-to,join:student_id=student_id,on_delete:cascade"`
	Mentor    *MentorSchema  `bun:"rel:belongs-to,join:mentor_id=mentor_id,on_delete:cascade"`
}

var _ bun.BeforeAppendModelHook = (*AssignmentSchema)(nil)

func (s *AssignmentSchema) BeforeAppendModel(_ context.Context, query bun.Query) error {
	if _, ok := query.(*bun.UpdateQuery); ok {
		s.UpdatedAt = time.Now()
	}
	return nil
}

func (s *AssignmentSchema) BeforeCreateTable(
	_ context.Context,
	_ *bun.CreateTableQuery,
) error {
	return nil
}

// Create lookup indexes after table creation
var _ bun.AfterCreateTableHook = (*MentorSchema)(nil)
var _ bun.AfterCreateTableHook = (*RecommendationSchema)(nil)
var _ bun.AfterCreateTableHook = (*AssignmentSchema)(nil)

func (*MentorSchema) AfterCreateTable(
	ctx context.Context,
	query *bun.CreateTableQuery,
) error {
	_, err := query.DB().NewCreateIndex().
		Model((*MentorSchema)(nil)).
		Index("mentor_embedded_idx").
		Column("embedded").
		Exec(ctx)
	return err
}

func (*RecommendationSchema) AfterCreateTable(
	ctx context.Context,
	query *bun.CreateTableQuery,
) error {
	_, err := query.DB().NewCreateIndex().
		Model((*RecommendationSchema)(nil)).
		Index("recommendation_student_id_idx").
		Column("student_id").
		Exec(ctx)
	return err
}

func (*AssignmentSchema) AfterCreateTable(
	ctx context.Context,
	query *bun.CreateTableQuery,
) error {
	_, err := query.DB().NewCreateIndex().
		Model((*AssignmentSchema)(nil)).
		Index("assignment_mentor_id_idx").
		Column("mentor_id").
		Exec(ctx)
	return err
}

// tableList orders tables so that those carrying foreign keys are created
// last.
var tableList = []bun.BeforeCreateTableHook{
	&StudentSchema{},
	&MentorSchema{},
	&RecommendationSchema{},
	&AssignmentSchema{},
}

// CreateSchema creates the db schema if it does not exist.
func CreateSchema(
	ctx context.Context,
	appState *models.AppState,
	db *bun.DB,
) error {
	for _, schema := range tableList {
		_, err := db.NewCreateTable().
			Model(schema).
			IfNotExists().
			WithForeignKeys().
			Exec(ctx)
		if err != nil {
			// bun still trying to create indexes despite IfNotExists flag
			if strings.Contains(err.Error(), "already exists") {
				continue
			}
			return fmt.Errorf("error creating table for schema %T: %w", schema, err)
		}
	}

	if err := checkMentorEmbeddingDims(ctx, appState, db); err != nil {
		return fmt.Errorf("error checking mentor embedding dimensions: %w", err)
	}

	return nil
}

// checkMentorEmbeddingDims checks the dimensions of the mentor embedding
// column against the configured embedding model. If they do not match, the
// column is dropped and recreated with the correct dimensions. Existing
// vectors are lost and lazily recomputed.
func checkMentorEmbeddingDims(
	ctx context.Context,
	appState *models.AppState,
	db *bun.DB,
) error {
	dimensions := appState.Config.Embeddings.Dimensions
	if dimensions == 0 {
		dimensions = defaultEmbeddingDims
	}

	width, err := getEmbeddingColumnWidth(ctx, "mentor", db)
	if err != nil {
		return fmt.Errorf("error getting embedding column width: %w", err)
	}

	if width != dimensions {
		log.Warnf(
			"mentor embedding dimensions are %d, expected %d. migrating column width to %d; existing embedding vectors will be recomputed",
			width,
			dimensions,
			dimensions,
		)
		if err := migrateMentorEmbeddingDims(ctx, db, dimensions); err != nil {
			return fmt.Errorf("error migrating mentor embedding dimensions: %w", err)
		}
	}
	return nil
}

// getEmbeddingColumnWidth returns the width of the embedding column in the provided table.
func getEmbeddingColumnWidth(ctx context.Context, tableName string, db *bun.DB) (int, error) {
	var width int
	err := db.NewSelect().
		Table("pg_attribute").
		ColumnExpr("atttypmod"). // vector width is stored in atttypmod
		Where("attrelid = ?::regclass", tableName).
		Where("attname = 'embedding'").
		Scan(ctx, &width)
	if err != nil {
		return 0, fmt.Errorf("error getting embedding column width: %w", err)
	}
	return width, nil
}

// migrateMentorEmbeddingDims drops the old embedding column and creates a
// new one with the correct dimensions.
func migrateMentorEmbeddingDims(
	ctx context.Context,
	db *bun.DB,
	dimensions int,
) error {
	columnQuery := `DO $$
BEGIN
    IF EXISTS (
        SELECT 1
        FROM   information_schema.columns
        WHERE  table_name = 'mentor'
        AND    column_name = 'embedding'
    ) THEN
        ALTER TABLE mentor DROP COLUMN embedding;
    END IF;
END $$;`

	_, err := db.ExecContext(ctx, columnQuery)
	if err != nil {
		return fmt.Errorf("error dropping column embedding: %w", err)
	}
	_, err = db.NewAddColumn().
		Model((*MentorSchema)(nil)).
		ColumnExpr(fmt.Sprintf("embedding vector(%d)", dimensions)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("error adding column embedding: %w", err)
	}

	_, err = db.NewUpdate().
		Model((*MentorSchema)(nil)).
		Set("embedded = ?", false).
		Where("embedded = ?", true).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("error resetting embedded flags: %w", err)
	}

	return nil
}

func enablePgVectorExtension(ctx context.Context, db *bun.DB) error {
	_, err := db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("error creating pgvector extension: %w", err)
	}
	return nil
}

// NewPostgresConn creates a new bun.DB connection to a postgres database using the provided DSN.
// The connection is configured to pool connections based on the number of PROCs available.
func NewPostgresConn(appState *models.AppState) (*bun.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	maxOpenConns := 4 * runtime.GOMAXPROCS(0)

	sqldb := sql.OpenDB(
		pgdriver.NewConnector(
			pgdriver.WithDSN(appState.Config.Store.Postgres.DSN),
		),
	)
	sqldb.SetMaxOpenConns(maxOpenConns)
	sqldb.SetMaxIdleConns(maxOpenConns)

	db := bun.NewDB(sqldb, pgdialect.New())
	db.AddQueryHook(bunotel.NewQueryHook(bunotel.WithDBName("mentormatch")))

	if err := enablePgVectorExtension(ctx, db); err != nil {
		log.Print("error enabling pgvector extension: ", err)
		return nil, err
	}

	return db, nil
}
