package postgres

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/uptrace/bun/extra/bundebug"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dbfixture"
	"gopkg.in/yaml.v3"

	"github.com/mentormatch/mentormatch/pkg/models"
)

type Row interface {
	StudentSchema | MentorSchema
}

type FixtureModel[T Row] struct {
	Model string `yaml:"model"`
	Rows  []T    `yaml:"rows"`
}

type Fixtures[T Row] []FixtureModel[T]

var fixtureSkills = []string{
	"python", "go", "ml", "statistics", "linux", "sql",
	"c++", "rust", "data analysis", "signal processing",
}

var fixtureInterests = []string{
	"nlp", "robotics", "computer vision", "security",
	"databases", "networking", "compilers", "bioinformatics",
}

var fixtureResearchAreas = []string{
	"Machine Learning", "Deep Learning", "NLP", "Computer Vision",
	"Robotics", "Distributed Systems", "Databases", "Security",
	"Cryptography", "Networking", "Compilers",
}

func generateTimeLastNDays(nDays int) time.Time {
	now := time.Now()
	start := now.Add(time.Duration(-nDays) * 24 * time.Hour)
	return gofakeit.DateRange(start, now)
}

// sampleTokens draws between 1 and max distinct tokens from the pool and
// joins them with commas.
func sampleTokens(pool []string, max int) string {
	shuffled := make([]string, len(pool))
	copy(shuffled, pool)
	gofakeit.ShuffleStrings(shuffled)
	n := gofakeit.Number(1, max)
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return strings.Join(shuffled[:n], ", ")
}

// GenerateFixtureData writes student and mentor fixture YAML files for use
// with LoadFixtures. Mentors are generated without embeddings so a fixture
// load exercises the lazy embedding path.
func GenerateFixtureData(fixtureCount int, outputDir string) {
	fakerGlobal := gofakeit.NewUnlocked(0)
	gofakeit.SetGlobalFaker(fakerGlobal)

	students := make([]StudentSchema, fixtureCount)
	for i := 0; i < fixtureCount; i++ {
		dateCreated := generateTimeLastNDays(14)
		students[i] = StudentSchema{
			UUID:      uuid.New(),
			CreatedAt: dateCreated,
			UpdatedAt: dateCreated,
			StudentID: strings.ToLower(gofakeit.Username()),
			FullName:  gofakeit.Name(),
			Email:     gofakeit.Email(),
			Skills:    sampleTokens(fixtureSkills, 4),
			Interests: sampleTokens(fixtureInterests, 3),
		}
	}

	mentors := make([]MentorSchema, fixtureCount)
	for i := 0; i < fixtureCount; i++ {
		dateCreated := generateTimeLastNDays(14)
		mentors[i] = MentorSchema{
			UUID:          uuid.New(),
			CreatedAt:     dateCreated,
			UpdatedAt:     dateCreated,
			MentorID:      strings.ToLower(gofakeit.Username()),
			FullName:      gofakeit.Name(),
			Email:         gofakeit.Email(),
			Department:    gofakeit.JobDescriptor(),
			ResearchAreas: sampleTokens(fixtureResearchAreas, 4),
		}
	}

	studentFixture := Fixtures[StudentSchema]{
		{
			Model: "StudentSchema",
			Rows:  students,
		},
	}

	mentorFixture := Fixtures[MentorSchema]{
		{
			Model: "MentorSchema",
			Rows:  mentors,
		},
	}

	if outputDir == "" {
		outputDir = "./"
	} else {
		// Create output directory if it doesn't exist
		if _, err := os.Stat(outputDir); os.IsNotExist(err) {
			err = os.Mkdir(outputDir, 0755)
			if err != nil {
				fmt.Printf("unable to create %s: %v", outputDir, err)
				return
			}
		}
	}

	writeFixtureToYAML(studentFixture, outputDir, "student_fixtures.yaml")
	writeFixtureToYAML(mentorFixture, outputDir, "mentor_fixtures.yaml")
}

func writeFixtureToYAML[T Row](fixtures Fixtures[T], outputDir, filename string) {
	data, err := yaml.Marshal(&fixtures)
	if err != nil {
		fmt.Printf("error: %v", err)
		return
	}

	file, err := os.Create(filepath.Join(outputDir, filename))
	if err != nil {
		fmt.Printf("error: %v", err)
		return
	}
	defer func(file *os.File) {
		err := file.Close()
		if err != nil {
			fmt.Printf("error: %v", err)
			return
		}
	}(file)

	_, err = file.Write(data)
	if err != nil {
		fmt.Printf("error: %v", err)
		return
	}

	fmt.Printf("Fixtures generated successfully in %s!\n", filename)
}

// LoadFixtures drops and recreates the schema, then loads all YAML fixtures
// found in fixturePath.
func LoadFixtures(
	ctx context.Context,
	appState *models.AppState,
	db *bun.DB,
	fixturePath string,
) error {
	db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))

	dropSchemaQuery := `DROP SCHEMA public CASCADE;
CREATE SCHEMA public;
GRANT ALL ON SCHEMA public TO postgres;
GRANT ALL ON SCHEMA public TO public;`

	_, err := db.ExecContext(ctx, dropSchemaQuery)
	if err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}

	err = enablePgVectorExtension(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to enable pg_vector extension: %w", err)
	}

	err = CreateSchema(ctx, appState, db)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	db.RegisterModel(
		(*StudentSchema)(nil),
		(*MentorSchema)(nil),
		(*RecommendationSchema)(nil),
		(*AssignmentSchema)(nil),
	)

	fixture := dbfixture.New(db, dbfixture.WithRecreateTables())

	files, err := os.ReadDir(fixturePath)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, file := range files {
		if !file.IsDir() {
			switch filepath.Ext(file.Name()) {
			case ".yaml", ".yml":
				err := fixture.Load(ctx, os.DirFS(fixturePath), file.Name())
				if err != nil {
					return fmt.Errorf("failed to load fixture %s: %w", file.Name(), err)
				}
			}
		}
	}

	return nil
}
