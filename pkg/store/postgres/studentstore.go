package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/mentormatch/mentormatch/pkg/models"
)

var _ models.StudentStore = &StudentStoreDAO{}

type StudentStoreDAO struct {
	db *bun.DB
}

func NewStudentStoreDAO(db *bun.DB) *StudentStoreDAO {
	return &StudentStoreDAO{
		db: db,
	}
}

// Create creates a new student.
func (dao *StudentStoreDAO) Create(
	ctx context.Context,
	student *models.CreateStudentRequest,
) (*models.Student, error) {
	if student.StudentID == "" {
		return nil, models.NewBadRequestError("StudentID cannot be empty")
	}
	studentDB := &StudentSchema{
		StudentID: student.StudentID,
		FullName:  student.FullName,
		Email:     student.Email,
		Skills:    student.Skills,
		Interests: student.Interests,
	}
	_, err := dao.db.NewInsert().Model(studentDB).Returning("*").Exec(ctx)
	if err != nil {
		if err, ok := err.(pgdriver.Error); ok && err.IntegrityViolation() {
			return nil, models.NewBadRequestError(
				"student already exists with student_id: " + student.StudentID,
			)
		}
		return nil, err
	}

	return studentSchemaToStudent(studentDB), nil
}

// Get gets a student by StudentID.
func (dao *StudentStoreDAO) Get(
	ctx context.Context,
	studentID string,
) (*models.Student, error) {
	student := new(StudentSchema)
	err := dao.db.NewSelect().
		Model(student).
		Where("student_id = ?", studentID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.NewNotFoundError("student " + studentID)
		}
		return nil, err
	}
	return studentSchemaToStudent(student), nil
}

// Update updates a student's profile fields.
func (dao *StudentStoreDAO) Update(
	ctx context.Context,
	student *models.UpdateStudentRequest,
) (*models.Student, error) {
	if student.StudentID == "" {
		return nil, models.NewBadRequestError("StudentID cannot be empty")
	}

	studentDB := StudentSchema{
		FullName:  student.FullName,
		Email:     student.Email,
		Skills:    student.Skills,
		Interests: student.Interests,
	}
	r, err := dao.db.NewUpdate().
		Model(&studentDB).
		Column("full_name", "email", "skills", "interests", "updated_at").
		Where("student_id = ?", student.StudentID).
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := r.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, models.NewNotFoundError("student " + student.StudentID)
	}

	return dao.Get(ctx, student.StudentID)
}

// ListAll lists all students, paginated by the ID cursor.
func (dao *StudentStoreDAO) ListAll(
	ctx context.Context,
	cursor int64,
	limit int,
) ([]*models.Student, error) {
	var studentsDB []*StudentSchema
	query := dao.db.NewSelect().
		Model(&studentsDB).
		Where("id > ?", cursor).
		OrderExpr("id ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Scan(ctx)
	if err != nil {
		return nil, err
	}

	students := make([]*models.Student, len(studentsDB))
	for i, studentDB := range studentsDB {
		students[i] = studentSchemaToStudent(studentDB)
	}

	return students, nil
}

func studentSchemaToStudent(s *StudentSchema) *models.Student {
	return &models.Student{
		UUID:      s.UUID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		StudentID: s.StudentID,
		FullName:  s.FullName,
		Email:     s.Email,
		Skills:    s.Skills,
		Interests: s.Interests,
	}
}
