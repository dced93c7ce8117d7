package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avillegas/examcore/internal/app/models"
	"github.com/avillegas/examcore/internal/app/services"
	"github.com/avillegas/examcore/internal/db"
	"github.com/avillegas/examcore/internal/pkg/apperrors"
	"github.com/avillegas/examcore/internal/pkg/dberrors"
)

// assignmentColumns are the exam_assignments columns in scan order.
var assignmentColumns = []string{
	"a.id", "a.exam_id", "a.student_id", "a.professor_id",
	"a.application_date", "a.duration_minutes", "a.status", "a.grade",
}

// ExamAssignmentRepository handles database operations for exam assignments
type ExamAssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewExamAssignmentRepository creates a new ExamAssignmentRepository
func NewExamAssignmentRepository(pool *pgxpool.Pool) *ExamAssignmentRepository {
	return &ExamAssignmentRepository{pool: pool}
}

func (r *ExamAssignmentRepository) q(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.pool)
}

func scanAssignment(row pgx.Row, withExam bool) (*models.ExamAssignment, error) {
	var a models.ExamAssignment
	dest := []any{
		&a.ID, &a.ExamID, &a.StudentID, &a.ProfessorID,
		&a.ApplicationDate, &a.DurationMinutes, &a.Status, &a.Grade,
	}
	var exam models.Exam
	if withExam {
		dest = append(dest, &exam.ID, &exam.SubjectID, &exam.Status)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if withExam {
		a.Exam = &exam
	}
	return &a, nil
}

// Create inserts a new exam assignment and returns its id
func (r *ExamAssignmentRepository) Create(ctx context.Context, a *models.ExamAssignment) (int64, error) {
	query := squirrel.Insert("exam_assignments").
		Columns("exam_id", "student_id", "professor_id", "application_date", "duration_minutes", "status", "grade").
		Values(a.ExamID, a.StudentID, a.ProfessorID, a.ApplicationDate, a.DurationMinutes, a.Status, a.Grade).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	if err := r.q(ctx).QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.NewAlreadyExistsError("examAssignment", "student is already assigned this exam")
		}
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return id, nil
}

// GetByID retrieves an assignment with its exam joined, returning nil when
// absent
func (r *ExamAssignmentRepository) GetByID(ctx context.Context, id int64) (*models.ExamAssignment, error) {
	query := squirrel.Select(assignmentColumns...).
		Columns("e.id", "e.subject_id", "e.status").
		From("exam_assignments a").
		Join("exams e ON e.id = a.exam_id").
		Where("a.id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	a, err := scanAssignment(r.q(ctx).QueryRow(ctx, sql, args...), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return a, nil
}

// FindByExamAndStudent retrieves the unique assignment of a student on an
// exam, returning nil when absent
func (r *ExamAssignmentRepository) FindByExamAndStudent(ctx context.Context, examID, studentID int64) (*models.ExamAssignment, error) {
	query := squirrel.Select(assignmentColumns...).
		Columns("e.id", "e.subject_id", "e.status").
		From("exam_assignments a").
		Join("exams e ON e.id = a.exam_id").
		Where("a.exam_id = ?", examID).
		Where("a.student_id = ?", studentID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	a, err := scanAssignment(r.q(ctx).QueryRow(ctx, sql, args...), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return a, nil
}

// ListByStudent retrieves a page of a student's assignments with optional
// filters, alongside the total row count
func (r *ExamAssignmentRepository) ListByStudent(ctx context.Context, studentID int64, filter services.AssignmentFilter, offset uint64, limit int) ([]models.ExamAssignment, int64, error) {
	query := squirrel.Select(assignmentColumns...).
		Columns("e.id", "e.subject_id", "e.status", "COUNT(*) OVER()").
		From("exam_assignments a").
		Join("exams e ON e.id = a.exam_id").
		Where("a.student_id = ?", studentID).
		PlaceholderFormat(squirrel.Dollar)

	if filter.Status != nil {
		query = query.Where("a.status = ?", *filter.Status)
	}
	if filter.SubjectID != nil {
		query = query.Where("e.subject_id = ?", *filter.SubjectID)
	}
	if filter.TeacherID != nil {
		query = query.Where("a.professor_id = ?", *filter.TeacherID)
	}

	query = query.OrderBy("a.application_date DESC", "a.id").
		Limit(uint64(limit)).Offset(offset)

	return r.listAssignments(ctx, query)
}

// ListByProfessorAndStatus retrieves a page of a professor's assignments in
// the given status, alongside the total row count
func (r *ExamAssignmentRepository) ListByProfessorAndStatus(ctx context.Context, professorID int64, status models.AssignmentStatus, offset uint64, limit int) ([]models.ExamAssignment, int64, error) {
	query := squirrel.Select(assignmentColumns...).
		Columns("e.id", "e.subject_id", "e.status", "COUNT(*) OVER()").
		From("exam_assignments a").
		Join("exams e ON e.id = a.exam_id").
		Where("a.professor_id = ?", professorID).
		Where("a.status = ?", status).
		OrderBy("a.application_date", "a.id").
		Limit(uint64(limit)).Offset(offset).
		PlaceholderFormat(squirrel.Dollar)

	return r.listAssignments(ctx, query)
}

func (r *ExamAssignmentRepository) listAssignments(ctx context.Context, query squirrel.SelectBuilder) ([]models.ExamAssignment, int64, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var assignments []models.ExamAssignment
	var total int64

	for rows.Next() {
		var a models.ExamAssignment
		var exam models.Exam
		err := rows.Scan(
			&a.ID, &a.ExamID, &a.StudentID, &a.ProfessorID,
			&a.ApplicationDate, &a.DurationMinutes, &a.Status, &a.Grade,
			&exam.ID, &exam.SubjectID, &exam.Status,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		a.Exam = &exam
		assignments = append(assignments, a)
	}

	return assignments, total, rows.Err()
}

// ListForStatusRefresh retrieves every assignment of the student that the
// time-driven refresh may need to transition
func (r *ExamAssignmentRepository) ListForStatusRefresh(ctx context.Context, studentID int64) ([]models.ExamAssignment, error) {
	query := squirrel.Select("id", "exam_id", "student_id", "professor_id",
		"application_date", "duration_minutes", "status", "grade").
		From("exam_assignments").
		Where("student_id = ?", studentID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var assignments []models.ExamAssignment
	for rows.Next() {
		var a models.ExamAssignment
		err := rows.Scan(
			&a.ID, &a.ExamID, &a.StudentID, &a.ProfessorID,
			&a.ApplicationDate, &a.DurationMinutes, &a.Status, &a.Grade,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}

// UpdateStatus transitions the assignment status
func (r *ExamAssignmentRepository) UpdateStatus(ctx context.Context, id int64, status models.AssignmentStatus) error {
	query := squirrel.Update("exam_assignments").
		Set("status", status).
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.q(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("no rows affected")
	}

	return nil
}

// UpdateGrade writes the final grade and the accompanying status transition
// in a single statement
func (r *ExamAssignmentRepository) UpdateGrade(ctx context.Context, id int64, grade float64, status models.AssignmentStatus) error {
	query := squirrel.Update("exam_assignments").
		Set("grade", grade).
		Set("status", status).
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.q(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("no rows affected")
	}

	return nil
}
