package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avillegas/examcore/internal/app/models"
	"github.com/avillegas/examcore/internal/db"
)

const studentColumns = "id, user_id, identifier, course_id"

// StudentRepository handles database operations for student profiles
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

func (r *StudentRepository) q(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.pool)
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	var s models.Student
	if err := row.Scan(&s.ID, &s.UserID, &s.Identifier, &s.CourseID); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByUserID retrieves the student profile bound to a user account,
// returning nil when the user has no student profile
func (r *StudentRepository) GetByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	sql, args, err := squirrel.Select(studentColumns).
		From("students").
		Where("user_id = ?", userID).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	student, err := scanStudent(r.q(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return student, nil
}

// ListByIDs retrieves the students matching the given ids. Ids with no
// matching row are simply absent from the result.
func (r *StudentRepository) ListByIDs(ctx context.Context, ids []int64) ([]models.Student, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	sql, args, err := squirrel.Select(studentColumns).
		From("students").
		Where(squirrel.Eq{"id": ids}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var students []models.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		students = append(students, *student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return students, nil
}
