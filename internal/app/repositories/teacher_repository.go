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

const teacherColumns = "id, user_id, title"

// TeacherRepository handles database operations for teacher profiles
type TeacherRepository struct {
	pool *pgxpool.Pool
}

// NewTeacherRepository creates a new TeacherRepository
func NewTeacherRepository(pool *pgxpool.Pool) *TeacherRepository {
	return &TeacherRepository{pool: pool}
}

func (r *TeacherRepository) q(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.pool)
}

func scanTeacher(row pgx.Row) (*models.Teacher, error) {
	var t models.Teacher
	if err := row.Scan(&t.ID, &t.UserID, &t.Title); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByID retrieves a teacher by ID, returning nil when absent
func (r *TeacherRepository) GetByID(ctx context.Context, id int64) (*models.Teacher, error) {
	return r.getTeacher(ctx, squirrel.Eq{"id": id})
}

// GetByUserID retrieves the teacher profile bound to a user account,
// returning nil when the user has no teacher profile
func (r *TeacherRepository) GetByUserID(ctx context.Context, userID int64) (*models.Teacher, error) {
	return r.getTeacher(ctx, squirrel.Eq{"user_id": userID})
}

func (r *TeacherRepository) getTeacher(ctx context.Context, where squirrel.Eq) (*models.Teacher, error) {
	sql, args, err := squirrel.Select(teacherColumns).
		From("teachers").
		Where(where).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	teacher, err := scanTeacher(r.q(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return teacher, nil
}

// TeacherSubjectRepository handles the teacher-subject link table
type TeacherSubjectRepository struct {
	pool *pgxpool.Pool
}

// NewTeacherSubjectRepository creates a new TeacherSubjectRepository
func NewTeacherSubjectRepository(pool *pgxpool.Pool) *TeacherSubjectRepository {
	return &TeacherSubjectRepository{pool: pool}
}

func (r *TeacherSubjectRepository) q(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.pool)
}

// GetLinks retrieves all subject links for a teacher, split by capacity.
// A teacher with no links gets empty slices, not an error.
func (r *TeacherSubjectRepository) GetLinks(ctx context.Context, teacherID int64) (*models.SubjectLinks, error) {
	sql, args, err := squirrel.Select("subject_id", "capacity").
		From("teacher_subjects").
		Where("teacher_id = ?", teacherID).
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

	links := &models.SubjectLinks{TeacherID: teacherID}
	for rows.Next() {
		var subjectID int64
		var capacity string
		if err := rows.Scan(&subjectID, &capacity); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		switch capacity {
		case "LEAD":
			links.LeadSubjects = append(links.LeadSubjects, subjectID)
		default:
			links.TeachingSubjects = append(links.TeachingSubjects, subjectID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return links, nil
}
