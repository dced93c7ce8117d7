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

// ExamRepository handles database operations for exams
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

func (r *ExamRepository) q(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.pool)
}

// GetByID retrieves an exam by ID, returning nil when absent
func (r *ExamRepository) GetByID(ctx context.Context, id int64) (*models.Exam, error) {
	query := squirrel.Select("id", "subject_id", "author_id", "validator_id", "difficulty",
		"question_count", "topic_proportion", "topic_coverage", "status", "observations").
		From("exams").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var exam models.Exam
	err = r.q(ctx).QueryRow(ctx, sql, args...).Scan(
		&exam.ID,
		&exam.SubjectID,
		&exam.AuthorID,
		&exam.ValidatorID,
		&exam.Difficulty,
		&exam.QuestionCount,
		&exam.TopicProportion,
		&exam.TopicCoverage,
		&exam.Status,
		&exam.Observations,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &exam, nil
}

// UpdateStatus transitions the exam status
func (r *ExamRepository) UpdateStatus(ctx context.Context, id int64, status models.ExamStatus) error {
	query := squirrel.Update("exams").
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
