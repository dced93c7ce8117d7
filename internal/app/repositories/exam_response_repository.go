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
	"github.com/avillegas/examcore/internal/pkg/apperrors"
	"github.com/avillegas/examcore/internal/pkg/dberrors"
)

const responseColumns = "id, exam_id, exam_question_id, student_id, selected_options, text_answer, auto_points, manual_points, answered_at"

// ExamResponseRepository handles database operations for exam responses
type ExamResponseRepository struct {
	pool *pgxpool.Pool
}

// NewExamResponseRepository creates a new ExamResponseRepository
func NewExamResponseRepository(pool *pgxpool.Pool) *ExamResponseRepository {
	return &ExamResponseRepository{pool: pool}
}

func (r *ExamResponseRepository) q(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.pool)
}

func scanResponse(row pgx.Row) (*models.ExamResponse, error) {
	var resp models.ExamResponse
	err := row.Scan(
		&resp.ID, &resp.ExamID, &resp.ExamQuestionID, &resp.StudentID,
		&resp.SelectedOptions, &resp.TextAnswer, &resp.AutoPoints, &resp.ManualPoints, &resp.AnsweredAt,
	)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Create inserts a new response and returns its id
func (r *ExamResponseRepository) Create(ctx context.Context, resp *models.ExamResponse) (int64, error) {
	query := squirrel.Insert("exam_responses").
		Columns("exam_id", "exam_question_id", "student_id", "selected_options", "text_answer", "auto_points", "manual_points", "answered_at").
		Values(resp.ExamID, resp.ExamQuestionID, resp.StudentID, resp.SelectedOptions, resp.TextAnswer, resp.AutoPoints, resp.ManualPoints, resp.AnsweredAt).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	if err := r.q(ctx).QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.NewAlreadyExistsError("examResponse", "question already answered")
		}
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return id, nil
}

// GetByID retrieves a response by ID, returning nil when absent
func (r *ExamResponseRepository) GetByID(ctx context.Context, id int64) (*models.ExamResponse, error) {
	query := squirrel.Select(responseColumns).
		From("exam_responses").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	return r.getResponse(ctx, query)
}

// FindByQuestionAndStudent retrieves the unique response of a student to an
// exam question, returning nil when not yet answered
func (r *ExamResponseRepository) FindByQuestionAndStudent(ctx context.Context, examQuestionID, studentID int64) (*models.ExamResponse, error) {
	query := squirrel.Select(responseColumns).
		From("exam_responses").
		Where("exam_question_id = ?", examQuestionID).
		Where("student_id = ?", studentID).
		PlaceholderFormat(squirrel.Dollar)

	return r.getResponse(ctx, query)
}

func (r *ExamResponseRepository) getResponse(ctx context.Context, query squirrel.SelectBuilder) (*models.ExamResponse, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	resp, err := scanResponse(r.q(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return resp, nil
}

// Update rewrites the answer content and the recomputed automatic score.
// Manual points are deliberately not part of this statement.
func (r *ExamResponseRepository) Update(ctx context.Context, resp *models.ExamResponse) error {
	query := squirrel.Update("exam_responses").
		Set("selected_options", resp.SelectedOptions).
		Set("text_answer", resp.TextAnswer).
		Set("auto_points", resp.AutoPoints).
		Set("answered_at", resp.AnsweredAt).
		Where("id = ?", resp.ID).
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

// UpdateManualPoints writes the grader's override only
func (r *ExamResponseRepository) UpdateManualPoints(ctx context.Context, id int64, points float64) error {
	query := squirrel.Update("exam_responses").
		Set("manual_points", points).
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

// StudentHasResponses reports whether the student has recorded any response
// for the exam
func (r *ExamResponseRepository) StudentHasResponses(ctx context.Context, examID, studentID int64) (bool, error) {
	query := squirrel.Select("1").
		From("exam_responses").
		Where("exam_id = ?", examID).
		Where("student_id = ?", studentID).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("error building SQL: %w", err)
	}

	var one int
	err = r.q(ctx).QueryRow(ctx, sql, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("error executing query: %w", err)
	}

	return true, nil
}

// ListByExamAndStudent retrieves all of a student's responses on an exam
func (r *ExamResponseRepository) ListByExamAndStudent(ctx context.Context, examID, studentID int64) ([]models.ExamResponse, error) {
	query := squirrel.Select(responseColumns).
		From("exam_responses").
		Where("exam_id = ?", examID).
		Where("student_id = ?", studentID).
		OrderBy("exam_question_id").
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

	var responses []models.ExamResponse
	for rows.Next() {
		var resp models.ExamResponse
		err := rows.Scan(
			&resp.ID, &resp.ExamID, &resp.ExamQuestionID, &resp.StudentID,
			&resp.SelectedOptions, &resp.TextAnswer, &resp.AutoPoints, &resp.ManualPoints, &resp.AnsweredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		responses = append(responses, resp)
	}

	return responses, rows.Err()
}
