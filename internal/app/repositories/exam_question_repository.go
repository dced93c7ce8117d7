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

// ExamQuestionRepository handles database operations for exam question links
// and the question bank read model
type ExamQuestionRepository struct {
	pool *pgxpool.Pool
}

// NewExamQuestionRepository creates a new ExamQuestionRepository
func NewExamQuestionRepository(pool *pgxpool.Pool) *ExamQuestionRepository {
	return &ExamQuestionRepository{pool: pool}
}

func (r *ExamQuestionRepository) q(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.pool)
}

// GetByID retrieves an exam question link by ID, returning nil when absent
func (r *ExamQuestionRepository) GetByID(ctx context.Context, id int64) (*models.ExamQuestion, error) {
	query := squirrel.Select("id", "exam_id", "question_id", "score", "ordinal_index").
		From("exam_questions").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	return r.getExamQuestion(ctx, query)
}

// FindByExamAndIndex retrieves the exam question at the given ordinal
// position, returning nil when no such index exists
func (r *ExamQuestionRepository) FindByExamAndIndex(ctx context.Context, examID int64, index int) (*models.ExamQuestion, error) {
	query := squirrel.Select("id", "exam_id", "question_id", "score", "ordinal_index").
		From("exam_questions").
		Where("exam_id = ?", examID).
		Where("ordinal_index = ?", index).
		PlaceholderFormat(squirrel.Dollar)

	return r.getExamQuestion(ctx, query)
}

func (r *ExamQuestionRepository) getExamQuestion(ctx context.Context, query squirrel.SelectBuilder) (*models.ExamQuestion, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var eq models.ExamQuestion
	err = r.q(ctx).QueryRow(ctx, sql, args...).Scan(
		&eq.ID, &eq.ExamID, &eq.QuestionID, &eq.Score, &eq.Index,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &eq, nil
}

// ListByExam retrieves all question links of an exam ordered by their index
func (r *ExamQuestionRepository) ListByExam(ctx context.Context, examID int64) ([]models.ExamQuestion, error) {
	query := squirrel.Select("id", "exam_id", "question_id", "score", "ordinal_index").
		From("exam_questions").
		Where("exam_id = ?", examID).
		OrderBy("ordinal_index").
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

	var questions []models.ExamQuestion
	for rows.Next() {
		var eq models.ExamQuestion
		if err := rows.Scan(&eq.ID, &eq.ExamID, &eq.QuestionID, &eq.Score, &eq.Index); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		questions = append(questions, eq)
	}

	return questions, rows.Err()
}

// GetQuestionDetail retrieves a question bank entry with its options,
// returning nil when absent
func (r *ExamQuestionRepository) GetQuestionDetail(ctx context.Context, questionID int64) (*models.Question, error) {
	query := squirrel.Select("id", "prompt", "question_type").
		From("questions").
		Where("id = ?", questionID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var question models.Question
	err = r.q(ctx).QueryRow(ctx, sql, args...).Scan(&question.ID, &question.Prompt, &question.Type)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	optQuery := squirrel.Select("id", "option_text", "is_correct").
		From("question_options").
		Where("question_id = ?", questionID).
		OrderBy("id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err = optQuery.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var opt models.QuestionOption
		if err := rows.Scan(&opt.ID, &opt.Text, &opt.IsCorrect); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		question.Options = append(question.Options, opt)
	}

	return &question, rows.Err()
}
