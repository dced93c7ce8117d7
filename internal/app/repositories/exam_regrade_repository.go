package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avillegas/examcore/internal/app/models"
	"github.com/avillegas/examcore/internal/db"
	"github.com/avillegas/examcore/internal/pkg/apperrors"
	"github.com/avillegas/examcore/internal/pkg/dberrors"
)

const regradeColumns = "id, reference, exam_id, student_id, professor_id, reason, status, requested_at, resolved_at, final_grade"

// ExamRegradeRepository handles database operations for regrade requests
type ExamRegradeRepository struct {
	pool *pgxpool.Pool
}

// NewExamRegradeRepository creates a new ExamRegradeRepository
func NewExamRegradeRepository(pool *pgxpool.Pool) *ExamRegradeRepository {
	return &ExamRegradeRepository{pool: pool}
}

func (r *ExamRegradeRepository) q(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.pool)
}

func scanRegrade(row pgx.Row) (*models.ExamRegrade, error) {
	var reg models.ExamRegrade
	err := row.Scan(
		&reg.ID, &reg.Reference, &reg.ExamID, &reg.StudentID, &reg.ProfessorID,
		&reg.Reason, &reg.Status, &reg.RequestedAt, &reg.ResolvedAt, &reg.FinalGrade,
	)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// Create inserts a new regrade request and returns its id
func (r *ExamRegradeRepository) Create(ctx context.Context, reg *models.ExamRegrade) (int64, error) {
	query := squirrel.Insert("exam_regrades").
		Columns("reference", "exam_id", "student_id", "professor_id", "reason", "status", "requested_at").
		Values(reg.Reference, reg.ExamID, reg.StudentID, reg.ProfessorID, reg.Reason, reg.Status, reg.RequestedAt).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	if err := r.q(ctx).QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "idx_exam_regrades_active") {
			return 0, apperrors.NewBusinessRuleError("examRegrade", "an active regrade request already exists")
		}
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return id, nil
}

// GetByID retrieves a regrade request by ID, returning nil when absent
func (r *ExamRegradeRepository) GetByID(ctx context.Context, id int64) (*models.ExamRegrade, error) {
	query := squirrel.Select(regradeColumns).
		From("exam_regrades").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	reg, err := scanRegrade(r.q(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return reg, nil
}

// FindActiveByExamAndStudent retrieves the open regrade of a student on an
// exam, returning nil when there is none. The partial unique index on the
// table guarantees at most one row can match.
func (r *ExamRegradeRepository) FindActiveByExamAndStudent(ctx context.Context, examID, studentID int64) (*models.ExamRegrade, error) {
	query := squirrel.Select(regradeColumns).
		From("exam_regrades").
		Where("exam_id = ?", examID).
		Where("student_id = ?", studentID).
		Where(squirrel.Eq{"status": []models.RegradeStatus{models.RegradeStatusRequested, models.RegradeStatusInReview}}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	reg, err := scanRegrade(r.q(ctx).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return reg, nil
}

// ListPendingByProfessor retrieves a page of the professor's open regrade
// requests alongside the total row count
func (r *ExamRegradeRepository) ListPendingByProfessor(ctx context.Context, professorID int64, offset uint64, limit int) ([]models.ExamRegrade, int64, error) {
	query := squirrel.Select(regradeColumns).
		Column("COUNT(*) OVER()").
		From("exam_regrades").
		Where("professor_id = ?", professorID).
		Where(squirrel.Eq{"status": []models.RegradeStatus{models.RegradeStatusRequested, models.RegradeStatusInReview}}).
		OrderBy("requested_at").
		Limit(uint64(limit)).Offset(offset).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var regrades []models.ExamRegrade
	var total int64

	for rows.Next() {
		var reg models.ExamRegrade
		err := rows.Scan(
			&reg.ID, &reg.Reference, &reg.ExamID, &reg.StudentID, &reg.ProfessorID,
			&reg.Reason, &reg.Status, &reg.RequestedAt, &reg.ResolvedAt, &reg.FinalGrade,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		regrades = append(regrades, reg)
	}

	return regrades, total, rows.Err()
}

// Resolve closes a regrade request. Only active rows are touched, so a
// concurrent double-resolve loses cleanly with "no rows affected".
func (r *ExamRegradeRepository) Resolve(ctx context.Context, id int64, status models.RegradeStatus, finalGrade *float64, resolvedAt time.Time) error {
	query := squirrel.Update("exam_regrades").
		Set("status", status).
		Set("final_grade", finalGrade).
		Set("resolved_at", resolvedAt).
		Where("id = ?", id).
		Where(squirrel.Eq{"status": []models.RegradeStatus{models.RegradeStatusRequested, models.RegradeStatusInReview}}).
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
