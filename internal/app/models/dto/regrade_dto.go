package dto

import (
	"time"

	"github.com/avillegas/examcore/internal/app/models"
)

// RequestRegradeRequest is the payload for a student's regrade request.
type RequestRegradeRequest struct {
	ExamID      int64   `json:"examId" binding:"required"`
	ProfessorID int64   `json:"professorId" binding:"required"`
	Reason      *string `json:"reason,omitempty"`
}

// ResolveRegradeRequest is the reviewing teacher's decision. Approved
// resolutions must carry the final grade; rejections leave the original
// grade standing.
type ResolveRegradeRequest struct {
	Approve    bool     `json:"approve"`
	FinalGrade *float64 `json:"finalGrade,omitempty"`
}

// RegradeOutput is the regrade view returned to callers.
type RegradeOutput struct {
	ID          int64                `json:"id"`
	Reference   string               `json:"reference"`
	ExamID      int64                `json:"examId"`
	StudentID   int64                `json:"studentId"`
	ProfessorID int64                `json:"professorId"`
	Reason      *string              `json:"reason,omitempty"`
	Status      models.RegradeStatus `json:"status" example:"REQUESTED"`
	RequestedAt time.Time            `json:"requestedAt"`
	ResolvedAt  *time.Time           `json:"resolvedAt,omitempty"`
	FinalGrade  *float64             `json:"finalGrade,omitempty"`
}

// RegradeListResponse pages regrade requests for a reviewing teacher.
type RegradeListResponse struct {
	Regrades       []RegradeOutput `json:"regrades"`
	PaginationInfo PaginationInfo  `json:"pagination"`
}

// FromExamRegrade converts a model regrade to its output view.
func FromExamRegrade(r *models.ExamRegrade) RegradeOutput {
	return RegradeOutput{
		ID:          r.ID,
		Reference:   r.Reference,
		ExamID:      r.ExamID,
		StudentID:   r.StudentID,
		ProfessorID: r.ProfessorID,
		Reason:      r.Reason,
		Status:      r.Status,
		RequestedAt: r.RequestedAt,
		ResolvedAt:  r.ResolvedAt,
		FinalGrade:  r.FinalGrade,
	}
}
