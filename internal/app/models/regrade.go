package models

import "time"

// ExamRegrade is a student's request to re-review a graded assignment.
// At most one active (REQUESTED or IN_REVIEW) regrade may exist per
// (exam_id, student_id). Immutable after RESOLVED or REJECTED.
type ExamRegrade struct {
	ID          int64         `json:"id" db:"id"`
	Reference   string        `json:"reference" db:"reference"` // External UUID handed to clients
	ExamID      int64         `json:"examId" db:"exam_id"`
	StudentID   int64         `json:"studentId" db:"student_id"`
	ProfessorID int64         `json:"professorId" db:"professor_id"`
	Reason      *string       `json:"reason,omitempty" db:"reason"`
	Status      RegradeStatus `json:"status" db:"status"`
	RequestedAt time.Time     `json:"requestedAt" db:"requested_at"`
	ResolvedAt  *time.Time    `json:"resolvedAt,omitempty" db:"resolved_at"`
	FinalGrade  *float64      `json:"finalGrade,omitempty" db:"final_grade"`
}
