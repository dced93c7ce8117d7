package dto

import (
	"time"

	"github.com/avillegas/examcore/internal/app/models"
)

// AssignExamRequest is the payload for assigning an approved exam to a set
// of students.
type AssignExamRequest struct {
	StudentIDs      []int64   `json:"studentIds" binding:"required,min=1"`
	ApplicationDate time.Time `json:"applicationDate" binding:"required"`
	DurationMinutes int       `json:"durationMinutes" binding:"min=0"`
}

// AssignExamResponse reports the outcome of a bulk assignment.
type AssignExamResponse struct {
	ExamID           int64             `json:"examId"`
	AssignedStudents []int64           `json:"assignedStudents"`
	AssignedCount    int               `json:"assignedCount"`
	ExamStatus       models.ExamStatus `json:"examStatus" example:"PUBLISHED"`
}

// StudentExamFilterRequest narrows and pages a student's assignment listing.
type StudentExamFilterRequest struct {
	Page      int                      `form:"page"`
	PageSize  int                      `form:"size"`
	Status    *models.AssignmentStatus `form:"status"`
	SubjectID *int64                   `form:"subjectId"`
	TeacherID *int64                   `form:"teacherId"`
}

// StudentExamAssignmentItem is one row of an assignment listing.
type StudentExamAssignmentItem struct {
	ID              int64                   `json:"id"`
	ExamID          int64                   `json:"examId"`
	SubjectID       int64                   `json:"subjectId"`
	StudentID       int64                   `json:"studentId"`
	ProfessorID     int64                   `json:"professorId"`
	ApplicationDate *time.Time              `json:"applicationDate,omitempty"`
	DurationMinutes int                     `json:"durationMinutes"`
	Status          models.AssignmentStatus `json:"status" example:"ENABLED"`
	Grade           *float64                `json:"grade,omitempty"`
}

// StudentExamListResponse pages assignment items.
type StudentExamListResponse struct {
	Assignments    []StudentExamAssignmentItem `json:"assignments"`
	PaginationInfo PaginationInfo              `json:"pagination"`
}

// SendToEvaluatorRequest asks for the caller's assignment on the exam to be
// moved into evaluation.
type SendToEvaluatorRequest struct {
	ExamID int64 `json:"examId" binding:"required"`
}

// GradeAssignmentResponse reports the computed final grade.
type GradeAssignmentResponse struct {
	AssignmentID int64                   `json:"assignmentId"`
	Grade        float64                 `json:"grade"`
	MaxGrade     float64                 `json:"maxGrade"`
	Status       models.AssignmentStatus `json:"status" example:"GRADED"`
}

// FromExamAssignment converts a model assignment to a listing item. The
// subject id comes from the joined exam when present.
func FromExamAssignment(a *models.ExamAssignment) StudentExamAssignmentItem {
	item := StudentExamAssignmentItem{
		ID:              a.ID,
		ExamID:          a.ExamID,
		StudentID:       a.StudentID,
		ProfessorID:     a.ProfessorID,
		ApplicationDate: a.ApplicationDate,
		DurationMinutes: a.DurationMinutes,
		Status:          a.Status,
		Grade:           a.Grade,
	}
	if a.Exam != nil {
		item.SubjectID = a.Exam.SubjectID
	}
	return item
}
