package models

import "time"

// ExamAssignment binds one exam to one student, graded by one professor.
// Unique per (student_id, exam_id, professor_id). Assignments are never
// deleted, only status-transitioned.
type ExamAssignment struct {
	ID              int64            `json:"id" db:"id"`
	ExamID          int64            `json:"examId" db:"exam_id"`
	StudentID       int64            `json:"studentId" db:"student_id"`
	ProfessorID     int64            `json:"professorId" db:"professor_id"`
	ApplicationDate *time.Time       `json:"applicationDate,omitempty" db:"application_date"` // Pointer for potential NULL
	DurationMinutes int              `json:"durationMinutes" db:"duration_minutes"`
	Status          AssignmentStatus `json:"status" db:"status"`
	Grade           *float64         `json:"grade,omitempty" db:"grade"`

	// Relations (populated when needed)
	Exam *Exam `json:"exam,omitempty"`
}

// AssignmentSnapshot is the minimal state the time-driven status refresh
// operates on. HasResponses is resolved by the caller so the computation
// itself stays a pure function.
type AssignmentSnapshot struct {
	Status          AssignmentStatus
	ApplicationDate *time.Time
	DurationMinutes int
	Grade           *float64
	HasResponses    bool
}
