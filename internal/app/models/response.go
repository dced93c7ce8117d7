package models

import "time"

// ExamResponse is one student's answer to one exam question. Unique per
// (student_id, exam_question_id). AutoPoints is computed at write time;
// ManualPoints is set later by an authorized grader and never overwritten
// by auto-scoring.
type ExamResponse struct {
	ID              int64     `json:"id" db:"id"`
	ExamID          int64     `json:"examId" db:"exam_id"`
	ExamQuestionID  int64     `json:"examQuestionId" db:"exam_question_id"`
	StudentID       int64     `json:"studentId" db:"student_id"`
	SelectedOptions []string  `json:"selectedOptions,omitempty" db:"selected_options"`
	TextAnswer      *string   `json:"textAnswer,omitempty" db:"text_answer"`
	AutoPoints      *float64  `json:"autoPoints,omitempty" db:"auto_points"`
	ManualPoints    *float64  `json:"manualPoints,omitempty" db:"manual_points"`
	AnsweredAt      time.Time `json:"answeredAt" db:"answered_at"`
}

// Points returns the effective score of the response: the manual override
// when present, otherwise the automatic score, otherwise zero.
func (r *ExamResponse) Points() float64 {
	if r.ManualPoints != nil {
		return *r.ManualPoints
	}
	if r.AutoPoints != nil {
		return *r.AutoPoints
	}
	return 0
}
