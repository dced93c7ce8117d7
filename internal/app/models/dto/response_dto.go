package dto

import (
	"time"

	"github.com/avillegas/examcore/internal/app/models"
)

// CreateExamResponseRequest is the payload for answering an exam question.
type CreateExamResponseRequest struct {
	ExamID          int64    `json:"examId" binding:"required"`
	ExamQuestionID  int64    `json:"examQuestionId" binding:"required"`
	SelectedOptions []string `json:"selectedOptions,omitempty"`
	TextAnswer      *string  `json:"textAnswer,omitempty"`
}

// UpdateExamResponseRequest is the payload for revising an existing answer.
type UpdateExamResponseRequest struct {
	SelectedOptions []string `json:"selectedOptions,omitempty"`
	TextAnswer      *string  `json:"textAnswer,omitempty"`
}

// UpdateManualPointsRequest sets a grader's manual score override.
type UpdateManualPointsRequest struct {
	ManualPoints float64 `json:"manualPoints" binding:"required"`
}

// ExamResponseOutput is the response view returned to callers.
type ExamResponseOutput struct {
	ID              int64     `json:"id"`
	ExamID          int64     `json:"examId"`
	ExamQuestionID  int64     `json:"examQuestionId"`
	StudentID       int64     `json:"studentId"`
	SelectedOptions []string  `json:"selectedOptions,omitempty"`
	TextAnswer      *string   `json:"textAnswer,omitempty"`
	AutoPoints      *float64  `json:"autoPoints,omitempty"`
	ManualPoints    *float64  `json:"manualPoints,omitempty"`
	AnsweredAt      time.Time `json:"answeredAt"`
}

// QuestionOptionView is a question option as a student sees it while taking
// the exam. Correctness is deliberately absent.
type QuestionOptionView struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// QuestionDetailResponse is the live question content served during an
// enabled exam window.
type QuestionDetailResponse struct {
	ExamQuestionID int64                `json:"examQuestionId"`
	Index          int                  `json:"index"`
	Score          float64              `json:"score"`
	Prompt         string               `json:"prompt"`
	Type           string               `json:"type"`
	Options        []QuestionOptionView `json:"options,omitempty"`
}

// FromExamResponse converts a model response to its output view.
func FromExamResponse(r *models.ExamResponse) ExamResponseOutput {
	return ExamResponseOutput{
		ID:              r.ID,
		ExamID:          r.ExamID,
		ExamQuestionID:  r.ExamQuestionID,
		StudentID:       r.StudentID,
		SelectedOptions: r.SelectedOptions,
		TextAnswer:      r.TextAnswer,
		AutoPoints:      r.AutoPoints,
		ManualPoints:    r.ManualPoints,
		AnsweredAt:      r.AnsweredAt,
	}
}

// FromQuestionDetail builds the student-facing question view from the exam
// question link and the underlying bank entry.
func FromQuestionDetail(eq *models.ExamQuestion, q *models.Question) QuestionDetailResponse {
	out := QuestionDetailResponse{
		ExamQuestionID: eq.ID,
		Index:          eq.Index,
		Score:          eq.Score,
		Prompt:         q.Prompt,
		Type:           q.Type,
	}
	for _, opt := range q.Options {
		out.Options = append(out.Options, QuestionOptionView{ID: opt.ID, Text: opt.Text})
	}
	return out
}
