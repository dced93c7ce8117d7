package models

// Exam defines the exam model based on the 'exams' table
type Exam struct {
	ID              int64      `json:"id" db:"id"`
	SubjectID       int64      `json:"subjectId" db:"subject_id"`
	AuthorID        int64      `json:"authorId" db:"author_id"`
	ValidatorID     *int64     `json:"validatorId,omitempty" db:"validator_id"` // Pointer for potential NULL
	Difficulty      string     `json:"difficulty" db:"difficulty"`
	QuestionCount   int        `json:"questionCount" db:"question_count"`
	TopicProportion string     `json:"topicProportion" db:"topic_proportion"`
	TopicCoverage   string     `json:"topicCoverage" db:"topic_coverage"`
	Status          ExamStatus `json:"status" db:"status"`
	Observations    *string    `json:"observations,omitempty" db:"observations"`
}

// ExamQuestion links an exam to a question bank entry. The ordinal index is
// used for index-based navigation while a student takes the exam and the
// score is the per-question weight. Rows are immutable once the exam is
// published.
type ExamQuestion struct {
	ID         int64   `json:"id" db:"id"`
	ExamID     int64   `json:"examId" db:"exam_id"`
	QuestionID int64   `json:"questionId" db:"question_id"`
	Score      float64 `json:"score" db:"score"`
	Index      int     `json:"index" db:"ordinal_index"`
}

// Question is the read model of a question bank entry as scoring needs it.
type Question struct {
	ID      int64            `json:"id" db:"id"`
	Prompt  string           `json:"prompt" db:"prompt"`
	Type    string           `json:"type" db:"question_type"`
	Options []QuestionOption `json:"options,omitempty"` // Relation, no db tag
}

// QuestionOption is one selectable option of an objective question.
type QuestionOption struct {
	ID        int64  `json:"id" db:"id"`
	Text      string `json:"text" db:"option_text"`
	IsCorrect bool   `json:"isCorrect" db:"is_correct"`
}

// IsObjective reports whether the question can be auto-scored. Questions
// without options (essay, free text) always require manual grading.
func (q *Question) IsObjective() bool {
	return len(q.Options) > 0
}
