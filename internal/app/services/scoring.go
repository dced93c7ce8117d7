package services

import "github.com/avillegas/examcore/internal/app/models"

// CalculateAutoPoints scores a student's selection against an objective
// question: +1 for each selected option whose text is in the correct set,
// -1 otherwise. Penalized guessing is intentional and there is no floor at
// zero. Selections are not deduplicated; each one contributes independently.
//
// Questions without options cannot be auto-scored and yield nil, which marks
// the response as requiring manual grading.
func CalculateAutoPoints(question *models.Question, selected []string) *float64 {
	if !question.IsObjective() {
		return nil
	}

	correct := make(map[string]struct{}, len(question.Options))
	for _, opt := range question.Options {
		if opt.IsCorrect {
			correct[opt.Text] = struct{}{}
		}
	}

	points := 0.0
	for _, sel := range selected {
		if _, ok := correct[sel]; ok {
			points++
		} else {
			points--
		}
	}

	return &points
}
