package services

import (
	"testing"

	"github.com/avillegas/examcore/internal/app/models"
)

func TestCalculateAutoPoints(t *testing.T) {
	objective := &models.Question{
		ID:   1,
		Type: "MULTIPLE_CHOICE",
		Options: []models.QuestionOption{
			{ID: 1, Text: "A", IsCorrect: true},
			{ID: 2, Text: "B", IsCorrect: false},
			{ID: 3, Text: "C", IsCorrect: true},
		},
	}
	open := &models.Question{ID: 2, Type: "OPEN"}

	tests := []struct {
		name     string
		question *models.Question
		selected []string
		want     *float64
	}{
		{"single correct selection scores one", objective, []string{"A"}, ptr(1.0)},
		{"correct plus incorrect cancel out", objective, []string{"A", "B"}, ptr(0.0)},
		{"single incorrect selection goes negative", objective, []string{"B"}, ptr(-1.0)},
		{"all correct selections accumulate", objective, []string{"A", "C"}, ptr(2.0)},
		{"empty selection scores zero", objective, nil, ptr(0.0)},
		{"duplicate selections count twice", objective, []string{"A", "A"}, ptr(2.0)},
		{"unknown option counts against", objective, []string{"Z"}, ptr(-1.0)},
		{"question without options cannot be auto-scored", open, []string{"whatever"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateAutoPoints(tt.question, tt.selected)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("CalculateAutoPoints() = %v, want nil", *got)
			case tt.want != nil && got == nil:
				t.Errorf("CalculateAutoPoints() = nil, want %v", *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Errorf("CalculateAutoPoints() = %v, want %v", *got, *tt.want)
			}
		})
	}
}

func TestCalculateAutoPointsIsDeterministic(t *testing.T) {
	question := &models.Question{
		ID:   1,
		Type: "MULTIPLE_CHOICE",
		Options: []models.QuestionOption{
			{ID: 1, Text: "A", IsCorrect: true},
			{ID: 2, Text: "B", IsCorrect: false},
		},
	}
	selected := []string{"A", "B", "A"}

	first := CalculateAutoPoints(question, selected)
	second := CalculateAutoPoints(question, selected)

	if *first != *second {
		t.Errorf("same input scored differently: %v then %v", *first, *second)
	}
}

func ptr(v float64) *float64 { return &v }
