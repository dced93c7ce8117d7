package services

import (
	"testing"
	"time"

	"github.com/avillegas/examcore/internal/app/models"
)

func TestCalculateAssignmentStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	grade := 7.5

	timePtr := func(t time.Time) *time.Time { return &t }

	tests := []struct {
		name string
		snap models.AssignmentSnapshot
		want models.AssignmentStatus
	}{
		{
			name: "nil application date stays unchanged",
			snap: models.AssignmentSnapshot{
				Status: models.AssignmentStatusPending,
			},
			want: models.AssignmentStatusPending,
		},
		{
			name: "cancelled is a fixed point",
			snap: models.AssignmentSnapshot{
				Status:          models.AssignmentStatusCancelled,
				ApplicationDate: timePtr(now.Add(-2 * time.Hour)),
				DurationMinutes: 30,
			},
			want: models.AssignmentStatusCancelled,
		},
		{
			name: "graded is a fixed point",
			snap: models.AssignmentSnapshot{
				Status:          models.AssignmentStatusGraded,
				ApplicationDate: timePtr(now.Add(-2 * time.Hour)),
				Grade:           &grade,
			},
			want: models.AssignmentStatusGraded,
		},
		{
			name: "in evaluation is a fixed point",
			snap: models.AssignmentSnapshot{
				Status:          models.AssignmentStatusInEvaluation,
				ApplicationDate: timePtr(now.Add(-2 * time.Hour)),
			},
			want: models.AssignmentStatusInEvaluation,
		},
		{
			name: "grade set out of band implies graded",
			snap: models.AssignmentSnapshot{
				Status:          models.AssignmentStatusSubmitted,
				ApplicationDate: timePtr(now.Add(-2 * time.Hour)),
				Grade:           &grade,
			},
			want: models.AssignmentStatusGraded,
		},
		{
			name: "before the window opens the assignment is pending",
			snap: models.AssignmentSnapshot{
				Status:          models.AssignmentStatusEnabled,
				ApplicationDate: timePtr(now.Add(5 * time.Minute)),
				DurationMinutes: 60,
			},
			want: models.AssignmentStatusPending,
		},
		{
			name: "responses recorded after opening means submitted",
			snap: models.AssignmentSnapshot{
				Status:          models.AssignmentStatusEnabled,
				ApplicationDate: timePtr(now.Add(-30 * time.Minute)),
				DurationMinutes: 60,
				HasResponses:    true,
			},
			want: models.AssignmentStatusSubmitted,
		},
		{
			name: "no time limit keeps the window open",
			snap: models.AssignmentSnapshot{
				Status:          models.AssignmentStatusPending,
				ApplicationDate: timePtr(now.Add(-24 * time.Hour)),
				DurationMinutes: 0,
			},
			want: models.AssignmentStatusEnabled,
		},
		{
			name: "window closed without responses escalates to evaluation",
			snap: models.AssignmentSnapshot{
				Status:          models.AssignmentStatusEnabled,
				ApplicationDate: timePtr(now.Add(-61 * time.Minute)),
				DurationMinutes: 60,
			},
			want: models.AssignmentStatusInEvaluation,
		},
		{
			name: "inside the window the assignment is enabled",
			snap: models.AssignmentSnapshot{
				Status:          models.AssignmentStatusPending,
				ApplicationDate: timePtr(now.Add(-30 * time.Minute)),
				DurationMinutes: 60,
			},
			want: models.AssignmentStatusEnabled,
		},
		{
			name: "exactly at the window end the assignment is still enabled",
			snap: models.AssignmentSnapshot{
				Status:          models.AssignmentStatusEnabled,
				ApplicationDate: timePtr(now.Add(-60 * time.Minute)),
				DurationMinutes: 60,
			},
			want: models.AssignmentStatusEnabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateAssignmentStatus(tt.snap, now)
			if got != tt.want {
				t.Errorf("CalculateAssignmentStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCalculateAssignmentStatusIsIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	open := now.Add(-30 * time.Minute)

	snap := models.AssignmentSnapshot{
		Status:          models.AssignmentStatusPending,
		ApplicationDate: &open,
		DurationMinutes: 60,
	}

	first := CalculateAssignmentStatus(snap, now)
	snap.Status = first
	second := CalculateAssignmentStatus(snap, now)

	if first != second {
		t.Errorf("refresh is not idempotent: first %s, second %s", first, second)
	}
}
