package services

import (
	"time"

	"github.com/avillegas/examcore/internal/app/models"
)

// CalculateAssignmentStatus computes the status an assignment should hold at
// the given instant. It is a pure function of the snapshot and now: callers
// persist the result only when it differs from the stored status, which
// keeps the refresh idempotent.
//
// CANCELLED, GRADED and IN_EVALUATION are fixed points: once an assignment
// reaches them, time alone never moves it out.
func CalculateAssignmentStatus(snap models.AssignmentSnapshot, now time.Time) models.AssignmentStatus {
	if snap.ApplicationDate == nil {
		return snap.Status
	}

	switch snap.Status {
	case models.AssignmentStatusCancelled,
		models.AssignmentStatusGraded,
		models.AssignmentStatusInEvaluation:
		return snap.Status
	}

	// A grade written out-of-band means the assignment was already graded.
	if snap.Grade != nil {
		return models.AssignmentStatusGraded
	}

	if now.Before(*snap.ApplicationDate) {
		return models.AssignmentStatusPending
	}

	if snap.HasResponses {
		return models.AssignmentStatusSubmitted
	}

	// No time limit: the window stays open.
	if snap.DurationMinutes <= 0 {
		return models.AssignmentStatusEnabled
	}

	endDate := snap.ApplicationDate.Add(time.Duration(snap.DurationMinutes) * time.Minute)
	if now.After(endDate) {
		// Window closed with nothing recorded: escalate straight to
		// evaluation.
		return models.AssignmentStatusInEvaluation
	}

	return models.AssignmentStatusEnabled
}
