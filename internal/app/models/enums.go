package models

// RoleType defines the user role stored in the 'users' table
type RoleType string

const (
	RoleStudent RoleType = "STUDENT"
	RoleTeacher RoleType = "TEACHER"
	RoleAdmin   RoleType = "ADMIN"
)

// ExamStatus defines the lifecycle state of an exam
type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "DRAFT"
	ExamStatusInReview  ExamStatus = "IN_REVIEW"
	ExamStatusApproved  ExamStatus = "APPROVED"
	ExamStatusRejected  ExamStatus = "REJECTED"
	ExamStatusPublished ExamStatus = "PUBLISHED"
)

// AssignmentStatus defines the lifecycle state of an exam assignment
type AssignmentStatus string

const (
	AssignmentStatusPending      AssignmentStatus = "PENDING"
	AssignmentStatusEnabled      AssignmentStatus = "ENABLED"
	AssignmentStatusInProgress   AssignmentStatus = "IN_PROGRESS"
	AssignmentStatusSubmitted    AssignmentStatus = "SUBMITTED"
	AssignmentStatusInEvaluation AssignmentStatus = "IN_EVALUATION"
	AssignmentStatusGraded       AssignmentStatus = "GRADED"
	AssignmentStatusRegrading    AssignmentStatus = "REGRADING"
	AssignmentStatusRegraded     AssignmentStatus = "REGRADED"
	AssignmentStatusCancelled    AssignmentStatus = "CANCELLED"
)

// RegradeStatus defines the lifecycle state of a regrade request
type RegradeStatus string

const (
	RegradeStatusRequested RegradeStatus = "REQUESTED"
	RegradeStatusInReview  RegradeStatus = "IN_REVIEW"
	RegradeStatusResolved  RegradeStatus = "RESOLVED"
	RegradeStatusRejected  RegradeStatus = "REJECTED"
)

// IsActive reports whether the regrade is still open for review.
func (s RegradeStatus) IsActive() bool {
	return s == RegradeStatusRequested || s == RegradeStatusInReview
}
