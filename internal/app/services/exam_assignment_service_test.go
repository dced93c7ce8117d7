package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/avillegas/examcore/internal/app/models"
	"github.com/avillegas/examcore/internal/app/models/dto"
	"github.com/avillegas/examcore/internal/pkg/apperrors"
)

// assignmentFixture wires the assignment service onto fresh fakes with a
// frozen clock.
type assignmentFixture struct {
	svc         *examAssignmentServiceImpl
	exams       *fakeExamRepo
	assignments *fakeAssignmentRepo
	responses   *fakeResponseRepo
	regrades    *fakeRegradeRepo
	questions   *fakeQuestionRepo
	students    *fakeStudentRepo
	teachers    *fakeTeacherRepo
	subjects    *fakeSubjectRepo
	tx          *fakeTxManager
	now         time.Time
}

func newAssignmentFixture() *assignmentFixture {
	f := &assignmentFixture{
		exams:       newFakeExamRepo(),
		assignments: newFakeAssignmentRepo(),
		responses:   newFakeResponseRepo(),
		regrades:    newFakeRegradeRepo(),
		questions:   newFakeQuestionRepo(),
		students:    newFakeStudentRepo(),
		teachers:    newFakeTeacherRepo(),
		subjects:    newFakeSubjectRepo(),
		tx:          &fakeTxManager{},
		now:         time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	svc := NewExamAssignmentService(
		f.exams, f.assignments, f.responses, f.regrades, f.questions,
		f.students, f.teachers, f.subjects, f.tx, zerolog.Nop(),
	).(*examAssignmentServiceImpl)
	svc.now = func() time.Time { return f.now }
	f.svc = svc
	return f
}

// seedTeacher registers a teacher for user id 100 teaching subject 10.
func (f *assignmentFixture) seedTeacher() *models.Teacher {
	teacher := &models.Teacher{ID: 1, UserID: 100}
	f.teachers.byUserID[teacher.UserID] = teacher
	f.teachers.byID[teacher.ID] = teacher
	f.subjects.set(teacher.ID, []int64{10}, nil)
	return teacher
}

// seedStudent registers a student for user id 200.
func (f *assignmentFixture) seedStudent() *models.Student {
	student := &models.Student{ID: 1, UserID: 200, Identifier: "S-001", CourseID: 1}
	f.students.byUserID[student.UserID] = student
	f.students.byID[student.ID] = *student
	return student
}

func TestCreateExamAssignment(t *testing.T) {
	applicationDate := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

	t.Run("assigns and publishes", func(t *testing.T) {
		f := newAssignmentFixture()
		f.seedTeacher()
		f.exams.exams[5] = &models.Exam{ID: 5, SubjectID: 10, Status: models.ExamStatusApproved}
		f.students.byID[1] = models.Student{ID: 1, UserID: 200}
		f.students.byID[2] = models.Student{ID: 2, UserID: 201}

		out, err := f.svc.CreateExamAssignment(context.Background(), 100, 5, &dto.AssignExamRequest{
			StudentIDs:      []int64{1, 2},
			ApplicationDate: applicationDate,
			DurationMinutes: 90,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.AssignedCount != 2 {
			t.Errorf("assigned count = %d, want 2", out.AssignedCount)
		}
		if out.ExamStatus != models.ExamStatusPublished {
			t.Errorf("exam status = %s, want PUBLISHED", out.ExamStatus)
		}
		if got := f.exams.statusUpdates[5]; got != models.ExamStatusPublished {
			t.Errorf("persisted exam status = %s, want PUBLISHED", got)
		}
		if len(f.assignments.created) != 2 {
			t.Fatalf("assignments created = %d, want 2", len(f.assignments.created))
		}
		for _, a := range f.assignments.created {
			if a.Status != models.AssignmentStatusPending {
				t.Errorf("new assignment status = %s, want PENDING", a.Status)
			}
			if a.ApplicationDate == nil || !a.ApplicationDate.Equal(applicationDate) {
				t.Errorf("new assignment applicationDate = %v, want %v", a.ApplicationDate, applicationDate)
			}
		}
		if f.tx.calls != 1 {
			t.Errorf("transaction calls = %d, want 1", f.tx.calls)
		}
	})

	t.Run("duplicate student ids are assigned once", func(t *testing.T) {
		f := newAssignmentFixture()
		f.seedTeacher()
		f.exams.exams[5] = &models.Exam{ID: 5, SubjectID: 10, Status: models.ExamStatusApproved}
		f.students.byID[1] = models.Student{ID: 1, UserID: 200}
		f.students.byID[2] = models.Student{ID: 2, UserID: 201}

		out, err := f.svc.CreateExamAssignment(context.Background(), 100, 5, &dto.AssignExamRequest{
			StudentIDs:      []int64{1, 1, 2},
			ApplicationDate: applicationDate,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.AssignedCount != 2 || len(f.assignments.created) != 2 {
			t.Errorf("assigned %d, created %d, want 2 each", out.AssignedCount, len(f.assignments.created))
		}
	})

	t.Run("unapproved exam creates nothing", func(t *testing.T) {
		f := newAssignmentFixture()
		f.seedTeacher()
		f.exams.exams[5] = &models.Exam{ID: 5, SubjectID: 10, Status: models.ExamStatusDraft}

		_, err := f.svc.CreateExamAssignment(context.Background(), 100, 5, &dto.AssignExamRequest{
			StudentIDs:      []int64{1},
			ApplicationDate: applicationDate,
		})
		if !errors.Is(err, apperrors.ErrBusinessRule) {
			t.Fatalf("error = %v, want business rule", err)
		}
		if len(f.assignments.created) != 0 {
			t.Errorf("assignments created = %d, want 0", len(f.assignments.created))
		}
		if len(f.exams.statusUpdates) != 0 {
			t.Errorf("exam status updates = %d, want 0", len(f.exams.statusUpdates))
		}
	})

	t.Run("unresolved student ids are reported", func(t *testing.T) {
		f := newAssignmentFixture()
		f.seedTeacher()
		f.exams.exams[5] = &models.Exam{ID: 5, SubjectID: 10, Status: models.ExamStatusApproved}
		f.students.byID[1] = models.Student{ID: 1, UserID: 200}

		_, err := f.svc.CreateExamAssignment(context.Background(), 100, 5, &dto.AssignExamRequest{
			StudentIDs:      []int64{1, 99},
			ApplicationDate: applicationDate,
		})
		if !errors.Is(err, apperrors.ErrBusinessRule) {
			t.Fatalf("error = %v, want business rule", err)
		}
		var ce *apperrors.CustomError
		if !errors.As(err, &ce) {
			t.Fatalf("error does not carry details: %v", err)
		}
		missing, ok := ce.Details["missingStudentIds"].([]int64)
		if !ok || len(missing) != 1 || missing[0] != 99 {
			t.Errorf("missingStudentIds = %v, want [99]", ce.Details["missingStudentIds"])
		}
		if len(f.assignments.created) != 0 {
			t.Errorf("assignments created = %d, want 0", len(f.assignments.created))
		}
	})

	t.Run("teacher outside the subject is rejected", func(t *testing.T) {
		f := newAssignmentFixture()
		teacher := f.seedTeacher()
		f.subjects.set(teacher.ID, []int64{99}, nil)
		f.exams.exams[5] = &models.Exam{ID: 5, SubjectID: 10, Status: models.ExamStatusApproved}

		_, err := f.svc.CreateExamAssignment(context.Background(), 100, 5, &dto.AssignExamRequest{
			StudentIDs:      []int64{1},
			ApplicationDate: applicationDate,
		})
		if !errors.Is(err, apperrors.ErrBusinessRule) {
			t.Fatalf("error = %v, want business rule", err)
		}
	})

	t.Run("failed insert leaves the exam unpublished", func(t *testing.T) {
		f := newAssignmentFixture()
		f.seedTeacher()
		f.exams.exams[5] = &models.Exam{ID: 5, SubjectID: 10, Status: models.ExamStatusApproved}
		f.students.byID[1] = models.Student{ID: 1, UserID: 200}
		f.assignments.createErr = errors.New("insert failed")

		_, err := f.svc.CreateExamAssignment(context.Background(), 100, 5, &dto.AssignExamRequest{
			StudentIDs:      []int64{1},
			ApplicationDate: applicationDate,
		})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if len(f.exams.statusUpdates) != 0 {
			t.Errorf("exam status was updated despite insert failure")
		}
	})
}

func TestListStudentExamsRefreshesStatuses(t *testing.T) {
	f := newAssignmentFixture()
	student := f.seedStudent()

	opened := f.now.Add(-2 * time.Hour)
	upcoming := f.now.Add(1 * time.Hour)

	// Past its 60 minute window with nothing recorded.
	f.assignments.assignments[1] = &models.ExamAssignment{
		ID: 1, ExamID: 5, StudentID: student.ID, ProfessorID: 1,
		ApplicationDate: &opened, DurationMinutes: 60,
		Status: models.AssignmentStatusEnabled,
	}
	// Not yet open.
	f.assignments.assignments[2] = &models.ExamAssignment{
		ID: 2, ExamID: 6, StudentID: student.ID, ProfessorID: 1,
		ApplicationDate: &upcoming, DurationMinutes: 60,
		Status: models.AssignmentStatusPending,
	}
	// Open window with responses recorded.
	f.assignments.assignments[3] = &models.ExamAssignment{
		ID: 3, ExamID: 7, StudentID: student.ID, ProfessorID: 1,
		ApplicationDate: &opened, DurationMinutes: 0,
		Status: models.AssignmentStatusEnabled,
	}
	f.responses.hasResponses[7] = true

	_, err := f.svc.ListStudentExams(context.Background(), student.UserID, &dto.StudentExamFilterRequest{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := f.assignments.statusUpdates[1]; got != models.AssignmentStatusInEvaluation {
		t.Errorf("assignment 1 refreshed to %s, want IN_EVALUATION", got)
	}
	if _, written := f.assignments.statusUpdates[2]; written {
		t.Errorf("assignment 2 was written despite no transition")
	}
	if got := f.assignments.statusUpdates[3]; got != models.AssignmentStatusSubmitted {
		t.Errorf("assignment 3 refreshed to %s, want SUBMITTED", got)
	}
}

func TestSendExamToEvaluator(t *testing.T) {
	tests := []struct {
		status  models.AssignmentStatus
		allowed bool
	}{
		{models.AssignmentStatusEnabled, true},
		{models.AssignmentStatusInProgress, true},
		{models.AssignmentStatusSubmitted, true},
		{models.AssignmentStatusPending, false},
		{models.AssignmentStatusInEvaluation, false},
		{models.AssignmentStatusGraded, false},
		{models.AssignmentStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			f := newAssignmentFixture()
			student := f.seedStudent()
			f.assignments.assignments[1] = &models.ExamAssignment{
				ID: 1, ExamID: 5, StudentID: student.ID, ProfessorID: 1,
				Status: tt.status,
			}

			out, err := f.svc.SendExamToEvaluator(context.Background(), student.UserID, 5)
			if tt.allowed {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if out.Status != models.AssignmentStatusInEvaluation {
					t.Errorf("status = %s, want IN_EVALUATION", out.Status)
				}
			} else {
				if !errors.Is(err, apperrors.ErrBusinessRule) {
					t.Fatalf("error = %v, want business rule", err)
				}
			}
		})
	}
}

func TestGradeExamAssignment(t *testing.T) {
	seed := func() (*assignmentFixture, *models.ExamAssignment) {
		f := newAssignmentFixture()
		f.seedTeacher()
		f.exams.exams[5] = &models.Exam{ID: 5, SubjectID: 10, Status: models.ExamStatusPublished}
		a := &models.ExamAssignment{
			ID: 1, ExamID: 5, StudentID: 1, ProfessorID: 1,
			Status: models.AssignmentStatusInEvaluation,
		}
		f.assignments.assignments[1] = a
		f.questions.add(&models.ExamQuestion{ID: 11, ExamID: 5, QuestionID: 101, Score: 2, Index: 1},
			&models.Question{ID: 101})
		f.questions.add(&models.ExamQuestion{ID: 12, ExamID: 5, QuestionID: 102, Score: 3, Index: 2},
			&models.Question{ID: 102})
		f.questions.add(&models.ExamQuestion{ID: 13, ExamID: 5, QuestionID: 103, Score: 1, Index: 3},
			&models.Question{ID: 103})
		return f, a
	}

	t.Run("manual overrides auto and unanswered count zero", func(t *testing.T) {
		f, _ := seed()
		auto1, manual1 := 1.0, 1.5
		auto2 := -1.0
		// Question 11: manual override wins. Question 12: auto only.
		// Question 13: unanswered, contributes zero.
		f.responses.responses[21] = &models.ExamResponse{
			ID: 21, ExamID: 5, ExamQuestionID: 11, StudentID: 1,
			AutoPoints: &auto1, ManualPoints: &manual1,
		}
		f.responses.responses[22] = &models.ExamResponse{
			ID: 22, ExamID: 5, ExamQuestionID: 12, StudentID: 1,
			AutoPoints: &auto2,
		}

		out, err := f.svc.GradeExamAssignment(context.Background(), 100, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Grade != 0.5 {
			t.Errorf("grade = %v, want 0.5", out.Grade)
		}
		if out.MaxGrade != 6 {
			t.Errorf("maxGrade = %v, want 6", out.MaxGrade)
		}
		if out.Status != models.AssignmentStatusGraded {
			t.Errorf("status = %s, want GRADED", out.Status)
		}
		if got := f.assignments.gradeUpdates[1]; got != 0.5 {
			t.Errorf("persisted grade = %v, want 0.5", got)
		}
	})

	t.Run("negative totals are preserved", func(t *testing.T) {
		f, _ := seed()
		auto := -2.0
		f.responses.responses[21] = &models.ExamResponse{
			ID: 21, ExamID: 5, ExamQuestionID: 11, StudentID: 1,
			AutoPoints: &auto,
		}

		out, err := f.svc.GradeExamAssignment(context.Background(), 100, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Grade != -2 {
			t.Errorf("grade = %v, want -2", out.Grade)
		}
	})

	t.Run("requires in evaluation", func(t *testing.T) {
		f, a := seed()
		a.Status = models.AssignmentStatusSubmitted

		_, err := f.svc.GradeExamAssignment(context.Background(), 100, 1)
		if !errors.Is(err, apperrors.ErrBusinessRule) {
			t.Fatalf("error = %v, want business rule", err)
		}
	})

	t.Run("grader outside the subject is rejected", func(t *testing.T) {
		f, _ := seed()
		f.subjects.set(1, []int64{99}, nil)

		_, err := f.svc.GradeExamAssignment(context.Background(), 100, 1)
		if !errors.Is(err, apperrors.ErrBusinessRule) {
			t.Fatalf("error = %v, want business rule", err)
		}
	})
}

func TestRequestExamRegrade(t *testing.T) {
	grade := 6.0
	seed := func() (*assignmentFixture, *models.Student) {
		f := newAssignmentFixture()
		f.seedTeacher()
		student := f.seedStudent()
		f.exams.exams[5] = &models.Exam{ID: 5, SubjectID: 10, Status: models.ExamStatusPublished}
		f.assignments.assignments[1] = &models.ExamAssignment{
			ID: 1, ExamID: 5, StudentID: student.ID, ProfessorID: 1,
			Status: models.AssignmentStatusGraded, Grade: &grade,
		}
		return f, student
	}

	t.Run("opens request and flips assignment to regrading", func(t *testing.T) {
		f, student := seed()

		out, err := f.svc.RequestExamRegrade(context.Background(), student.UserID, &dto.RequestRegradeRequest{
			ExamID: 5, ProfessorID: 1,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Status != models.RegradeStatusRequested {
			t.Errorf("regrade status = %s, want REQUESTED", out.Status)
		}
		if out.Reference == "" {
			t.Error("regrade reference is empty")
		}
		if got := f.assignments.statusUpdates[1]; got != models.AssignmentStatusRegrading {
			t.Errorf("assignment status = %s, want REGRADING", got)
		}
	})

	t.Run("ungraded assignment is rejected", func(t *testing.T) {
		f, student := seed()
		f.assignments.assignments[1].Status = models.AssignmentStatusInEvaluation

		_, err := f.svc.RequestExamRegrade(context.Background(), student.UserID, &dto.RequestRegradeRequest{
			ExamID: 5, ProfessorID: 1,
		})
		if !errors.Is(err, apperrors.ErrBusinessRule) {
			t.Fatalf("error = %v, want business rule", err)
		}
	})

	t.Run("second active request is rejected", func(t *testing.T) {
		f, student := seed()

		if _, err := f.svc.RequestExamRegrade(context.Background(), student.UserID, &dto.RequestRegradeRequest{
			ExamID: 5, ProfessorID: 1,
		}); err != nil {
			t.Fatalf("first request failed: %v", err)
		}
		// The first request moved the assignment to REGRADING; restore GRADED
		// so the uniqueness rule is what rejects the second attempt.
		f.assignments.assignments[1].Status = models.AssignmentStatusGraded

		_, err := f.svc.RequestExamRegrade(context.Background(), student.UserID, &dto.RequestRegradeRequest{
			ExamID: 5, ProfessorID: 1,
		})
		if !errors.Is(err, apperrors.ErrBusinessRule) {
			t.Fatalf("error = %v, want business rule", err)
		}
	})

	t.Run("professor outside the subject is rejected", func(t *testing.T) {
		f, student := seed()
		f.subjects.set(1, []int64{99}, nil)

		_, err := f.svc.RequestExamRegrade(context.Background(), student.UserID, &dto.RequestRegradeRequest{
			ExamID: 5, ProfessorID: 1,
		})
		if !errors.Is(err, apperrors.ErrBusinessRule) {
			t.Fatalf("error = %v, want business rule", err)
		}
	})
}

func TestResolveExamRegrade(t *testing.T) {
	grade := 6.0
	seed := func() *assignmentFixture {
		f := newAssignmentFixture()
		f.seedTeacher()
		f.subjects.set(1, nil, []int64{10}) // subject leader
		f.exams.exams[5] = &models.Exam{ID: 5, SubjectID: 10, Status: models.ExamStatusPublished}
		f.assignments.assignments[1] = &models.ExamAssignment{
			ID: 1, ExamID: 5, StudentID: 1, ProfessorID: 1,
			Status: models.AssignmentStatusRegrading, Grade: &grade,
		}
		f.regrades.regrades[7] = &models.ExamRegrade{
			ID: 7, Reference: "ref-7", ExamID: 5, StudentID: 1, ProfessorID: 1,
			Status: models.RegradeStatusRequested,
		}
		return f
	}

	t.Run("approval records the final grade", func(t *testing.T) {
		f := seed()
		final := 8.5

		out, err := f.svc.ResolveExamRegrade(context.Background(), 100, 7, &dto.ResolveRegradeRequest{
			Approve: true, FinalGrade: &final,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Status != models.RegradeStatusResolved {
			t.Errorf("regrade status = %s, want RESOLVED", out.Status)
		}
		if out.FinalGrade == nil || *out.FinalGrade != final {
			t.Errorf("finalGrade = %v, want %v", out.FinalGrade, final)
		}
		if got := f.assignments.gradeUpdates[1]; got != final {
			t.Errorf("assignment grade = %v, want %v", got, final)
		}
		if got := f.assignments.assignments[1].Status; got != models.AssignmentStatusRegraded {
			t.Errorf("assignment status = %s, want REGRADED", got)
		}
	})

	t.Run("approval without a final grade fails validation", func(t *testing.T) {
		f := seed()

		_, err := f.svc.ResolveExamRegrade(context.Background(), 100, 7, &dto.ResolveRegradeRequest{Approve: true})
		if !errors.Is(err, apperrors.ErrValidationFailed) {
			t.Fatalf("error = %v, want validation failure", err)
		}
		if f.regrades.regrades[7].Status != models.RegradeStatusRequested {
			t.Errorf("regrade was resolved despite validation failure")
		}
	})

	t.Run("rejection restores graded and keeps the grade", func(t *testing.T) {
		f := seed()

		out, err := f.svc.ResolveExamRegrade(context.Background(), 100, 7, &dto.ResolveRegradeRequest{Approve: false})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Status != models.RegradeStatusRejected {
			t.Errorf("regrade status = %s, want REJECTED", out.Status)
		}
		if got := f.assignments.statusUpdates[1]; got != models.AssignmentStatusGraded {
			t.Errorf("assignment status = %s, want GRADED", got)
		}
		if _, written := f.assignments.gradeUpdates[1]; written {
			t.Errorf("assignment grade was rewritten on rejection")
		}
	})

	t.Run("already resolved request is immutable", func(t *testing.T) {
		f := seed()
		f.regrades.regrades[7].Status = models.RegradeStatusRejected

		_, err := f.svc.ResolveExamRegrade(context.Background(), 100, 7, &dto.ResolveRegradeRequest{Approve: false})
		if !errors.Is(err, apperrors.ErrBusinessRule) {
			t.Fatalf("error = %v, want business rule", err)
		}
	})
}
