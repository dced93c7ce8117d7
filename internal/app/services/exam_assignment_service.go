package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/avillegas/examcore/internal/app/models"
	"github.com/avillegas/examcore/internal/app/models/dto"
	"github.com/avillegas/examcore/internal/pkg/apperrors"
	"github.com/avillegas/examcore/internal/pkg/helpers"
)

// ExamAssignmentService defines the interface for the exam assignment and
// evaluation-flow operations.
type ExamAssignmentService interface {
	CreateExamAssignment(ctx context.Context, currentUserID, examID int64, req *dto.AssignExamRequest) (*dto.AssignExamResponse, error)
	ListStudentExams(ctx context.Context, currentUserID int64, filter *dto.StudentExamFilterRequest) (*dto.StudentExamListResponse, error)
	SendExamToEvaluator(ctx context.Context, currentUserID, examID int64) (*dto.StudentExamAssignmentItem, error)
	ListEvaluatorExams(ctx context.Context, currentUserID int64, page, size int) (*dto.StudentExamListResponse, error)
	GradeExamAssignment(ctx context.Context, currentUserID, assignmentID int64) (*dto.GradeAssignmentResponse, error)
	RequestExamRegrade(ctx context.Context, currentUserID int64, req *dto.RequestRegradeRequest) (*dto.RegradeOutput, error)
	ListPendingRegrades(ctx context.Context, currentUserID int64, page, size int) (*dto.RegradeListResponse, error)
	ResolveExamRegrade(ctx context.Context, currentUserID, regradeID int64, req *dto.ResolveRegradeRequest) (*dto.RegradeOutput, error)
}

// examAssignmentServiceImpl implements ExamAssignmentService
type examAssignmentServiceImpl struct {
	examRepo       ExamRepository
	assignmentRepo ExamAssignmentRepository
	responseRepo   ExamResponseRepository
	regradeRepo    ExamRegradeRepository
	questionRepo   ExamQuestionRepository
	studentRepo    StudentRepository
	teacherRepo    TeacherRepository
	subjectRepo    TeacherSubjectRepository
	tx             TxManager
	log            zerolog.Logger
	now            func() time.Time
}

// NewExamAssignmentService creates a new ExamAssignmentService
func NewExamAssignmentService(
	examRepo ExamRepository,
	assignmentRepo ExamAssignmentRepository,
	responseRepo ExamResponseRepository,
	regradeRepo ExamRegradeRepository,
	questionRepo ExamQuestionRepository,
	studentRepo StudentRepository,
	teacherRepo TeacherRepository,
	subjectRepo TeacherSubjectRepository,
	tx TxManager,
	log zerolog.Logger,
) ExamAssignmentService {
	return &examAssignmentServiceImpl{
		examRepo:       examRepo,
		assignmentRepo: assignmentRepo,
		responseRepo:   responseRepo,
		regradeRepo:    regradeRepo,
		questionRepo:   questionRepo,
		studentRepo:    studentRepo,
		teacherRepo:    teacherRepo,
		subjectRepo:    subjectRepo,
		tx:             tx,
		log:            log.With().Str("service", "ExamAssignmentService").Logger(),
		now:            time.Now,
	}
}

// fail logs a failed operation and returns the error unchanged.
func (s *examAssignmentServiceImpl) fail(op string, err error) error {
	s.log.Error().Err(err).Str("operation", op).Str("entity", apperrors.EntityOf(err)).Msg("operation failed")
	return err
}

// CreateExamAssignment assigns an approved exam to a set of students and
// publishes it. The per-student inserts and the APPROVED to PUBLISHED
// transition run inside one transaction so a partial failure leaves nothing
// behind.
func (s *examAssignmentServiceImpl) CreateExamAssignment(ctx context.Context, currentUserID, examID int64, req *dto.AssignExamRequest) (*dto.AssignExamResponse, error) {
	const op = "CreateExamAssignment"
	s.log.Info().Str("operation", op).Int64("examId", examID).Int("requestedStudents", len(req.StudentIDs)).Msg("starting")

	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error getting exam: %w", err))
	}
	if exam == nil {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrExamNotFound, "exam", "exam not found"))
	}
	if exam.Status != models.ExamStatusApproved {
		return nil, s.fail(op, apperrors.NewBusinessRuleError("exam", "exam is not approved for assignment"))
	}

	teacher, err := s.teacherRepo.GetByUserID(ctx, currentUserID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error resolving teacher: %w", err))
	}
	if teacher == nil {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrTeacherNotFound, "teacher", "caller is not a teacher"))
	}

	links, err := s.subjectRepo.GetLinks(ctx, teacher.ID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error getting subject links: %w", err))
	}
	if !links.Teaches(exam.SubjectID) {
		return nil, s.fail(op, apperrors.NewBusinessRuleError("teacher", "teacher is not assigned to the exam subject"))
	}

	studentIDs := dedupeIDs(req.StudentIDs)
	if len(studentIDs) == 0 {
		return nil, s.fail(op, apperrors.NewBusinessRuleError("student", "no students to assign"))
	}

	students, err := s.studentRepo.ListByIDs(ctx, studentIDs)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error resolving students: %w", err))
	}
	if missing := missingIDs(studentIDs, students); len(missing) > 0 {
		return nil, s.fail(op, apperrors.NewBusinessRuleError("student", "some students could not be resolved").
			WithDetails(map[string]interface{}{"missingStudentIds": missing}))
	}

	applicationDate := req.ApplicationDate
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, student := range students {
			assignment := &models.ExamAssignment{
				ExamID:          examID,
				StudentID:       student.ID,
				ProfessorID:     teacher.ID,
				ApplicationDate: &applicationDate,
				DurationMinutes: req.DurationMinutes,
				Status:          models.AssignmentStatusPending,
			}
			if _, err := s.assignmentRepo.Create(ctx, assignment); err != nil {
				return fmt.Errorf("error creating assignment for student %d: %w", student.ID, err)
			}
		}
		return s.examRepo.UpdateStatus(ctx, examID, models.ExamStatusPublished)
	})
	if err != nil {
		return nil, s.fail(op, err)
	}

	s.log.Info().Str("operation", op).Int64("examId", examID).Int("assigned", len(students)).Msg("exam published and assigned")
	return &dto.AssignExamResponse{
		ExamID:           examID,
		AssignedStudents: studentIDs,
		AssignedCount:    len(students),
		ExamStatus:       models.ExamStatusPublished,
	}, nil
}

// ListStudentExams refreshes the caller's assignment statuses against the
// clock and then returns the requested page.
func (s *examAssignmentServiceImpl) ListStudentExams(ctx context.Context, currentUserID int64, filter *dto.StudentExamFilterRequest) (*dto.StudentExamListResponse, error) {
	const op = "ListStudentExams"

	student, err := s.studentRepo.GetByUserID(ctx, currentUserID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error resolving student: %w", err))
	}
	if student == nil {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrStudentNotFound, "student", "caller is not a student"))
	}

	if err := s.refreshAssignmentStatuses(ctx, student.ID); err != nil {
		return nil, s.fail(op, err)
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.PageSize)
	assignments, total, err := s.assignmentRepo.ListByStudent(ctx, student.ID, AssignmentFilter{
		Status:    filter.Status,
		SubjectID: filter.SubjectID,
		TeacherID: filter.TeacherID,
	}, offset, limit)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error listing assignments: %w", err))
	}

	items := make([]dto.StudentExamAssignmentItem, 0, len(assignments))
	for i := range assignments {
		items = append(items, dto.FromExamAssignment(&assignments[i]))
	}

	return &dto.StudentExamListResponse{
		Assignments:    items,
		PaginationInfo: helpers.NewPaginationInfo(total, filter.Page, limit),
	}, nil
}

// refreshAssignmentStatuses applies the time-driven state machine to every
// assignment of the student, persisting only real transitions. Response
// lookups fan out concurrently; status writes stay sequential.
func (s *examAssignmentServiceImpl) refreshAssignmentStatuses(ctx context.Context, studentID int64) error {
	assignments, err := s.assignmentRepo.ListForStatusRefresh(ctx, studentID)
	if err != nil {
		return fmt.Errorf("error listing assignments for refresh: %w", err)
	}

	now := s.now()
	hasResponses := make([]bool, len(assignments))

	g, gctx := errgroup.WithContext(ctx)
	for i := range assignments {
		a := &assignments[i]
		if !needsResponseLookup(a, now) {
			continue
		}
		idx := i
		g.Go(func() error {
			has, err := s.responseRepo.StudentHasResponses(gctx, a.ExamID, a.StudentID)
			if err != nil {
				return fmt.Errorf("error checking responses for assignment %d: %w", a.ID, err)
			}
			hasResponses[idx] = has
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range assignments {
		a := &assignments[i]
		next := CalculateAssignmentStatus(models.AssignmentSnapshot{
			Status:          a.Status,
			ApplicationDate: a.ApplicationDate,
			DurationMinutes: a.DurationMinutes,
			Grade:           a.Grade,
			HasResponses:    hasResponses[i],
		}, now)
		if next == a.Status {
			continue
		}
		if err := s.assignmentRepo.UpdateStatus(ctx, a.ID, next); err != nil {
			return fmt.Errorf("error persisting status transition for assignment %d: %w", a.ID, err)
		}
		s.log.Debug().Int64("assignmentId", a.ID).
			Str("from", string(a.Status)).Str("to", string(next)).
			Msg("assignment status refreshed")
	}

	return nil
}

// needsResponseLookup reports whether the refresh outcome for the assignment
// can depend on recorded responses, so the lookup is only paid when it
// matters.
func needsResponseLookup(a *models.ExamAssignment, now time.Time) bool {
	if a.ApplicationDate == nil || a.Grade != nil {
		return false
	}
	switch a.Status {
	case models.AssignmentStatusCancelled,
		models.AssignmentStatusGraded,
		models.AssignmentStatusInEvaluation:
		return false
	}
	return !now.Before(*a.ApplicationDate)
}

// SendExamToEvaluator moves the caller's assignment on the exam into
// evaluation. ENABLED, IN_PROGRESS and SUBMITTED assignments are all
// accepted as ready.
func (s *examAssignmentServiceImpl) SendExamToEvaluator(ctx context.Context, currentUserID, examID int64) (*dto.StudentExamAssignmentItem, error) {
	const op = "SendExamToEvaluator"

	student, err := s.studentRepo.GetByUserID(ctx, currentUserID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error resolving student: %w", err))
	}
	if student == nil {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrStudentNotFound, "student", "caller is not a student"))
	}

	assignment, err := s.assignmentRepo.FindByExamAndStudent(ctx, examID, student.ID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error getting assignment: %w", err))
	}
	if assignment == nil {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrAssignmentNotFound, "examAssignment", "exam assignment not found"))
	}

	switch assignment.Status {
	case models.AssignmentStatusEnabled,
		models.AssignmentStatusInProgress,
		models.AssignmentStatusSubmitted:
	default:
		return nil, s.fail(op, apperrors.NewBusinessRuleError("examAssignment", "exam assignment is not ready for evaluation"))
	}

	if err := s.assignmentRepo.UpdateStatus(ctx, assignment.ID, models.AssignmentStatusInEvaluation); err != nil {
		return nil, s.fail(op, fmt.Errorf("error updating assignment status: %w", err))
	}

	refreshed, err := s.assignmentRepo.GetByID(ctx, assignment.ID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error reloading assignment: %w", err))
	}

	s.log.Info().Str("operation", op).Int64("assignmentId", assignment.ID).Msg("assignment sent to evaluator")
	item := dto.FromExamAssignment(refreshed)
	return &item, nil
}

// ListEvaluatorExams lists the caller's assignments currently awaiting
// evaluation.
func (s *examAssignmentServiceImpl) ListEvaluatorExams(ctx context.Context, currentUserID int64, page, size int) (*dto.StudentExamListResponse, error) {
	const op = "ListEvaluatorExams"

	teacher, err := s.teacherRepo.GetByUserID(ctx, currentUserID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error resolving teacher: %w", err))
	}
	if teacher == nil {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrTeacherNotFound, "teacher", "caller is not a teacher"))
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	assignments, total, err := s.assignmentRepo.ListByProfessorAndStatus(ctx, teacher.ID, models.AssignmentStatusInEvaluation, offset, limit)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error listing evaluator assignments: %w", err))
	}

	items := make([]dto.StudentExamAssignmentItem, 0, len(assignments))
	for i := range assignments {
		items = append(items, dto.FromExamAssignment(&assignments[i]))
	}

	return &dto.StudentExamListResponse{
		Assignments:    items,
		PaginationInfo: helpers.NewPaginationInfo(total, page, limit),
	}, nil
}

// GradeExamAssignment computes the final grade of an assignment under
// evaluation: the sum over the exam's questions of the manual override when
// present, otherwise the automatic score. Unanswered questions contribute
// zero. The raw sum is preserved, negatives included.
func (s *examAssignmentServiceImpl) GradeExamAssignment(ctx context.Context, currentUserID, assignmentID int64) (*dto.GradeAssignmentResponse, error) {
	const op = "GradeExamAssignment"

	teacher, err := s.teacherRepo.GetByUserID(ctx, currentUserID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error resolving teacher: %w", err))
	}
	if teacher == nil {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrTeacherNotFound, "teacher", "caller is not a teacher"))
	}

	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error getting assignment: %w", err))
	}
	if assignment == nil {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrAssignmentNotFound, "examAssignment", "exam assignment not found"))
	}
	if assignment.Status != models.AssignmentStatusInEvaluation {
		return nil, s.fail(op, apperrors.NewBusinessRuleError("examAssignment", "exam assignment is not in evaluation"))
	}

	exam, err := s.examRepo.GetByID(ctx, assignment.ExamID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error getting exam: %w", err))
	}
	if exam == nil {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrExamNotFound, "exam", "exam not found"))
	}

	if err := s.authorizeReviewer(ctx, teacher.ID, exam.SubjectID); err != nil {
		return nil, s.fail(op, err)
	}

	questions, err := s.questionRepo.ListByExam(ctx, exam.ID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error listing exam questions: %w", err))
	}
	responses, err := s.responseRepo.ListByExamAndStudent(ctx, exam.ID, assignment.StudentID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error listing responses: %w", err))
	}

	byQuestion := make(map[int64]*models.ExamResponse, len(responses))
	for i := range responses {
		byQuestion[responses[i].ExamQuestionID] = &responses[i]
	}

	var grade, maxGrade float64
	for _, q := range questions {
		maxGrade += q.Score
		if resp, ok := byQuestion[q.ID]; ok {
			grade += resp.Points()
		}
	}

	if err := s.assignmentRepo.UpdateGrade(ctx, assignment.ID, grade, models.AssignmentStatusGraded); err != nil {
		return nil, s.fail(op, fmt.Errorf("error persisting grade: %w", err))
	}

	s.log.Info().Str("operation", op).Int64("assignmentId", assignment.ID).Float64("grade", grade).Msg("assignment graded")
	return &dto.GradeAssignmentResponse{
		AssignmentID: assignment.ID,
		Grade:        grade,
		MaxGrade:     maxGrade,
		Status:       models.AssignmentStatusGraded,
	}, nil
}

// RequestExamRegrade opens a regrade request against the caller's graded
// assignment and moves the assignment into REGRADING.
func (s *examAssignmentServiceImpl) RequestExamRegrade(ctx context.Context, currentUserID int64, req *dto.RequestRegradeRequest) (*dto.RegradeOutput, error) {
	const op = "RequestExamRegrade"

	student, err := s.studentRepo.GetByUserID(ctx, currentUserID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error resolving student: %w", err))
	}
	if student == nil {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrStudentNotFound, "student", "caller is not a student"))
	}

	assignment, err := s.assignmentRepo.FindByExamAndStudent(ctx, req.ExamID, student.ID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error getting assignment: %w", err))
	}
	if assignment == nil {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrAssignmentNotFound, "examAssignment", "exam assignment not found"))
	}
	if assignment.Status != models.AssignmentStatusGraded {
		return nil, s.fail(op, apperrors.NewBusinessRuleError("examAssignment", "exam assignment is not yet graded"))
	}

	active, err := s.regradeRepo.FindActiveByExamAndStudent(ctx, req.ExamID, student.ID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error checking active regrades: %w", err))
	}
	if active != nil {
		return nil, s.fail(op, apperrors.NewBusinessRuleError("examRegrade", "an active regrade request already exists"))
	}

	professor, err := s.teacherRepo.GetByID(ctx, req.ProfessorID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error resolving professor: %w", err))
	}
	if professor == nil {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrTeacherNotFound, "teacher", "professor not found"))
	}

	exam, err := s.examRepo.GetByID(ctx, assignment.ExamID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error getting exam: %w", err))
	}
	if exam == nil {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrExamNotFound, "exam", "exam not found"))
	}
	if err := s.authorizeReviewer(ctx, professor.ID, exam.SubjectID); err != nil {
		return nil, s.fail(op, err)
	}

	regrade := &models.ExamRegrade{
		Reference:   uuid.NewString(),
		ExamID:      req.ExamID,
		StudentID:   student.ID,
		ProfessorID: professor.ID,
		Reason:      req.Reason,
		Status:      models.RegradeStatusRequested,
		RequestedAt: s.now(),
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		id, err := s.regradeRepo.Create(ctx, regrade)
		if err != nil {
			return fmt.Errorf("error creating regrade request: %w", err)
		}
		regrade.ID = id
		return s.assignmentRepo.UpdateStatus(ctx, assignment.ID, models.AssignmentStatusRegrading)
	})
	if err != nil {
		return nil, s.fail(op, err)
	}

	s.log.Info().Str("operation", op).Int64("regradeId", regrade.ID).Int64("assignmentId", assignment.ID).Msg("regrade requested")
	out := dto.FromExamRegrade(regrade)
	return &out, nil
}

// ListPendingRegrades lists the open regrade requests addressed to the
// caller.
func (s *examAssignmentServiceImpl) ListPendingRegrades(ctx context.Context, currentUserID int64, page, size int) (*dto.RegradeListResponse, error) {
	const op = "ListPendingRegrades"

	teacher, err := s.teacherRepo.GetByUserID(ctx, currentUserID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error resolving teacher: %w", err))
	}
	if teacher == nil {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrTeacherNotFound, "teacher", "caller is not a teacher"))
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	regrades, total, err := s.regradeRepo.ListPendingByProfessor(ctx, teacher.ID, offset, limit)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error listing pending regrades: %w", err))
	}

	items := make([]dto.RegradeOutput, 0, len(regrades))
	for i := range regrades {
		items = append(items, dto.FromExamRegrade(&regrades[i]))
	}

	return &dto.RegradeListResponse{
		Regrades:       items,
		PaginationInfo: helpers.NewPaginationInfo(total, page, limit),
	}, nil
}

// ResolveExamRegrade closes a regrade request. Approval records the final
// grade and moves the assignment to REGRADED; rejection restores GRADED and
// leaves the original grade standing. Either way the request becomes
// immutable.
func (s *examAssignmentServiceImpl) ResolveExamRegrade(ctx context.Context, currentUserID, regradeID int64, req *dto.ResolveRegradeRequest) (*dto.RegradeOutput, error) {
	const op = "ResolveExamRegrade"

	teacher, err := s.teacherRepo.GetByUserID(ctx, currentUserID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error resolving teacher: %w", err))
	}
	if teacher == nil {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrTeacherNotFound, "teacher", "caller is not a teacher"))
	}

	regrade, err := s.regradeRepo.GetByID(ctx, regradeID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error getting regrade: %w", err))
	}
	if regrade == nil {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrRegradeNotFound, "examRegrade", "regrade request not found"))
	}
	if !regrade.Status.IsActive() {
		return nil, s.fail(op, apperrors.NewBusinessRuleError("examRegrade", "regrade request is already resolved"))
	}

	assignment, err := s.assignmentRepo.FindByExamAndStudent(ctx, regrade.ExamID, regrade.StudentID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error getting assignment: %w", err))
	}
	if assignment == nil {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrAssignmentNotFound, "examAssignment", "exam assignment not found"))
	}

	exam, err := s.examRepo.GetByID(ctx, regrade.ExamID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error getting exam: %w", err))
	}
	if exam == nil {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrExamNotFound, "exam", "exam not found"))
	}
	if err := s.authorizeReviewer(ctx, teacher.ID, exam.SubjectID); err != nil {
		return nil, s.fail(op, err)
	}

	resolvedAt := s.now()
	if req.Approve {
		if req.FinalGrade == nil {
			return nil, s.fail(op, apperrors.NewValidationError("examRegrade", "final grade is required to approve a regrade"))
		}
		err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := s.regradeRepo.Resolve(ctx, regrade.ID, models.RegradeStatusResolved, req.FinalGrade, resolvedAt); err != nil {
				return fmt.Errorf("error resolving regrade: %w", err)
			}
			return s.assignmentRepo.UpdateGrade(ctx, assignment.ID, *req.FinalGrade, models.AssignmentStatusRegraded)
		})
	} else {
		err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if err := s.regradeRepo.Resolve(ctx, regrade.ID, models.RegradeStatusRejected, nil, resolvedAt); err != nil {
				return fmt.Errorf("error rejecting regrade: %w", err)
			}
			return s.assignmentRepo.UpdateStatus(ctx, assignment.ID, models.AssignmentStatusGraded)
		})
	}
	if err != nil {
		return nil, s.fail(op, err)
	}

	resolved, err := s.regradeRepo.GetByID(ctx, regrade.ID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error reloading regrade: %w", err))
	}

	s.log.Info().Str("operation", op).Int64("regradeId", regrade.ID).Bool("approved", req.Approve).Msg("regrade resolved")
	out := dto.FromExamRegrade(resolved)
	return &out, nil
}

// authorizeReviewer checks the teach-or-lead rule shared by grading, manual
// scoring and regrade handling.
func (s *examAssignmentServiceImpl) authorizeReviewer(ctx context.Context, teacherID, subjectID int64) error {
	links, err := s.subjectRepo.GetLinks(ctx, teacherID)
	if err != nil {
		return fmt.Errorf("error getting subject links: %w", err)
	}
	if !links.CanReview(subjectID) {
		return apperrors.NewBusinessRuleError("teacher", "teacher does not teach or lead the exam subject")
	}
	return nil
}

// dedupeIDs removes duplicates preserving first-seen order.
func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// missingIDs returns the requested ids that did not resolve to a student.
func missingIDs(requested []int64, students []models.Student) []int64 {
	resolved := make(map[int64]struct{}, len(students))
	for _, s := range students {
		resolved[s.ID] = struct{}{}
	}
	var missing []int64
	for _, id := range requested {
		if _, ok := resolved[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
