package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/avillegas/examcore/internal/app/models"
	"github.com/avillegas/examcore/internal/app/models/dto"
	"github.com/avillegas/examcore/internal/pkg/apperrors"
)

// ExamResponseService defines the interface for response capture, automatic
// scoring and manual score overrides.
type ExamResponseService interface {
	CreateExamResponse(ctx context.Context, currentUserID int64, req *dto.CreateExamResponseRequest) (*dto.ExamResponseOutput, error)
	UpdateExamResponse(ctx context.Context, currentUserID, responseID int64, req *dto.UpdateExamResponseRequest) (*dto.ExamResponseOutput, error)
	UpdateManualPoints(ctx context.Context, currentUserID, responseID int64, points float64) error
	GetResponseByQuestionIndex(ctx context.Context, currentUserID, examID int64, index int) (*dto.ExamResponseOutput, error)
	GetQuestionDetailByIndex(ctx context.Context, currentUserID, examID int64, index int) (*dto.QuestionDetailResponse, error)
}

// examResponseServiceImpl implements ExamResponseService
type examResponseServiceImpl struct {
	assignmentRepo ExamAssignmentRepository
	responseRepo   ExamResponseRepository
	questionRepo   ExamQuestionRepository
	examRepo       ExamRepository
	studentRepo    StudentRepository
	teacherRepo    TeacherRepository
	subjectRepo    TeacherSubjectRepository
	log            zerolog.Logger
	now            func() time.Time
}

// NewExamResponseService creates a new ExamResponseService
func NewExamResponseService(
	assignmentRepo ExamAssignmentRepository,
	responseRepo ExamResponseRepository,
	questionRepo ExamQuestionRepository,
	examRepo ExamRepository,
	studentRepo StudentRepository,
	teacherRepo TeacherRepository,
	subjectRepo TeacherSubjectRepository,
	log zerolog.Logger,
) ExamResponseService {
	return &examResponseServiceImpl{
		assignmentRepo: assignmentRepo,
		responseRepo:   responseRepo,
		questionRepo:   questionRepo,
		examRepo:       examRepo,
		studentRepo:    studentRepo,
		teacherRepo:    teacherRepo,
		subjectRepo:    subjectRepo,
		log:            log.With().Str("service", "ExamResponseService").Logger(),
		now:            time.Now,
	}
}

func (s *examResponseServiceImpl) fail(op string, err error) error {
	s.log.Error().Err(err).Str("operation", op).Str("entity", apperrors.EntityOf(err)).Msg("operation failed")
	return err
}

// resolveStudent maps the authenticated caller to a student record.
func (s *examResponseServiceImpl) resolveStudent(ctx context.Context, currentUserID int64) (*models.Student, error) {
	student, err := s.studentRepo.GetByUserID(ctx, currentUserID)
	if err != nil {
		return nil, fmt.Errorf("error resolving student: %w", err)
	}
	if student == nil {
		return nil, apperrors.NewNotFoundError(apperrors.ErrStudentNotFound, "student", "caller is not a student")
	}
	return student, nil
}

// requireEnabledAssignment fetches the student's assignment on the exam and
// enforces the active write window.
func (s *examResponseServiceImpl) requireEnabledAssignment(ctx context.Context, examID, studentID int64) (*models.ExamAssignment, error) {
	assignment, err := s.assignmentRepo.FindByExamAndStudent(ctx, examID, studentID)
	if err != nil {
		return nil, fmt.Errorf("error getting assignment: %w", err)
	}
	if assignment == nil {
		return nil, apperrors.NewNotFoundError(apperrors.ErrAssignmentNotFound, "examAssignment", "exam assignment not found")
	}
	if assignment.Status != models.AssignmentStatusEnabled {
		return nil, apperrors.NewBusinessRuleError("examAssignment", "exam is not active")
	}
	return assignment, nil
}

// CreateExamResponse records a new answer while the exam window is open,
// computing the automatic score at write time.
func (s *examResponseServiceImpl) CreateExamResponse(ctx context.Context, currentUserID int64, req *dto.CreateExamResponseRequest) (*dto.ExamResponseOutput, error) {
	const op = "CreateExamResponse"

	student, err := s.resolveStudent(ctx, currentUserID)
	if err != nil {
		return nil, s.fail(op, err)
	}

	if _, err := s.requireEnabledAssignment(ctx, req.ExamID, student.ID); err != nil {
		return nil, s.fail(op, err)
	}

	examQuestion, err := s.questionRepo.GetByID(ctx, req.ExamQuestionID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error getting exam question: %w", err))
	}
	if examQuestion == nil || examQuestion.ExamID != req.ExamID {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrQuestionNotFound, "examQuestion", "exam question not found"))
	}

	question, err := s.questionRepo.GetQuestionDetail(ctx, examQuestion.QuestionID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error getting question detail: %w", err))
	}
	if question == nil {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrQuestionNotFound, "question", "question not found"))
	}

	response := &models.ExamResponse{
		ExamID:          req.ExamID,
		ExamQuestionID:  req.ExamQuestionID,
		StudentID:       student.ID,
		SelectedOptions: req.SelectedOptions,
		TextAnswer:      req.TextAnswer,
		AutoPoints:      CalculateAutoPoints(question, req.SelectedOptions),
		AnsweredAt:      s.now(),
	}

	id, err := s.responseRepo.Create(ctx, response)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error creating response: %w", err))
	}
	response.ID = id

	s.log.Info().Str("operation", op).Int64("responseId", id).Int64("examQuestionId", req.ExamQuestionID).Msg("response recorded")
	out := dto.FromExamResponse(response)
	return &out, nil
}

// UpdateExamResponse revises an existing answer. Only the owning student may
// update it, only while the window is open; the automatic score is recomputed
// and any manual override is left untouched.
func (s *examResponseServiceImpl) UpdateExamResponse(ctx context.Context, currentUserID, responseID int64, req *dto.UpdateExamResponseRequest) (*dto.ExamResponseOutput, error) {
	const op = "UpdateExamResponse"

	student, err := s.resolveStudent(ctx, currentUserID)
	if err != nil {
		return nil, s.fail(op, err)
	}

	response, err := s.responseRepo.GetByID(ctx, responseID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error getting response: %w", err))
	}
	if response == nil {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrResponseNotFound, "examResponse", "exam response not found"))
	}
	if response.StudentID != student.ID {
		return nil, s.fail(op, apperrors.NewForbiddenError("examResponse", "response belongs to another student"))
	}

	if _, err := s.requireEnabledAssignment(ctx, response.ExamID, student.ID); err != nil {
		return nil, s.fail(op, err)
	}

	examQuestion, err := s.questionRepo.GetByID(ctx, response.ExamQuestionID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error getting exam question: %w", err))
	}
	if examQuestion == nil {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrQuestionNotFound, "examQuestion", "exam question not found"))
	}

	question, err := s.questionRepo.GetQuestionDetail(ctx, examQuestion.QuestionID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error getting question detail: %w", err))
	}
	if question == nil {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrQuestionNotFound, "question", "question not found"))
	}

	response.SelectedOptions = req.SelectedOptions
	response.TextAnswer = req.TextAnswer
	response.AutoPoints = CalculateAutoPoints(question, req.SelectedOptions)
	response.AnsweredAt = s.now()

	if err := s.responseRepo.Update(ctx, response); err != nil {
		return nil, s.fail(op, fmt.Errorf("error updating response: %w", err))
	}

	s.log.Info().Str("operation", op).Int64("responseId", response.ID).Msg("response updated")
	out := dto.FromExamResponse(response)
	return &out, nil
}

// UpdateManualPoints records a grader's score override. The caller must
// teach or lead the subject of the response's exam; the automatic score is
// never recomputed here.
func (s *examResponseServiceImpl) UpdateManualPoints(ctx context.Context, currentUserID, responseID int64, points float64) error {
	const op = "UpdateManualPoints"

	teacher, err := s.teacherRepo.GetByUserID(ctx, currentUserID)
	if err != nil {
		return s.fail(op, fmt.Errorf("error resolving teacher: %w", err))
	}
	if teacher == nil {
		return s.fail(op, apperrors.NewNotFoundError(apperrors.ErrTeacherNotFound, "teacher", "caller is not a teacher"))
	}

	response, err := s.responseRepo.GetByID(ctx, responseID)
	if err != nil {
		return s.fail(op, fmt.Errorf("error getting response: %w", err))
	}
	if response == nil {
		return s.fail(op, apperrors.NewNotFoundError(apperrors.ErrResponseNotFound, "examResponse", "exam response not found"))
	}

	assignment, err := s.assignmentRepo.FindByExamAndStudent(ctx, response.ExamID, response.StudentID)
	if err != nil {
		return s.fail(op, fmt.Errorf("error getting assignment: %w", err))
	}
	if assignment == nil {
		return s.fail(op, apperrors.NewNotFoundError(apperrors.ErrAssignmentNotFound, "examAssignment", "exam assignment not found"))
	}

	exam, err := s.examRepo.GetByID(ctx, assignment.ExamID)
	if err != nil {
		return s.fail(op, fmt.Errorf("error getting exam: %w", err))
	}
	if exam == nil {
		return s.fail(op, apperrors.NewNotFoundError(apperrors.ErrExamNotFound, "exam", "exam not found"))
	}

	links, err := s.subjectRepo.GetLinks(ctx, teacher.ID)
	if err != nil {
		return s.fail(op, fmt.Errorf("error getting subject links: %w", err))
	}
	if !links.CanReview(exam.SubjectID) {
		return s.fail(op, apperrors.NewBusinessRuleError("teacher", "teacher does not teach or lead the exam subject"))
	}

	if err := s.responseRepo.UpdateManualPoints(ctx, responseID, points); err != nil {
		return s.fail(op, fmt.Errorf("error persisting manual points: %w", err))
	}

	s.log.Info().Str("operation", op).Int64("responseId", responseID).Float64("manualPoints", points).Msg("manual points set")
	return nil
}

// GetResponseByQuestionIndex returns the caller's answer at the given
// ordinal position of the exam. Reads are allowed in any assignment status;
// a missing question index and a not-yet-answered question are distinct
// conditions.
func (s *examResponseServiceImpl) GetResponseByQuestionIndex(ctx context.Context, currentUserID, examID int64, index int) (*dto.ExamResponseOutput, error) {
	const op = "GetResponseByQuestionIndex"

	student, err := s.resolveStudent(ctx, currentUserID)
	if err != nil {
		return nil, s.fail(op, err)
	}

	assignment, err := s.assignmentRepo.FindByExamAndStudent(ctx, examID, student.ID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error getting assignment: %w", err))
	}
	if assignment == nil {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrAssignmentNotFound, "examAssignment", "exam assignment not found"))
	}

	examQuestion, err := s.questionRepo.FindByExamAndIndex(ctx, examID, index)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error getting exam question: %w", err))
	}
	if examQuestion == nil {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrQuestionNotFound, "examQuestion", "no question at the requested index"))
	}

	response, err := s.responseRepo.FindByQuestionAndStudent(ctx, examQuestion.ID, student.ID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error getting response: %w", err))
	}
	if response == nil {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrResponseNotFound, "examResponse", "question not yet answered"))
	}

	out := dto.FromExamResponse(response)
	return &out, nil
}

// GetQuestionDetailByIndex returns live question content during an enabled
// exam window.
func (s *examResponseServiceImpl) GetQuestionDetailByIndex(ctx context.Context, currentUserID, examID int64, index int) (*dto.QuestionDetailResponse, error) {
	const op = "GetQuestionDetailByIndex"

	student, err := s.resolveStudent(ctx, currentUserID)
	if err != nil {
		return nil, s.fail(op, err)
	}

	if _, err := s.requireEnabledAssignment(ctx, examID, student.ID); err != nil {
		return nil, s.fail(op, err)
	}

	examQuestion, err := s.questionRepo.FindByExamAndIndex(ctx, examID, index)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error getting exam question: %w", err))
	}
	if examQuestion == nil {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrQuestionNotFound, "examQuestion", "no question at the requested index"))
	}

	question, err := s.questionRepo.GetQuestionDetail(ctx, examQuestion.QuestionID)
	if err != nil {
		return nil, s.fail(op, fmt.Errorf("error getting question detail: %w", err))
	}
	if question == nil {
		return nil, s.fail(op, apperrors.NewNotFoundError(apperrors.ErrQuestionNotFound, "question", "question not found"))
	}

	out := dto.FromQuestionDetail(examQuestion, question)
	return &out, nil
}
