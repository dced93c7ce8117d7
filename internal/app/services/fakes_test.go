package services

import (
	"context"
	"time"

	"github.com/avillegas/examcore/internal/app/models"
)

// In-memory repository fakes backing the service tests. They hold entities in
// maps, hand out copies where the services mutate results, and record writes
// so tests can assert on what was persisted.

type fakeExamRepo struct {
	exams         map[int64]*models.Exam
	statusUpdates map[int64]models.ExamStatus
	err           error
}

func newFakeExamRepo(exams ...*models.Exam) *fakeExamRepo {
	r := &fakeExamRepo{
		exams:         make(map[int64]*models.Exam),
		statusUpdates: make(map[int64]models.ExamStatus),
	}
	for _, e := range exams {
		r.exams[e.ID] = e
	}
	return r
}

func (r *fakeExamRepo) GetByID(_ context.Context, id int64) (*models.Exam, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.exams[id], nil
}

func (r *fakeExamRepo) UpdateStatus(_ context.Context, id int64, status models.ExamStatus) error {
	if r.err != nil {
		return r.err
	}
	r.statusUpdates[id] = status
	if e, ok := r.exams[id]; ok {
		e.Status = status
	}
	return nil
}

type fakeAssignmentRepo struct {
	assignments   map[int64]*models.ExamAssignment
	nextID        int64
	createErr     error
	created       []models.ExamAssignment
	statusUpdates map[int64]models.AssignmentStatus
	gradeUpdates  map[int64]float64
}

func newFakeAssignmentRepo(assignments ...*models.ExamAssignment) *fakeAssignmentRepo {
	r := &fakeAssignmentRepo{
		assignments:   make(map[int64]*models.ExamAssignment),
		nextID:        1,
		statusUpdates: make(map[int64]models.AssignmentStatus),
		gradeUpdates:  make(map[int64]float64),
	}
	for _, a := range assignments {
		r.assignments[a.ID] = a
		if a.ID >= r.nextID {
			r.nextID = a.ID + 1
		}
	}
	return r
}

func (r *fakeAssignmentRepo) Create(_ context.Context, a *models.ExamAssignment) (int64, error) {
	if r.createErr != nil {
		return 0, r.createErr
	}
	a.ID = r.nextID
	r.nextID++
	r.assignments[a.ID] = a
	r.created = append(r.created, *a)
	return a.ID, nil
}

func (r *fakeAssignmentRepo) GetByID(_ context.Context, id int64) (*models.ExamAssignment, error) {
	return r.assignments[id], nil
}

func (r *fakeAssignmentRepo) FindByExamAndStudent(_ context.Context, examID, studentID int64) (*models.ExamAssignment, error) {
	for _, a := range r.assignments {
		if a.ExamID == examID && a.StudentID == studentID {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeAssignmentRepo) ListByStudent(_ context.Context, studentID int64, _ AssignmentFilter, _ uint64, _ int) ([]models.ExamAssignment, int64, error) {
	var out []models.ExamAssignment
	for _, a := range r.assignments {
		if a.StudentID == studentID {
			out = append(out, *a)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeAssignmentRepo) ListByProfessorAndStatus(_ context.Context, professorID int64, status models.AssignmentStatus, _ uint64, _ int) ([]models.ExamAssignment, int64, error) {
	var out []models.ExamAssignment
	for _, a := range r.assignments {
		if a.ProfessorID == professorID && a.Status == status {
			out = append(out, *a)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeAssignmentRepo) ListForStatusRefresh(_ context.Context, studentID int64) ([]models.ExamAssignment, error) {
	var out []models.ExamAssignment
	for _, a := range r.assignments {
		if a.StudentID == studentID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAssignmentRepo) UpdateStatus(_ context.Context, id int64, status models.AssignmentStatus) error {
	r.statusUpdates[id] = status
	if a, ok := r.assignments[id]; ok {
		a.Status = status
	}
	return nil
}

func (r *fakeAssignmentRepo) UpdateGrade(_ context.Context, id int64, grade float64, status models.AssignmentStatus) error {
	r.gradeUpdates[id] = grade
	if a, ok := r.assignments[id]; ok {
		a.Grade = &grade
		a.Status = status
	}
	return nil
}

type fakeResponseRepo struct {
	responses    map[int64]*models.ExamResponse
	nextID       int64
	hasResponses map[int64]bool // keyed by examID
	manualSet    map[int64]float64
	updated      []models.ExamResponse
	calls        int
}

func newFakeResponseRepo(responses ...*models.ExamResponse) *fakeResponseRepo {
	r := &fakeResponseRepo{
		responses:    make(map[int64]*models.ExamResponse),
		nextID:       1,
		hasResponses: make(map[int64]bool),
		manualSet:    make(map[int64]float64),
	}
	for _, resp := range responses {
		r.responses[resp.ID] = resp
		if resp.ID >= r.nextID {
			r.nextID = resp.ID + 1
		}
	}
	return r
}

func (r *fakeResponseRepo) Create(_ context.Context, resp *models.ExamResponse) (int64, error) {
	r.calls++
	resp.ID = r.nextID
	r.nextID++
	r.responses[resp.ID] = resp
	return resp.ID, nil
}

func (r *fakeResponseRepo) GetByID(_ context.Context, id int64) (*models.ExamResponse, error) {
	return r.responses[id], nil
}

func (r *fakeResponseRepo) FindByQuestionAndStudent(_ context.Context, examQuestionID, studentID int64) (*models.ExamResponse, error) {
	for _, resp := range r.responses {
		if resp.ExamQuestionID == examQuestionID && resp.StudentID == studentID {
			return resp, nil
		}
	}
	return nil, nil
}

func (r *fakeResponseRepo) Update(_ context.Context, resp *models.ExamResponse) error {
	r.calls++
	r.responses[resp.ID] = resp
	r.updated = append(r.updated, *resp)
	return nil
}

func (r *fakeResponseRepo) UpdateManualPoints(_ context.Context, id int64, points float64) error {
	r.manualSet[id] = points
	return nil
}

func (r *fakeResponseRepo) StudentHasResponses(_ context.Context, examID, _ int64) (bool, error) {
	return r.hasResponses[examID], nil
}

func (r *fakeResponseRepo) ListByExamAndStudent(_ context.Context, examID, studentID int64) ([]models.ExamResponse, error) {
	var out []models.ExamResponse
	for _, resp := range r.responses {
		if resp.ExamID == examID && resp.StudentID == studentID {
			out = append(out, *resp)
		}
	}
	return out, nil
}

type fakeRegradeRepo struct {
	regrades map[int64]*models.ExamRegrade
	nextID   int64
	resolved map[int64]models.RegradeStatus
}

func newFakeRegradeRepo(regrades ...*models.ExamRegrade) *fakeRegradeRepo {
	r := &fakeRegradeRepo{
		regrades: make(map[int64]*models.ExamRegrade),
		nextID:   1,
		resolved: make(map[int64]models.RegradeStatus),
	}
	for _, rg := range regrades {
		r.regrades[rg.ID] = rg
		if rg.ID >= r.nextID {
			r.nextID = rg.ID + 1
		}
	}
	return r
}

func (r *fakeRegradeRepo) Create(_ context.Context, rg *models.ExamRegrade) (int64, error) {
	rg.ID = r.nextID
	r.nextID++
	r.regrades[rg.ID] = rg
	return rg.ID, nil
}

func (r *fakeRegradeRepo) GetByID(_ context.Context, id int64) (*models.ExamRegrade, error) {
	return r.regrades[id], nil
}

func (r *fakeRegradeRepo) FindActiveByExamAndStudent(_ context.Context, examID, studentID int64) (*models.ExamRegrade, error) {
	for _, rg := range r.regrades {
		if rg.ExamID == examID && rg.StudentID == studentID && rg.Status.IsActive() {
			return rg, nil
		}
	}
	return nil, nil
}

func (r *fakeRegradeRepo) ListPendingByProfessor(_ context.Context, professorID int64, _ uint64, _ int) ([]models.ExamRegrade, int64, error) {
	var out []models.ExamRegrade
	for _, rg := range r.regrades {
		if rg.ProfessorID == professorID && rg.Status.IsActive() {
			out = append(out, *rg)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeRegradeRepo) Resolve(_ context.Context, id int64, status models.RegradeStatus, finalGrade *float64, resolvedAt time.Time) error {
	r.resolved[id] = status
	if rg, ok := r.regrades[id]; ok {
		rg.Status = status
		rg.FinalGrade = finalGrade
		rg.ResolvedAt = &resolvedAt
	}
	return nil
}

type fakeQuestionRepo struct {
	examQuestions map[int64]*models.ExamQuestion
	questions     map[int64]*models.Question
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{
		examQuestions: make(map[int64]*models.ExamQuestion),
		questions:     make(map[int64]*models.Question),
	}
}

func (r *fakeQuestionRepo) add(eq *models.ExamQuestion, q *models.Question) {
	r.examQuestions[eq.ID] = eq
	r.questions[q.ID] = q
}

func (r *fakeQuestionRepo) GetByID(_ context.Context, id int64) (*models.ExamQuestion, error) {
	return r.examQuestions[id], nil
}

func (r *fakeQuestionRepo) FindByExamAndIndex(_ context.Context, examID int64, index int) (*models.ExamQuestion, error) {
	for _, eq := range r.examQuestions {
		if eq.ExamID == examID && eq.Index == index {
			return eq, nil
		}
	}
	return nil, nil
}

func (r *fakeQuestionRepo) ListByExam(_ context.Context, examID int64) ([]models.ExamQuestion, error) {
	var out []models.ExamQuestion
	for _, eq := range r.examQuestions {
		if eq.ExamID == examID {
			out = append(out, *eq)
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) GetQuestionDetail(_ context.Context, questionID int64) (*models.Question, error) {
	return r.questions[questionID], nil
}

type fakeStudentRepo struct {
	byUserID map[int64]*models.Student
	byID     map[int64]models.Student
}

func newFakeStudentRepo(students ...*models.Student) *fakeStudentRepo {
	r := &fakeStudentRepo{
		byUserID: make(map[int64]*models.Student),
		byID:     make(map[int64]models.Student),
	}
	for _, s := range students {
		r.byUserID[s.UserID] = s
		r.byID[s.ID] = *s
	}
	return r
}

func (r *fakeStudentRepo) GetByUserID(_ context.Context, userID int64) (*models.Student, error) {
	return r.byUserID[userID], nil
}

func (r *fakeStudentRepo) ListByIDs(_ context.Context, ids []int64) ([]models.Student, error) {
	var out []models.Student
	for _, id := range ids {
		if s, ok := r.byID[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeTeacherRepo struct {
	byUserID map[int64]*models.Teacher
	byID     map[int64]*models.Teacher
}

func newFakeTeacherRepo(teachers ...*models.Teacher) *fakeTeacherRepo {
	r := &fakeTeacherRepo{
		byUserID: make(map[int64]*models.Teacher),
		byID:     make(map[int64]*models.Teacher),
	}
	for _, t := range teachers {
		r.byUserID[t.UserID] = t
		r.byID[t.ID] = t
	}
	return r
}

func (r *fakeTeacherRepo) GetByID(_ context.Context, id int64) (*models.Teacher, error) {
	return r.byID[id], nil
}

func (r *fakeTeacherRepo) GetByUserID(_ context.Context, userID int64) (*models.Teacher, error) {
	return r.byUserID[userID], nil
}

type fakeSubjectRepo struct {
	links map[int64]*models.SubjectLinks
}

func newFakeSubjectRepo() *fakeSubjectRepo {
	return &fakeSubjectRepo{links: make(map[int64]*models.SubjectLinks)}
}

func (r *fakeSubjectRepo) set(teacherID int64, teaching, lead []int64) {
	r.links[teacherID] = &models.SubjectLinks{
		TeacherID:        teacherID,
		TeachingSubjects: teaching,
		LeadSubjects:     lead,
	}
}

func (r *fakeSubjectRepo) GetLinks(_ context.Context, teacherID int64) (*models.SubjectLinks, error) {
	if l, ok := r.links[teacherID]; ok {
		return l, nil
	}
	return &models.SubjectLinks{TeacherID: teacherID}, nil
}

// fakeTxManager runs the function directly; the fakes have no transactions to
// join, so all-or-nothing assertions rely on write recording instead.
type fakeTxManager struct {
	calls int
}

func (m *fakeTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}
