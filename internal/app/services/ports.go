package services

import (
	"context"
	"time"

	"github.com/avillegas/examcore/internal/app/models"
)

// The services consume persistence through these narrow ports. The pgx
// repositories in the repositories package are the production
// implementations; tests substitute in-memory fakes.

// ExamRepository reads and transitions exams.
type ExamRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Exam, error)
	UpdateStatus(ctx context.Context, id int64, status models.ExamStatus) error
}

// AssignmentFilter narrows assignment listings.
type AssignmentFilter struct {
	Status    *models.AssignmentStatus
	SubjectID *int64
	TeacherID *int64
}

// ExamAssignmentRepository persists exam assignments.
type ExamAssignmentRepository interface {
	Create(ctx context.Context, a *models.ExamAssignment) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.ExamAssignment, error)
	FindByExamAndStudent(ctx context.Context, examID, studentID int64) (*models.ExamAssignment, error)
	ListByStudent(ctx context.Context, studentID int64, filter AssignmentFilter, offset uint64, limit int) ([]models.ExamAssignment, int64, error)
	ListByProfessorAndStatus(ctx context.Context, professorID int64, status models.AssignmentStatus, offset uint64, limit int) ([]models.ExamAssignment, int64, error)
	ListForStatusRefresh(ctx context.Context, studentID int64) ([]models.ExamAssignment, error)
	UpdateStatus(ctx context.Context, id int64, status models.AssignmentStatus) error
	UpdateGrade(ctx context.Context, id int64, grade float64, status models.AssignmentStatus) error
}

// ExamResponseRepository persists student responses.
type ExamResponseRepository interface {
	Create(ctx context.Context, r *models.ExamResponse) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.ExamResponse, error)
	FindByQuestionAndStudent(ctx context.Context, examQuestionID, studentID int64) (*models.ExamResponse, error)
	Update(ctx context.Context, r *models.ExamResponse) error
	UpdateManualPoints(ctx context.Context, id int64, points float64) error
	StudentHasResponses(ctx context.Context, examID, studentID int64) (bool, error)
	ListByExamAndStudent(ctx context.Context, examID, studentID int64) ([]models.ExamResponse, error)
}

// ExamRegradeRepository persists regrade requests.
type ExamRegradeRepository interface {
	Create(ctx context.Context, r *models.ExamRegrade) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.ExamRegrade, error)
	FindActiveByExamAndStudent(ctx context.Context, examID, studentID int64) (*models.ExamRegrade, error)
	ListPendingByProfessor(ctx context.Context, professorID int64, offset uint64, limit int) ([]models.ExamRegrade, int64, error)
	Resolve(ctx context.Context, id int64, status models.RegradeStatus, finalGrade *float64, resolvedAt time.Time) error
}

// ExamQuestionRepository reads exam question links and the underlying bank
// entries.
type ExamQuestionRepository interface {
	GetByID(ctx context.Context, id int64) (*models.ExamQuestion, error)
	FindByExamAndIndex(ctx context.Context, examID int64, index int) (*models.ExamQuestion, error)
	ListByExam(ctx context.Context, examID int64) ([]models.ExamQuestion, error)
	GetQuestionDetail(ctx context.Context, questionID int64) (*models.Question, error)
}

// StudentRepository resolves students.
type StudentRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Student, error)
	ListByIDs(ctx context.Context, ids []int64) ([]models.Student, error)
}

// TeacherRepository resolves teachers.
type TeacherRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Teacher, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Teacher, error)
}

// TeacherSubjectRepository reads a teacher's subject links.
type TeacherSubjectRepository interface {
	GetLinks(ctx context.Context, teacherID int64) (*models.SubjectLinks, error)
}

// UserRepository resolves user accounts for authentication.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// TokenRepository persists refresh tokens.
type TokenRepository interface {
	Save(ctx context.Context, token *models.RefreshToken) error
	Find(ctx context.Context, token string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, token string) error
}

// TxManager runs a function within one database transaction; every
// repository call made inside fn joins it.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
