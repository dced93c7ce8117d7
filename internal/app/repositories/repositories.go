package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	ExamRepository           *ExamRepository
	ExamAssignmentRepository *ExamAssignmentRepository
	ExamQuestionRepository   *ExamQuestionRepository
	ExamResponseRepository   *ExamResponseRepository
	ExamRegradeRepository    *ExamRegradeRepository
	StudentRepository        *StudentRepository
	TeacherRepository        *TeacherRepository
	TeacherSubjectRepository *TeacherSubjectRepository
	UserRepository           *UserRepository
	TokenRepository          *TokenRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		ExamRepository:           NewExamRepository(db),
		ExamAssignmentRepository: NewExamAssignmentRepository(db),
		ExamQuestionRepository:   NewExamQuestionRepository(db),
		ExamResponseRepository:   NewExamResponseRepository(db),
		ExamRegradeRepository:    NewExamRegradeRepository(db),
		StudentRepository:        NewStudentRepository(db),
		TeacherRepository:        NewTeacherRepository(db),
		TeacherSubjectRepository: NewTeacherSubjectRepository(db),
		UserRepository:           NewUserRepository(db),
		TokenRepository:          NewTokenRepository(db),
	}
}
