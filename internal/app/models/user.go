package models

import "time"

// User defines the user model based on the 'users' table
type User struct {
	ID          int64      `json:"id" db:"id"`
	Email       string     `json:"email" db:"email"`
	Password    string     `json:"-" db:"password"` // Hashed, excluded from JSON
	FirstName   string     `json:"firstName" db:"first_name"`
	LastName    string     `json:"lastName" db:"last_name"`
	RoleType    RoleType   `json:"roleType" db:"role_type"`
	IsActive    bool       `json:"isActive" db:"is_active"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
}

// Student defines the student model based on the 'students' table
type Student struct {
	ID         int64  `json:"id" db:"id"`
	UserID     int64  `json:"userId" db:"user_id"`
	Identifier string `json:"identifier" db:"identifier"` // Student number
	CourseID   int64  `json:"courseId" db:"course_id"`

	User *User `json:"user,omitempty"` // Relation, no db tag
}

// Teacher defines the teacher model based on the 'teachers' table
type Teacher struct {
	ID     int64  `json:"id" db:"id"`
	UserID int64  `json:"userId" db:"user_id"`
	Title  string `json:"title" db:"title"`

	User *User `json:"user,omitempty"` // Relation, no db tag
}

// SubjectLinks holds the subject ids a teacher is bound to, split by the
// capacity of the link: subjects they teach and subjects they lead.
type SubjectLinks struct {
	TeacherID        int64   `json:"teacherId"`
	TeachingSubjects []int64 `json:"teachingSubjects"`
	LeadSubjects     []int64 `json:"leadSubjects"`
}

// CanReview reports whether the teacher may review work for the subject:
// they either teach it or lead it.
func (l *SubjectLinks) CanReview(subjectID int64) bool {
	return l.Teaches(subjectID) || l.Leads(subjectID)
}

// Teaches reports whether the subject is among the teacher's teaching links.
func (l *SubjectLinks) Teaches(subjectID int64) bool {
	for _, id := range l.TeachingSubjects {
		if id == subjectID {
			return true
		}
	}
	return false
}

// Leads reports whether the subject is among the teacher's lead links.
func (l *SubjectLinks) Leads(subjectID int64) bool {
	for _, id := range l.LeadSubjects {
		if id == subjectID {
			return true
		}
	}
	return false
}
