package repositories

import (
	"context"

	"github.com/SAP-F-2025/lms-quiz-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type CourseFilters struct {
	InstructorID *string `json:"instructor_id"`
	Query        string  `json:"query"`
	Limit        int     `json:"limit"`
	Offset       int     `json:"offset"`
	SortBy       string  `json:"sort_by"`    // "created_at", "title", "id"
	SortOrder    string  `json:"sort_order"` // "asc", "desc"
}

type SubmissionFilters struct {
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	SortBy    string `json:"sort_by"`    // "submission_date", "score", "id"
	SortOrder string `json:"sort_order"` // "asc", "desc"
}

// ===== REPOSITORY INTERFACES =====

// CourseRepository stores course metadata and instructor assignment
type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	List(ctx context.Context, filters CourseFilters) ([]*models.Course, int64, error)

	ExistsByID(ctx context.Context, id uint) (bool, error)
	ExistsByTitle(ctx context.Context, title string, excludeID *uint) (bool, error)
	AssignInstructor(ctx context.Context, courseID uint, instructorID string) error
}

// QuizRepository stores quizzes. Create persists nested questions in the same statement.
type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error)
	GetByCourse(ctx context.Context, courseID uint) ([]*models.Quiz, error)

	MarkClosed(ctx context.Context, id uint) error
	Delete(ctx context.Context, id uint) error
}

// QuestionRepository stores the ordered questions of a quiz
type QuestionRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	// GetByQuiz returns questions ordered by position
	GetByQuiz(ctx context.Context, quizID uint) ([]*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	DeleteByQuiz(ctx context.Context, quizID uint) error
}

// SubmissionRepository stores one submission per (student, quiz)
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByStudentAndQuiz(ctx context.Context, studentID string, quizID uint) (*models.Submission, error)
	ExistsByStudentAndQuiz(ctx context.Context, studentID string, quizID uint) (bool, error)

	ListByQuiz(ctx context.Context, quizID uint, filters SubmissionFilters) ([]*models.Submission, int64, error)
	UpdateScore(ctx context.Context, id uint, score int) error
	DeleteByQuiz(ctx context.Context, quizID uint) error
}

// GradeRepository stores the grade derived from each submission
type GradeRepository interface {
	Create(ctx context.Context, grade *models.Grade) error
	UpdateScoreBySubmission(ctx context.Context, submissionID uint, score int) error
	ListByStudent(ctx context.Context, studentID string) ([]*models.Grade, error)
	DeleteByQuiz(ctx context.Context, quizID uint) error
}
