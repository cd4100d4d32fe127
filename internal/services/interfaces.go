package services

import (
	"context"
	"io"
	"time"

	"github.com/SAP-F-2025/lms-quiz-service/internal/models"
	"github.com/SAP-F-2025/lms-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/lms-quiz-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateQuizRequest = validator.QuizCreateRequest
type CreateQuestionRequest = validator.QuestionCreateRequest
type UpdateQuestionRequest = validator.QuestionUpdateRequest
type CreateCourseRequest = validator.CourseCreateRequest
type UpdateCourseRequest = validator.CourseUpdateRequest

// Requester identifies the caller of a read operation
type Requester struct {
	UserID string
	Role   models.UserRole
}

type QuestionDTO struct {
	ID            uint                `json:"id"`
	Position      int                 `json:"position"`
	Type          models.QuestionType `json:"type"`
	Text          string              `json:"text"`
	Points        int                 `json:"points"`
	Options       []string            `json:"options"`
	CorrectAnswer *string             `json:"correct_answer,omitempty"`
	Explanation   *string             `json:"explanation,omitempty"`
}

type QuizDTO struct {
	ID            uint             `json:"id"`
	Title         string           `json:"title"`
	Description   *string          `json:"description"`
	CourseID      uint             `json:"course_id"`
	IsClosed      bool             `json:"is_closed"`
	OpenTime      *time.Time       `json:"open_time"`
	CloseTime     *time.Time       `json:"close_time"`
	State         models.QuizState `json:"state"`
	QuestionCount int              `json:"question_count"`
	TotalPoints   int              `json:"total_points"`
	CreatedBy     string           `json:"created_by"`
	CreatedAt     time.Time        `json:"created_at"`

	// Student view
	Submitted *bool `json:"submitted,omitempty"`
	Score     *int  `json:"score,omitempty"`

	// Staff view
	Submissions []*SubmissionDTO `json:"submissions,omitempty"`
}

type SubmissionDTO struct {
	ID             uint             `json:"id"`
	QuizID         uint             `json:"quiz_id"`
	StudentID      string           `json:"student_id"`
	Score          int              `json:"score"`
	SubmissionDate time.Time        `json:"submission_date"`
	Answers        models.AnswerSet `json:"answers,omitempty"`
}

type GradeDTO struct {
	ID           uint      `json:"id"`
	SubmissionID uint      `json:"submission_id"`
	QuizID       uint      `json:"quiz_id"`
	Score        int       `json:"score"`
	GradedAt     time.Time `json:"graded_at"`
}

type QuizStatusResponse struct {
	QuizID   uint             `json:"quiz_id"`
	IsClosed bool             `json:"is_closed"`
	State    models.QuizState `json:"state"`
}

type AnswerResult struct {
	QuestionID uint `json:"question_id"`
	Correct    bool `json:"correct"`
	Points     int  `json:"points"`
}

type GradeQuizResponse struct {
	QuizID       uint           `json:"quiz_id"`
	Score        int            `json:"score"`
	EarnedPoints int            `json:"earned_points"`
	TotalPoints  int            `json:"total_points"`
	Results      []AnswerResult `json:"results,omitempty"` // staff only
}

type CourseListResponse struct {
	Courses []*models.Course `json:"courses"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Size    int              `json:"size"`
}

type ImportResult struct {
	Created []uint        `json:"created"`
	Failed  []ImportError `json:"failed,omitempty"`
}

type ImportError struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	Error string `json:"error"`
}

// ===== SERVICE INTERFACES =====

type QuizService interface {
	// Authoring
	CreateQuiz(ctx context.Context, req *CreateQuizRequest, instructorID string) (*QuizDTO, error)
	UpdateQuestion(ctx context.Context, quizID uint, index int, req *UpdateQuestionRequest) (*QuestionDTO, error)
	UpdateCorrectAnswer(ctx context.Context, questionID uint, newAnswer string) (*QuestionDTO, error)
	CloseQuiz(ctx context.Context, quizID uint) error
	DeleteQuiz(ctx context.Context, quizID uint) error

	// Reads
	GetQuizzesByCourse(ctx context.Context, courseID uint, requester Requester) ([]*QuizDTO, error)
	GetQuizDetails(ctx context.Context, quizID uint, requester Requester) (*QuizDTO, error)
	GetQuizQuestions(ctx context.Context, quizID uint, requester Requester) ([]*QuestionDTO, error)
	GetQuizStatus(ctx context.Context, quizID uint) (*QuizStatusResponse, error)

	// Submissions
	SubmitQuiz(ctx context.Context, studentID string, quizID uint, answers models.AnswerSet) (*SubmissionDTO, error)
	CheckSubmissionExists(ctx context.Context, studentID string, quizID uint) (bool, error)
	GetQuizResults(ctx context.Context, quizID uint) ([]*SubmissionDTO, error)
	GetMyGrades(ctx context.Context, studentID string) ([]*GradeDTO, error)
}

type GradingService interface {
	GradeQuiz(ctx context.Context, quizID uint, answers models.AnswerSet, requester Requester) (*GradeQuizResponse, error)
}

type CourseService interface {
	CreateCourse(ctx context.Context, req *CreateCourseRequest, requester Requester) (*models.Course, error)
	GetCourse(ctx context.Context, id uint) (*models.Course, error)
	ListCourses(ctx context.Context, filters repositories.CourseFilters) (*CourseListResponse, error)
	UpdateCourse(ctx context.Context, id uint, req *UpdateCourseRequest, requester Requester) (*models.Course, error)
	AssignInstructor(ctx context.Context, courseID uint, instructorID string) (*models.Course, error)
}

type ImportExportService interface {
	ImportQuizzes(ctx context.Context, r io.Reader, instructorID string) (*ImportResult, error)
	ExportQuizResults(ctx context.Context, quizID uint, w io.Writer) error
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Quiz() QuizService
	Grading() GradingService
	Course() CourseService
	ImportExport() ImportExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
