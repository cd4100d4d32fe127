package validator

import (
	"time"

	"github.com/SAP-F-2025/lms-quiz-service/internal/models"
)

// QuizCreateRequest represents the request structure for creating a quiz with its questions
type QuizCreateRequest struct {
	CourseID    uint                    `json:"course_id" yaml:"course_id" validate:"required"`
	Title       string                  `json:"title" yaml:"title" validate:"required,quiz_title"`
	Description *string                 `json:"description" yaml:"description" validate:"omitempty,max=1000"`
	OpenTime    *time.Time              `json:"open_time" yaml:"open_time"`
	CloseTime   *time.Time              `json:"close_time" yaml:"close_time"`
	Questions   []QuestionCreateRequest `json:"questions" yaml:"questions" validate:"omitempty,max=200,dive"`
}

// QuestionCreateRequest represents one question nested in a quiz creation request
type QuestionCreateRequest struct {
	Text          string              `json:"text" yaml:"text" validate:"required,non_blank,max=2000"`
	Type          models.QuestionType `json:"type" yaml:"type" validate:"required,question_type"`
	Options       []string            `json:"options" yaml:"options" validate:"omitempty,max=20,dive,non_blank"`
	CorrectAnswer string              `json:"correct_answer" yaml:"correct_answer" validate:"required,non_blank"`
	Points        int                 `json:"points" yaml:"points" validate:"min=0,max=1000"`
	Explanation   *string             `json:"explanation" yaml:"explanation" validate:"omitempty,max=2000"`
}

// QuestionUpdateRequest replaces the provided fields of a question
type QuestionUpdateRequest struct {
	Text          *string              `json:"text" validate:"omitempty,non_blank,max=2000"`
	Type          *models.QuestionType `json:"type" validate:"omitempty,question_type"`
	Options       []string             `json:"options" validate:"omitempty,max=20,dive,non_blank"`
	CorrectAnswer *string              `json:"correct_answer" validate:"omitempty,non_blank"`
	Points        *int                 `json:"points" validate:"omitempty,min=0,max=1000"`
	Explanation   *string              `json:"explanation" validate:"omitempty,max=2000"`
}

// SubmitQuizRequest carries a student's answers keyed by question ID
type SubmitQuizRequest struct {
	Answers models.AnswerSet `json:"answers" validate:"required"`
}

// GradeQuizRequest carries answers for the stateless grading endpoint
type GradeQuizRequest struct {
	Answers models.AnswerSet `json:"answers" validate:"required,min=1"`
}

// UpdateCorrectAnswerRequest changes the stored answer of a question
type UpdateCorrectAnswerRequest struct {
	CorrectAnswer string `json:"correct_answer" validate:"required,non_blank"`
}

// CourseCreateRequest represents the request structure for creating courses
type CourseCreateRequest struct {
	Title        string  `json:"title" validate:"required,non_blank,max=200"`
	Description  string  `json:"description" validate:"required,non_blank,max=1000"`
	Duration     int     `json:"duration" validate:"required,min=1"`
	InstructorID *string `json:"instructor_id" validate:"omitempty,max=255"`
}

// CourseUpdateRequest represents the request structure for updating courses
type CourseUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,non_blank,max=200"`
	Description *string `json:"description" validate:"omitempty,non_blank,max=1000"`
	Duration    *int    `json:"duration" validate:"omitempty,min=1"`
}

// AssignInstructorRequest assigns an instructor to a course
type AssignInstructorRequest struct {
	InstructorID string `json:"instructor_id" validate:"required,max=255"`
}
