package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "lms-quiz-service"
	EventVersion = "1.0"

	// DefaultTopic carries every quiz lifecycle event
	DefaultTopic = "lms.quiz.events"
)

// Event types
const (
	QuizCreated   = "quiz.created"
	QuizSubmitted = "quiz.submitted"
	QuizRescored  = "quiz.rescored"
	QuizClosed    = "quiz.closed"
	QuizDeleted   = "quiz.deleted"
)

// Event is the envelope published for every domain event
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent wraps data in an envelope with a fresh ID
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// ===== EVENT PAYLOADS =====

type QuizCreatedEvent struct {
	QuizID        uint   `json:"quiz_id"`
	CourseID      uint   `json:"course_id"`
	Title         string `json:"title"`
	QuestionCount int    `json:"question_count"`
	CreatedBy     string `json:"created_by"`
}

type QuizSubmittedEvent struct {
	QuizID       uint   `json:"quiz_id"`
	SubmissionID uint   `json:"submission_id"`
	StudentID    string `json:"student_id"`
	Score        int    `json:"score"`
}

type QuizRescoredEvent struct {
	QuizID          uint `json:"quiz_id"`
	QuestionID      uint `json:"question_id"`
	SubmissionCount int  `json:"submission_count"`
}

type QuizClosedEvent struct {
	QuizID uint `json:"quiz_id"`
}

type QuizDeletedEvent struct {
	QuizID   uint `json:"quiz_id"`
	CourseID uint `json:"course_id"`
}
