package models

import (
	"time"
)

// QuizState is derived from the quiz window and the closed flag, never stored.
type QuizState string

const (
	QuizUpcoming QuizState = "upcoming"
	QuizActive   QuizState = "active"
	QuizClosed   QuizState = "closed"
)

type Quiz struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"not null;size:200;index"`
	Description *string    `json:"description" gorm:"type:text"`
	CourseID    uint       `json:"course_id" gorm:"not null;index"`
	IsClosed    bool       `json:"is_closed" gorm:"not null;default:false"`
	OpenTime    *time.Time `json:"open_time"`
	CloseTime   *time.Time `json:"close_time"`

	// Metadata
	CreatedBy string    `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Course    *Course    `json:"-" gorm:"foreignKey:CourseID"`
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// StateAt evaluates the quiz state machine at the given instant.
func (q *Quiz) StateAt(now time.Time) QuizState {
	if q.IsClosed || (q.CloseTime != nil && now.After(*q.CloseTime)) {
		return QuizClosed
	}
	if q.OpenTime != nil && now.Before(*q.OpenTime) {
		return QuizUpcoming
	}
	return QuizActive
}

// IsEndedAt is the closed/ended status reported to clients.
func (q *Quiz) IsEndedAt(now time.Time) bool {
	return q.StateAt(now) == QuizClosed
}

// TotalPoints sums the points of the loaded questions.
func (q *Quiz) TotalPoints() int {
	total := 0
	for _, question := range q.Questions {
		if question.Points > 0 {
			total += question.Points
		}
	}
	return total
}
