package models

import (
	"time"

	"gorm.io/datatypes"
)

// AnswerSet maps question IDs to the raw answers a student submitted.
type AnswerSet map[uint]string

type Submission struct {
	ID             uint                          `json:"id" gorm:"primaryKey"`
	QuizID         uint                          `json:"quiz_id" gorm:"not null;uniqueIndex:uq_submission_student_quiz,priority:2;index"`
	StudentID      string                        `json:"student_id" gorm:"not null;size:255;uniqueIndex:uq_submission_student_quiz,priority:1"`
	SubmissionDate time.Time                     `json:"submission_date" gorm:"not null"`
	Score          int                           `json:"score" gorm:"not null;default:0"`
	IsSubmitted    bool                          `json:"is_submitted" gorm:"not null;default:true"`
	Answers        datatypes.JSONType[AnswerSet] `json:"answers" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Quiz  *Quiz  `json:"-" gorm:"foreignKey:QuizID"`
	Grade *Grade `json:"-" gorm:"foreignKey:SubmissionID"`
}

func (Submission) TableName() string {
	return "quiz_submissions"
}

// AnswerMap returns the stored answers.
func (s *Submission) AnswerMap() AnswerSet {
	return s.Answers.Data()
}

type Grade struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	SubmissionID uint      `json:"submission_id" gorm:"not null;uniqueIndex"`
	QuizID       uint      `json:"quiz_id" gorm:"not null;index"`
	StudentID    string    `json:"student_id" gorm:"not null;size:255;index"`
	Score        int       `json:"score" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Grade) TableName() string {
	return "grades"
}
