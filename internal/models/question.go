package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
)

// Valid reports whether t is one of the supported question types.
func (t QuestionType) Valid() bool {
	switch t {
	case MultipleChoice, TrueFalse, ShortAnswer:
		return true
	}
	return false
}

type Question struct {
	ID       uint         `json:"id" gorm:"primaryKey"`
	QuizID   uint         `json:"quiz_id" gorm:"not null;index"`
	Position int          `json:"position" gorm:"not null;default:0"`
	Type     QuestionType `json:"type" gorm:"not null;size:30"`
	Text     string       `json:"text" gorm:"type:text;not null"`
	Points   int          `json:"points" gorm:"not null;default:0"`

	Options       datatypes.JSONSlice[string] `json:"options" gorm:"type:jsonb"`
	CorrectAnswer string                      `json:"correct_answer,omitempty" gorm:"type:text;not null"`
	Explanation   *string                     `json:"explanation" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// HasOption reports whether answer is one of the question's options, ignoring
// surrounding whitespace.
func (q *Question) HasOption(answer string) bool {
	answer = strings.TrimSpace(answer)
	for _, option := range q.Options {
		if strings.TrimSpace(option) == answer {
			return true
		}
	}
	return false
}
