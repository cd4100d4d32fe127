package models

import (
	"time"

	"gorm.io/gorm"
)

type Course struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	Title        string  `json:"title" gorm:"not null;size:200;uniqueIndex"`
	Description  string  `json:"description" gorm:"type:text;not null"`
	Duration     int     `json:"duration" gorm:"not null"` // hours
	InstructorID *string `json:"instructor_id" gorm:"size:255;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations (the instructor is resolved through the user repository)
	Quizzes []Quiz `json:"-" gorm:"foreignKey:CourseID"`
}

func (Course) TableName() string {
	return "courses"
}
