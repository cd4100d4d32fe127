package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-quiz-service/internal/models"
	"github.com/SAP-F-2025/lms-quiz-service/internal/repositories"
)

type GradePostgreSQL struct {
	db *gorm.DB
}

func NewGradePostgreSQL(db *gorm.DB) repositories.GradeRepository {
	return &GradePostgreSQL{db: db}
}

func (g *GradePostgreSQL) Create(ctx context.Context, grade *models.Grade) error {
	if err := g.db.WithContext(ctx).Create(grade).Error; err != nil {
		return fmt.Errorf("failed to create grade: %w", err)
	}
	return nil
}

// UpdateScoreBySubmission copies a rescored value onto the grade of a submission
func (g *GradePostgreSQL) UpdateScoreBySubmission(ctx context.Context, submissionID uint, score int) error {
	err := g.db.WithContext(ctx).
		Model(&models.Grade{}).
		Where("submission_id = ?", submissionID).
		Update("score", score).Error
	if err != nil {
		return fmt.Errorf("failed to update grade: %w", err)
	}
	return nil
}

func (g *GradePostgreSQL) ListByStudent(ctx context.Context, studentID string) ([]*models.Grade, error) {
	grades := make([]*models.Grade, 0)
	err := g.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&grades).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list grades: %w", err)
	}
	return grades, nil
}

func (g *GradePostgreSQL) DeleteByQuiz(ctx context.Context, quizID uint) error {
	if err := g.db.WithContext(ctx).Where("quiz_id = ?", quizID).Delete(&models.Grade{}).Error; err != nil {
		return fmt.Errorf("failed to delete grades: %w", err)
	}
	return nil
}
