package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-quiz-service/internal/models"
	"github.com/SAP-F-2025/lms-quiz-service/internal/repositories"
)

type SubmissionPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// Create inserts a submission. The (student_id, quiz_id) unique index rejects duplicates.
func (s *SubmissionPostgreSQL) Create(ctx context.Context, submission *models.Submission) error {
	if err := s.db.WithContext(ctx).Create(submission).Error; err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

func (s *SubmissionPostgreSQL) GetByStudentAndQuiz(ctx context.Context, studentID string, quizID uint) (*models.Submission, error) {
	var submission models.Submission
	err := s.db.WithContext(ctx).
		Where("student_id = ? AND quiz_id = ?", studentID, quizID).
		First(&submission).Error
	if err != nil {
		return nil, translateNotFound(err, "submission for quiz", quizID)
	}
	return &submission, nil
}

func (s *SubmissionPostgreSQL) ExistsByStudentAndQuiz(ctx context.Context, studentID string, quizID uint) (bool, error) {
	exists, err := s.helpers.Exists(ctx, &models.Submission{}, "student_id = ? AND quiz_id = ?", studentID, quizID)
	if err != nil {
		return false, fmt.Errorf("failed to check submission: %w", err)
	}
	return exists, nil
}

// ListByQuiz returns submissions of a quiz. A zero limit returns every row.
func (s *SubmissionPostgreSQL) ListByQuiz(ctx context.Context, quizID uint, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Submission{}).Where("quiz_id = ?", quizID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count submissions: %w", err)
	}

	submissions := make([]*models.Submission, 0)
	query = s.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset, "submission_date")
	if err := query.Find(&submissions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list submissions: %w", err)
	}

	return submissions, total, nil
}

func (s *SubmissionPostgreSQL) UpdateScore(ctx context.Context, id uint, score int) error {
	result := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Update("score", score)
	if result.Error != nil {
		return fmt.Errorf("failed to update submission score: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("submission %d: %w", id, repositories.ErrNotFound)
	}
	return nil
}

func (s *SubmissionPostgreSQL) DeleteByQuiz(ctx context.Context, quizID uint) error {
	if err := s.db.WithContext(ctx).Where("quiz_id = ?", quizID).Delete(&models.Submission{}).Error; err != nil {
		return fmt.Errorf("failed to delete submissions: %w", err)
	}
	return nil
}
