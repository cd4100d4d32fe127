package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-quiz-service/internal/cache"
	"github.com/SAP-F-2025/lms-quiz-service/internal/models"
	"github.com/SAP-F-2025/lms-quiz-service/internal/repositories"
)

type QuestionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
	readCache    bool
	deferred     *cache.Deferred
}

func NewQuestionPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.QuestionRepository {
	return newQuestionPostgreSQL(db, cacheManager, nil)
}

// newQuestionPostgreSQL binds the store to a transaction when deferred is set: reads
// skip the cache and invalidations wait for the commit.
func newQuestionPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager, deferred *cache.Deferred) *QuestionPostgreSQL {
	return &QuestionPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
		readCache:    deferred == nil,
		deferred:     deferred,
	}
}

// GetByID retrieves a question by ID
func (q *QuestionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, translateNotFound(err, "question", id)
	}
	return &question, nil
}

// GetByQuiz retrieves the questions of a quiz in position order, with caching
func (q *QuestionPostgreSQL) GetByQuiz(ctx context.Context, quizID uint) ([]*models.Question, error) {
	fetch := func() (interface{}, error) {
		questions := make([]*models.Question, 0)
		err := q.db.WithContext(ctx).
			Where("quiz_id = ?", quizID).
			Order("position ASC, id ASC").
			Find(&questions).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get questions by quiz: %w", err)
		}
		return questions, nil
	}

	if !q.readCache {
		v, err := fetch()
		if err != nil {
			return nil, err
		}
		return v.([]*models.Question), nil
	}

	questions := make([]*models.Question, 0)
	if err := q.cacheManager.Question.CacheOrExecute(ctx, fmt.Sprintf("quiz:%d", quizID), &questions, cache.QuestionCacheConfig.TTL, fetch); err != nil {
		return nil, err
	}
	return questions, nil
}

// Update saves a question and drops the cached quiz views that embed it
func (q *QuestionPostgreSQL) Update(ctx context.Context, question *models.Question) error {
	if err := q.db.WithContext(ctx).Save(question).Error; err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}

	q.invalidateQuizCaches(ctx, question.QuizID)
	return nil
}

// DeleteByQuiz removes every question of a quiz
func (q *QuestionPostgreSQL) DeleteByQuiz(ctx context.Context, quizID uint) error {
	if err := q.db.WithContext(ctx).Where("quiz_id = ?", quizID).Delete(&models.Question{}).Error; err != nil {
		return fmt.Errorf("failed to delete questions: %w", err)
	}

	q.dropQuestionList(ctx, quizID)
	return nil
}

func (q *QuestionPostgreSQL) invalidateQuizCaches(ctx context.Context, quizID uint) {
	var quiz models.Quiz
	if err := q.db.WithContext(ctx).Select("id, course_id").First(&quiz, quizID).Error; err != nil {
		q.dropQuestionList(ctx, quizID)
		return
	}
	q.deferred.Run(ctx, func(ctx context.Context) {
		cache.InvalidateQuizCache(ctx, q.cacheManager, quizID, quiz.CourseID)
	})
}

func (q *QuestionPostgreSQL) dropQuestionList(ctx context.Context, quizID uint) {
	key := fmt.Sprintf("quiz:%d", quizID)
	q.deferred.Run(ctx, func(ctx context.Context) {
		cache.SafeDelete(ctx, q.cacheManager.Question, key)
	})
}
