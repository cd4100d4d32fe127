package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-quiz-service/internal/cache"
	"github.com/SAP-F-2025/lms-quiz-service/internal/models"
	"github.com/SAP-F-2025/lms-quiz-service/internal/repositories"
)

type QuizPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
	readCache    bool
	deferred     *cache.Deferred
}

func NewQuizPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.QuizRepository {
	return newQuizPostgreSQL(db, cacheManager, nil)
}

// newQuizPostgreSQL binds the store to a transaction when deferred is set: reads
// skip the cache and invalidations wait for the commit.
func newQuizPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager, deferred *cache.Deferred) *QuizPostgreSQL {
	return &QuizPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
		readCache:    deferred == nil,
		deferred:     deferred,
	}
}

// ===== BASIC CRUD OPERATIONS =====

// Create inserts the quiz together with its questions
func (q *QuizPostgreSQL) Create(ctx context.Context, quiz *models.Quiz) error {
	for i := range quiz.Questions {
		quiz.Questions[i].Position = i
	}

	if err := q.db.WithContext(ctx).Create(quiz).Error; err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}

	courseKey := fmt.Sprintf("course:%d", quiz.CourseID)
	q.deferred.Run(ctx, func(ctx context.Context) {
		cache.SafeDelete(ctx, q.cacheManager.Quiz, courseKey)
	})
	return nil
}

// GetByID retrieves a quiz without its questions
func (q *QuizPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	fetch := func() (interface{}, error) {
		var quiz models.Quiz
		if err := q.db.WithContext(ctx).First(&quiz, id).Error; err != nil {
			return nil, translateNotFound(err, "quiz", id)
		}
		return &quiz, nil
	}

	if !q.readCache {
		v, err := fetch()
		if err != nil {
			return nil, err
		}
		return v.(*models.Quiz), nil
	}

	var quiz models.Quiz
	if err := q.cacheManager.Quiz.CacheOrExecute(ctx, fmt.Sprintf("id:%d", id), &quiz, cache.QuizCacheConfig.TTL, fetch); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// GetByIDWithQuestions loads the quiz and its questions in position order
func (q *QuizPostgreSQL) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := q.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		First(&quiz, id).Error
	if err != nil {
		return nil, translateNotFound(err, "quiz", id)
	}
	return &quiz, nil
}

// GetByCourse lists the quizzes of a course with their questions
func (q *QuizPostgreSQL) GetByCourse(ctx context.Context, courseID uint) ([]*models.Quiz, error) {
	fetch := func() (interface{}, error) {
		quizzes := make([]*models.Quiz, 0)
		err := q.db.WithContext(ctx).
			Where("course_id = ?", courseID).
			Preload("Questions", func(db *gorm.DB) *gorm.DB {
				return db.Order("position ASC, id ASC")
			}).
			Order("id ASC").
			Find(&quizzes).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get quizzes by course: %w", err)
		}
		return quizzes, nil
	}

	if !q.readCache {
		v, err := fetch()
		if err != nil {
			return nil, err
		}
		return v.([]*models.Quiz), nil
	}

	quizzes := make([]*models.Quiz, 0)
	if err := q.cacheManager.Quiz.CacheOrExecute(ctx, fmt.Sprintf("course:%d", courseID), &quizzes, cache.QuizCacheConfig.TTL, fetch); err != nil {
		return nil, err
	}
	return quizzes, nil
}

// MarkClosed sets the closed flag. Closing is one-way.
func (q *QuizPostgreSQL) MarkClosed(ctx context.Context, id uint) error {
	var quiz models.Quiz
	if err := q.db.WithContext(ctx).Select("id, course_id").First(&quiz, id).Error; err != nil {
		return translateNotFound(err, "quiz", id)
	}

	if err := q.db.WithContext(ctx).Model(&quiz).Update("is_closed", true).Error; err != nil {
		return fmt.Errorf("failed to close quiz: %w", err)
	}

	q.invalidate(ctx, id, quiz.CourseID)
	return nil
}

// Delete removes the quiz row. Dependent rows must already be gone.
func (q *QuizPostgreSQL) Delete(ctx context.Context, id uint) error {
	var quiz models.Quiz
	if err := q.db.WithContext(ctx).Select("id, course_id").First(&quiz, id).Error; err != nil {
		return translateNotFound(err, "quiz", id)
	}

	if err := q.db.WithContext(ctx).Delete(&models.Quiz{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}

	q.invalidate(ctx, id, quiz.CourseID)
	return nil
}

func (q *QuizPostgreSQL) invalidate(ctx context.Context, quizID, courseID uint) {
	q.deferred.Run(ctx, func(ctx context.Context) {
		cache.InvalidateQuizCache(ctx, q.cacheManager, quizID, courseID)
	})
}
