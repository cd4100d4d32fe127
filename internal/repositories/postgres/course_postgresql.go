package postgres

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-quiz-service/internal/cache"
	"github.com/SAP-F-2025/lms-quiz-service/internal/models"
	"github.com/SAP-F-2025/lms-quiz-service/internal/repositories"
)

type CoursePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
	readCache    bool
	deferred     *cache.Deferred
}

func NewCoursePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.CourseRepository {
	return newCoursePostgreSQL(db, cacheManager, nil)
}

// newCoursePostgreSQL binds the store to a transaction when deferred is set: reads
// skip the cache and invalidations wait for the commit.
func newCoursePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager, deferred *cache.Deferred) *CoursePostgreSQL {
	return &CoursePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
		readCache:    deferred == nil,
		deferred:     deferred,
	}
}

// Create creates a new course and invalidates course listings
func (c *CoursePostgreSQL) Create(ctx context.Context, course *models.Course) error {
	if err := c.db.WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	c.deferred.Run(ctx, func(ctx context.Context) {
		cache.SafeInvalidatePattern(ctx, c.cacheManager.Course, "list:*")
	})
	return nil
}

// GetByID retrieves a course by ID with caching
func (c *CoursePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	fetch := func() (interface{}, error) {
		var course models.Course
		if err := c.db.WithContext(ctx).First(&course, id).Error; err != nil {
			return nil, translateNotFound(err, "course", id)
		}
		return &course, nil
	}

	if !c.readCache {
		v, err := fetch()
		if err != nil {
			return nil, err
		}
		return v.(*models.Course), nil
	}

	var course models.Course
	if err := c.cacheManager.Course.CacheOrExecute(ctx, fmt.Sprintf("id:%d", id), &course, cache.CourseCacheConfig.TTL, fetch); err != nil {
		return nil, err
	}
	return &course, nil
}

// Update saves the course
func (c *CoursePostgreSQL) Update(ctx context.Context, course *models.Course) error {
	if err := c.db.WithContext(ctx).Save(course).Error; err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}

	c.invalidate(ctx, course.ID)
	return nil
}

// List returns a page of courses and the total count
func (c *CoursePostgreSQL) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	query := c.db.WithContext(ctx).Model(&models.Course{})
	if filters.InstructorID != nil {
		query = query.Where("instructor_id = ?", *filters.InstructorID)
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		query = query.Where("title ILIKE ?", "%"+q+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count courses: %w", err)
	}

	var courses []*models.Course
	query = c.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset, "created_at")
	if err := query.Find(&courses).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}

	return courses, total, nil
}

func (c *CoursePostgreSQL) ExistsByID(ctx context.Context, id uint) (bool, error) {
	return c.helpers.Exists(ctx, &models.Course{}, "id = ?", id)
}

// ExistsByTitle checks title uniqueness, optionally ignoring one course
func (c *CoursePostgreSQL) ExistsByTitle(ctx context.Context, title string, excludeID *uint) (bool, error) {
	if excludeID != nil {
		return c.helpers.Exists(ctx, &models.Course{}, "title = ? AND id <> ?", title, *excludeID)
	}
	return c.helpers.Exists(ctx, &models.Course{}, "title = ?", title)
}

// AssignInstructor sets the instructor of a course
func (c *CoursePostgreSQL) AssignInstructor(ctx context.Context, courseID uint, instructorID string) error {
	result := c.db.WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ?", courseID).
		Update("instructor_id", instructorID)
	if result.Error != nil {
		return fmt.Errorf("failed to assign instructor: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("course %d: %w", courseID, repositories.ErrNotFound)
	}

	c.invalidate(ctx, courseID)
	return nil
}

func (c *CoursePostgreSQL) invalidate(ctx context.Context, courseID uint) {
	c.deferred.Run(ctx, func(ctx context.Context) {
		cache.InvalidateCourseCache(ctx, c.cacheManager, courseID)
	})
}
