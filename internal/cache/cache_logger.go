package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateQuizCache drops the cached quiz, its question list and the owning course listing
func InvalidateQuizCache(ctx context.Context, cm *CacheManager, quizID, courseID uint) {
	if cm == nil {
		return
	}
	SafeDelete(ctx, cm.Quiz,
		fmt.Sprintf("id:%d", quizID),
		fmt.Sprintf("course:%d", courseID))
	SafeDelete(ctx, cm.Question, fmt.Sprintf("quiz:%d", quizID))
}

// InvalidateCourseCache drops a cached course and every course listing
func InvalidateCourseCache(ctx context.Context, cm *CacheManager, courseID uint) {
	if cm == nil {
		return
	}
	SafeDelete(ctx, cm.Course, fmt.Sprintf("id:%d", courseID))
	SafeInvalidatePattern(ctx, cm.Course, "list:*")
}
