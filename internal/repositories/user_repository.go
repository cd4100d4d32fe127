package repositories

import (
	"context"

	"github.com/SAP-F-2025/lms-quiz-service/internal/models"
)

// UserFilters defines filters for user queries
type UserFilters struct {
	Role   *models.UserRole // Restrict to one role
	Query  string           // Search query for name or email
	Limit  int              // Page size
	Offset int              // Offset for pagination
}

// UserRepository interface for user operations. Only the local store accepts writes.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)

	ExistsByID(ctx context.Context, id string) (bool, error)
	HasRole(ctx context.Context, id string, role models.UserRole) (bool, error)

	// Upsert creates the user or refreshes its name, email and role
	Upsert(ctx context.Context, user *models.User) error
}
