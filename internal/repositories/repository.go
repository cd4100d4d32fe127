package repositories

import "context"

// Repository aggregates every store the quiz service reads and writes
type Repository interface {
	// Supporting stores
	User() UserRepository
	Course() CourseRepository

	// Quiz domain
	Quiz() QuizRepository
	Question() QuestionRepository

	// Results domain
	Submission() SubmissionRepository
	Grade() GradeRepository

	// Transaction support. The Repository passed to fn is bound to the transaction.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
