package repositories

import "context"

// Repository aggregates the per-entity repositories.
type Repository interface {
	User() UserRepository
	Document() DocumentRepository
	Access() AccessRepository
	Audit() AuditRepository
	QuestionSet() QuestionSetRepository
	Feedback() FeedbackRepository

	// WithTransaction runs fn against a repository bound to a single
	// database transaction; fn returning an error rolls everything back.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
