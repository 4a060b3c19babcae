package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hasan-ston/forstudents/internal/config"
	"github.com/hasan-ston/forstudents/internal/events"
	"github.com/hasan-ston/forstudents/internal/notes"
	"github.com/hasan-ston/forstudents/internal/repositories"
	"github.com/hasan-ston/forstudents/internal/storage"
	"github.com/hasan-ston/forstudents/internal/validator"
)

// serviceManager implements ServiceManager interface
type serviceManager struct {
	repo      repositories.Repository
	store     *storage.Store
	generator notes.Generator
	publisher events.Publisher
	logger    *slog.Logger
	validator *validator.Validator
	cfg       *config.Config

	authService        AuthService
	entitlementService EntitlementService
	documentService    DocumentService
	questionService    QuestionService
	billingService     BillingService
	feedbackService    FeedbackService
	auditService       AuditService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a service manager with all dependencies.
func NewServiceManager(
	repo repositories.Repository,
	store *storage.Store,
	generator notes.Generator,
	publisher events.Publisher,
	logger *slog.Logger,
	v *validator.Validator,
	cfg *config.Config,
) ServiceManager {
	return &serviceManager{
		repo:      repo,
		store:     store,
		generator: generator,
		publisher: publisher,
		logger:    logger,
		validator: v,
		cfg:       cfg,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	sm.authService = NewAuthService(sm.repo, sm.logger, sm.validator, sm.cfg.JWT, sm.cfg.Gate)
	sm.entitlementService = NewEntitlementService(sm.repo, sm.logger, sm.cfg.Gate.FreeDocLimit)
	sm.documentService = NewDocumentService(sm.repo, sm.store, sm.entitlementService, sm.publisher, sm.logger, sm.validator, sm.cfg.Storage)
	sm.questionService = NewQuestionService(sm.repo, sm.store, sm.generator, sm.logger)
	sm.billingService = NewBillingService(sm.repo, sm.publisher, sm.logger, sm.validator, sm.cfg.Billing)
	sm.feedbackService = NewFeedbackService(sm.repo, sm.publisher, sm.logger, sm.validator)
	sm.auditService = NewAuditService(sm.repo, sm.logger)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.authService
}

func (sm *serviceManager) Entitlement() EntitlementService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.entitlementService
}

func (sm *serviceManager) Document() DocumentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.documentService
}

func (sm *serviceManager) Question() QuestionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.questionService
}

func (sm *serviceManager) Billing() BillingService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.billingService
}

func (sm *serviceManager) Feedback() FeedbackService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.feedbackService
}

func (sm *serviceManager) Audit() AuditService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.auditService
}

func (sm *serviceManager) mustBeInitialized() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if err := sm.publisher.Close(); err != nil {
		sm.logger.Error("Failed to close event publisher", "error", err)
	}
	if err := sm.repo.Close(); err != nil {
		sm.logger.Error("Failed to close repository", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
