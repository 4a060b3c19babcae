package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hasan-ston/forstudents/internal/events"
	"github.com/hasan-ston/forstudents/internal/models"
	"github.com/hasan-ston/forstudents/internal/repositories"
	"github.com/hasan-ston/forstudents/internal/validator"
)

type feedbackService struct {
	repo      repositories.Repository
	publisher events.Publisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewFeedbackService(repo repositories.Repository, publisher events.Publisher, logger *slog.Logger, v *validator.Validator) FeedbackService {
	return &feedbackService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// Submit records feedback. The actor is nil for anonymous submissions.
func (s *feedbackService) Submit(ctx context.Context, actor *Actor, req *validator.FeedbackRequest) (*models.FeedbackResponse, error) {
	if verrs := s.validator.Validate(req); verrs.HasErrors() {
		return nil, validationFailure(verrs)
	}

	if req.DocumentID != nil {
		if _, err := s.repo.Document().GetByID(ctx, *req.DocumentID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrDocumentNotFound
			}
			return nil, fmt.Errorf("failed to get document: %w", err)
		}
	}

	entry := &models.Feedback{
		Message:    req.Message,
		DocumentID: req.DocumentID,
		Contact:    req.Contact,
	}
	if actor != nil {
		entry.UserID = &actor.ID
	}

	if err := s.repo.Feedback().Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}

	notification := events.Notification{
		Type:       events.EventFeedbackReceived,
		UserID:     entry.UserID,
		DocumentID: entry.DocumentID,
	}
	if err := s.publisher.Publish(ctx, notification); err != nil {
		s.logger.Warn("Failed to publish notification", "type", notification.Type, "error", err)
	}

	s.logger.Info("Feedback received", "feedback_id", entry.ID)
	return s.buildResponse(ctx, entry), nil
}

func (s *feedbackService) List(ctx context.Context, opts FeedbackListOptions) ([]*models.FeedbackResponse, int64, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	filters := repositories.FeedbackFilters{
		UserID:     opts.UserID,
		DocumentID: opts.DocumentID,
		Limit:      pageSize,
	}
	if opts.Page > 1 {
		filters.Offset = (opts.Page - 1) * pageSize
	}

	entries, total, err := s.repo.Feedback().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list feedback: %w", err)
	}

	responses := make([]*models.FeedbackResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, s.buildResponse(ctx, entry))
	}
	return responses, total, nil
}

func (s *feedbackService) buildResponse(ctx context.Context, entry *models.Feedback) *models.FeedbackResponse {
	resp := &models.FeedbackResponse{
		ID:         entry.ID,
		Message:    entry.Message,
		Contact:    entry.Contact,
		DocumentID: entry.DocumentID,
		CreatedAt:  entry.CreatedAt,
	}
	if entry.UserID != nil {
		if user, err := s.repo.User().GetByID(ctx, *entry.UserID); err == nil {
			resp.UserEmail = user.Email
		}
	}
	return resp
}
