package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hasan-ston/forstudents/internal/config"
	"github.com/hasan-ston/forstudents/internal/events"
	"github.com/hasan-ston/forstudents/internal/models"
	"github.com/hasan-ston/forstudents/internal/repositories"
	"github.com/hasan-ston/forstudents/internal/validator"
)

// Webhook event names accepted from the billing provider.
const (
	WebhookCheckoutCompleted   = "checkout.completed"
	WebhookSubscriptionDeleted = "subscription.deleted"
)

type billingService struct {
	repo      repositories.Repository
	publisher events.Publisher
	logger    *slog.Logger
	validator *validator.Validator
	cfg       config.BillingConfig
}

func NewBillingService(repo repositories.Repository, publisher events.Publisher, logger *slog.Logger, v *validator.Validator, cfg config.BillingConfig) BillingService {
	return &billingService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: v,
		cfg:       cfg,
	}
}

// Checkout purchases the paid plan. With SIMULATE_PAYMENTS enabled no real
// provider is involved: the plan flips immediately and the upgrade event is
// published, the same end state a real provider would reach via webhook.
func (s *billingService) Checkout(ctx context.Context, actor Actor, req *validator.CheckoutRequest) (*CheckoutResult, error) {
	if verrs := s.validator.Validate(req); verrs.HasErrors() {
		return nil, validationFailure(verrs)
	}
	if req.Plan != models.PlanPaid {
		return nil, validationFailure(validator.ValidationErrors{{
			Field:   "plan",
			Message: "only the paid plan can be purchased",
			Rule:    "plan_status",
		}})
	}

	user, err := s.repo.User().GetByID(ctx, actor.ID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.Plan == models.PlanPaid {
		return nil, ErrConflict
	}

	if !s.cfg.SimulatePayments {
		return nil, ErrBillingNotConfigured
	}

	if err := s.repo.User().UpdatePlan(ctx, actor.ID, models.PlanPaid); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}

	s.publish(ctx, events.Notification{
		Type:   events.EventPlanUpgraded,
		UserID: &actor.ID,
		Data:   map[string]string{"plan": string(models.PlanPaid)},
	})

	sessionID := uuid.NewString()
	s.logger.Info("Simulated checkout completed", "user_id", actor.ID, "session_id", sessionID)

	return &CheckoutResult{
		SessionID: sessionID,
		Plan:      models.PlanPaid,
		Simulated: true,
	}, nil
}

// HandleWebhook applies a provider callback. checkout.completed upgrades
// the user, subscription.deleted downgrades. Replayed events are no-ops.
func (s *billingService) HandleWebhook(ctx context.Context, signature string, req *validator.WebhookRequest) error {
	if verrs := s.validator.Validate(req); verrs.HasErrors() {
		return validationFailure(verrs)
	}

	if s.cfg.WebhookSecret != "" {
		if !s.verifySignature(signature, req) {
			return ErrUnauthorized
		}
	}

	user, err := s.repo.User().GetByID(ctx, req.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	var target models.PlanStatus
	var eventType string
	switch req.Event {
	case WebhookCheckoutCompleted:
		target, eventType = models.PlanPaid, events.EventPlanUpgraded
	case WebhookSubscriptionDeleted:
		target, eventType = models.PlanFree, events.EventPlanDowngraded
	default:
		return validationFailure(validator.ValidationErrors{{
			Field:   "event",
			Message: "unknown event",
			Value:   req.Event,
			Rule:    "oneof",
		}})
	}

	if user.Plan == target {
		return nil
	}

	if err := s.repo.User().UpdatePlan(ctx, req.UserID, target); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update plan: %w", err)
	}

	s.publish(ctx, events.Notification{
		Type:   eventType,
		UserID: &req.UserID,
		Data:   map[string]string{"plan": string(target)},
	})

	s.logger.Info("Plan updated from webhook", "user_id", req.UserID, "plan", target, "event", req.Event)
	return nil
}

func (s *billingService) verifySignature(signature string, req *validator.WebhookRequest) bool {
	mac := hmac.New(sha256.New, []byte(s.cfg.WebhookSecret))
	fmt.Fprintf(mac, "%d:%s", req.UserID, req.Event)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *billingService) publish(ctx context.Context, n events.Notification) {
	if err := s.publisher.Publish(ctx, n); err != nil {
		s.logger.Warn("Failed to publish notification", "type", n.Type, "error", err)
	}
}
