package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hasan-ston/forstudents/internal/models"
	"github.com/hasan-ston/forstudents/internal/repositories"
)

type entitlementService struct {
	repo         repositories.Repository
	logger       *slog.Logger
	freeDocLimit int
}

func NewEntitlementService(repo repositories.Repository, logger *slog.Logger, freeDocLimit int) EntitlementService {
	return &entitlementService{
		repo:         repo,
		logger:       logger,
		freeDocLimit: freeDocLimit,
	}
}

// Authorize grants or denies access to a document and records an audit row
// for every grant. The user row is locked for the duration of the
// transaction, so two concurrent requests from the same user spend quota
// one after the other.
func (s *entitlementService) Authorize(ctx context.Context, userID, documentID uint, meta AccessMeta) error {
	return s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		user, err := tx.User().GetByIDForUpdate(ctx, userID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to lock user row: %w", err)
		}

		if user.HasUnlimitedAccess() {
			return s.recordGrant(ctx, tx, user.ID, documentID, meta)
		}

		seen, err := tx.Access().Exists(ctx, userID, documentID)
		if err != nil {
			return fmt.Errorf("failed to check prior access: %w", err)
		}
		if seen {
			// Re-reads never spend quota.
			return s.recordGrant(ctx, tx, user.ID, documentID, meta)
		}

		count, err := tx.Access().CountByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to count accesses: %w", err)
		}
		if count >= int64(s.freeDocLimit) {
			// Denied access leaves no trace, the rollback discards
			// nothing because nothing was written.
			return ErrPaymentRequired
		}

		access := &models.DocumentAccess{UserID: userID, DocumentID: documentID}
		if err := tx.Access().Create(ctx, access); err != nil {
			return fmt.Errorf("failed to record access: %w", err)
		}

		s.logger.Info("Free quota spent",
			"user_id", userID,
			"document_id", documentID,
			"used", count+1,
			"limit", s.freeDocLimit)

		return s.recordGrant(ctx, tx, user.ID, documentID, meta)
	})
}

func (s *entitlementService) recordGrant(ctx context.Context, tx repositories.Repository, userID, documentID uint, meta AccessMeta) error {
	audit := &models.DownloadAudit{
		UserID:     &userID,
		DocumentID: documentID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}
	if err := tx.Audit().Create(ctx, audit); err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}
