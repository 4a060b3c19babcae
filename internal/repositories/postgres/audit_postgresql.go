package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/hasan-ston/forstudents/internal/models"
	"github.com/hasan-ston/forstudents/internal/repositories"
)

// AuditPostgreSQL implements AuditRepository using GORM. Audit rows are
// append-only; there is no update path.
type AuditPostgreSQL struct {
	db *gorm.DB
}

func NewAuditPostgreSQL(db *gorm.DB) repositories.AuditRepository {
	return &AuditPostgreSQL{db: db}
}

func (r *AuditPostgreSQL) Create(ctx context.Context, audit *models.DownloadAudit) error {
	if err := r.db.WithContext(ctx).Create(audit).Error; err != nil {
		return fmt.Errorf("failed to create download audit: %w", err)
	}
	return nil
}

func (r *AuditPostgreSQL) List(ctx context.Context, filters repositories.AuditFilters) ([]*models.DownloadAudit, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.DownloadAudit{})

	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.DocumentID != nil {
		query = query.Where("document_id = ?", *filters.DocumentID)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count download audits: %w", err)
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var audits []*models.DownloadAudit
	if err := query.Order("created_at DESC").Find(&audits).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list download audits: %w", err)
	}
	return audits, total, nil
}

func (r *AuditPostgreSQL) DeleteByDocument(ctx context.Context, documentID uint) error {
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Delete(&models.DownloadAudit{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete download audits: %w", err)
	}
	return nil
}
