package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/hasan-ston/forstudents/internal/models"
	"github.com/hasan-ston/forstudents/internal/repositories"
)

// AccessPostgreSQL implements AccessRepository using GORM.
type AccessPostgreSQL struct {
	db *gorm.DB
}

func NewAccessPostgreSQL(db *gorm.DB) repositories.AccessRepository {
	return &AccessPostgreSQL{db: db}
}

func (r *AccessPostgreSQL) Create(ctx context.Context, access *models.DocumentAccess) error {
	if err := r.db.WithContext(ctx).Create(access).Error; err != nil {
		return fmt.Errorf("failed to create document access: %w", err)
	}
	return nil
}

func (r *AccessPostgreSQL) Exists(ctx context.Context, userID, documentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.DocumentAccess{}).
		Where("user_id = ? AND document_id = ?", userID, documentID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check document access: %w", err)
	}
	return count > 0, nil
}

func (r *AccessPostgreSQL) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.DocumentAccess{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count document accesses: %w", err)
	}
	return count, nil
}

func (r *AccessPostgreSQL) ListDocumentIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.DocumentAccess{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("document_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list accessed document IDs: %w", err)
	}
	return ids, nil
}

func (r *AccessPostgreSQL) DeleteByDocument(ctx context.Context, documentID uint) error {
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Delete(&models.DocumentAccess{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete document accesses: %w", err)
	}
	return nil
}
