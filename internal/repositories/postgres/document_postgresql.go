package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/hasan-ston/forstudents/internal/cache"
	"github.com/hasan-ston/forstudents/internal/models"
	"github.com/hasan-ston/forstudents/internal/repositories"
)

// DocumentPostgreSQL implements DocumentRepository using GORM.
type DocumentPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.Manager
}

func NewDocumentPostgreSQL(db *gorm.DB, cacheManager *cache.Manager) repositories.DocumentRepository {
	return &DocumentPostgreSQL{db: db, cacheManager: cacheManager}
}

func (r *DocumentPostgreSQL) Create(ctx context.Context, doc *models.Document) error {
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *DocumentPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document

	cacheKey := fmt.Sprintf("%d", id)
	err := r.cacheManager.Document.CacheOrExecute(ctx, cacheKey, &doc, cache.DocumentCacheConfig.TTL, func() (interface{}, error) {
		var d models.Document
		if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
			return nil, err
		}
		return &d, nil
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentPostgreSQL) GetByIDWithUploader(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	err := r.db.WithContext(ctx).Preload("Uploader").First(&doc, id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentPostgreSQL) UpdateStatus(ctx context.Context, id uint, status models.DocumentStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Document{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update document status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.invalidateCache(ctx, id)
	return nil
}

func (r *DocumentPostgreSQL) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Document{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete document: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.invalidateCache(ctx, id)
	return nil
}

func (r *DocumentPostgreSQL) List(ctx context.Context, filters repositories.DocumentFilters) ([]*models.Document, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Document{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CourseCode != nil {
		query = query.Where("course_code = ?", *filters.CourseCode)
	}
	if filters.Kind != nil {
		query = query.Where("kind = ?", *filters.Kind)
	}
	if filters.UploaderID != nil {
		query = query.Where("uploader_id = ?", *filters.UploaderID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count documents: %w", err)
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var docs []*models.Document
	if err := query.Preload("Uploader").Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, total, nil
}

func (r *DocumentPostgreSQL) invalidateCache(ctx context.Context, id uint) {
	_ = r.cacheManager.Document.Delete(ctx, fmt.Sprintf("%d", id))
}
