package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hasan-ston/forstudents/internal/cache"
	"github.com/hasan-ston/forstudents/internal/models"
	"github.com/hasan-ston/forstudents/internal/repositories"
)

// QuestionSetPostgreSQL implements QuestionSetRepository using GORM.
type QuestionSetPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.Manager
}

func NewQuestionSetPostgreSQL(db *gorm.DB, cacheManager *cache.Manager) repositories.QuestionSetRepository {
	return &QuestionSetPostgreSQL{db: db, cacheManager: cacheManager}
}

func (r *QuestionSetPostgreSQL) GetByDocumentID(ctx context.Context, documentID uint) (*models.QuestionSet, error) {
	var set models.QuestionSet

	cacheKey := fmt.Sprintf("%d", documentID)
	err := r.cacheManager.Question.CacheOrExecute(ctx, cacheKey, &set, cache.QuestionCacheConfig.TTL, func() (interface{}, error) {
		var s models.QuestionSet
		if err := r.db.WithContext(ctx).Where("document_id = ?", documentID).First(&s).Error; err != nil {
			return nil, err
		}
		return &s, nil
	})
	if err != nil {
		return nil, err
	}
	return &set, nil
}

// Upsert inserts the question set or overwrites the existing row for the
// same document, keeping exactly one set per document.
func (r *QuestionSetPostgreSQL) Upsert(ctx context.Context, set *models.QuestionSet) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "document_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"pairs", "generated_at"}),
	}).Create(set).Error
	if err != nil {
		return fmt.Errorf("failed to upsert question set: %w", err)
	}
	r.invalidateCache(ctx, set.DocumentID)
	return nil
}

func (r *QuestionSetPostgreSQL) DeleteByDocument(ctx context.Context, documentID uint) error {
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Delete(&models.QuestionSet{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete question set: %w", err)
	}
	r.invalidateCache(ctx, documentID)
	return nil
}

func (r *QuestionSetPostgreSQL) invalidateCache(ctx context.Context, documentID uint) {
	_ = r.cacheManager.Question.Delete(ctx, fmt.Sprintf("%d", documentID))
}
