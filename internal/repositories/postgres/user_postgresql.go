package postgres

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hasan-ston/forstudents/internal/cache"
	"github.com/hasan-ston/forstudents/internal/models"
	"github.com/hasan-ston/forstudents/internal/repositories"
)

// UserPostgreSQL implements UserRepository using GORM.
type UserPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.Manager
}

func NewUserPostgreSQL(db *gorm.DB, cacheManager *cache.Manager) repositories.UserRepository {
	return &UserPostgreSQL{db: db, cacheManager: cacheManager}
}

func (r *UserPostgreSQL) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserPostgreSQL) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User

	cacheKey := fmt.Sprintf("%d", id)
	err := r.cacheManager.User.CacheOrExecute(ctx, cacheKey, &user, cache.UserCacheConfig.TTL, func() (interface{}, error) {
		var u models.User
		if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
			return nil, err
		}
		return &u, nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserPostgreSQL) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	email = strings.ToLower(strings.TrimSpace(email))
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserPostgreSQL) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	email = strings.ToLower(strings.TrimSpace(email))
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}

// GetByIDForUpdate loads the user row with a FOR UPDATE lock. It must only
// be called on a repository bound to a transaction; the lock holds until
// that transaction commits or rolls back.
func (r *UserPostgreSQL) GetByIDForUpdate(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserPostgreSQL) UpdatePlan(ctx context.Context, id uint, plan models.PlanStatus) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("plan", plan)
	if result.Error != nil {
		return fmt.Errorf("failed to update user plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.invalidateCache(ctx, id)
	return nil
}

func (r *UserPostgreSQL) UpdateRole(ctx context.Context, id uint, role models.UserRole) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		return fmt.Errorf("failed to update user role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.invalidateCache(ctx, id)
	return nil
}

func (r *UserPostgreSQL) invalidateCache(ctx context.Context, id uint) {
	// Best effort, a stale entry expires within the cache TTL anyway.
	_ = r.cacheManager.User.Delete(ctx, fmt.Sprintf("%d", id))
}
