package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/hasan-ston/forstudents/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type DocumentFilters struct {
	Status     *models.DocumentStatus `json:"status"`
	CourseCode *string                `json:"course_code"`
	Kind       *models.DocumentKind   `json:"kind"`
	UploaderID *uint                  `json:"uploader_id"`
	Limit      int                    `json:"limit"`
	Offset     int                    `json:"offset"`
}

type AuditFilters struct {
	UserID     *uint      `json:"user_id"`
	DocumentID *uint      `json:"document_id"`
	DateFrom   *time.Time `json:"date_from"`
	DateTo     *time.Time `json:"date_to"`
	Limit      int        `json:"limit"`
	Offset     int        `json:"offset"`
}

type FeedbackFilters struct {
	UserID     *uint `json:"user_id"`
	DocumentID *uint `json:"document_id"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// GetByIDForUpdate locks the user row for the remainder of the
	// enclosing transaction. Only meaningful inside WithTransaction.
	GetByIDForUpdate(ctx context.Context, id uint) (*models.User, error)

	UpdatePlan(ctx context.Context, id uint, plan models.PlanStatus) error
	UpdateRole(ctx context.Context, id uint, role models.UserRole) error
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id uint) (*models.Document, error)
	GetByIDWithUploader(ctx context.Context, id uint) (*models.Document, error)
	UpdateStatus(ctx context.Context, id uint, status models.DocumentStatus) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters DocumentFilters) ([]*models.Document, int64, error)
}

type AccessRepository interface {
	Create(ctx context.Context, access *models.DocumentAccess) error
	Exists(ctx context.Context, userID, documentID uint) (bool, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	ListDocumentIDs(ctx context.Context, userID uint) ([]uint, error)
	DeleteByDocument(ctx context.Context, documentID uint) error
}

type AuditRepository interface {
	Create(ctx context.Context, entry *models.DownloadAudit) error
	List(ctx context.Context, filters AuditFilters) ([]*models.DownloadAudit, int64, error)
	DeleteByDocument(ctx context.Context, documentID uint) error
}

type QuestionSetRepository interface {
	GetByDocumentID(ctx context.Context, documentID uint) (*models.QuestionSet, error)
	Upsert(ctx context.Context, set *models.QuestionSet) error
	DeleteByDocument(ctx context.Context, documentID uint) error
}

type FeedbackRepository interface {
	Create(ctx context.Context, fb *models.Feedback) error
	List(ctx context.Context, filters FeedbackFilters) ([]*models.Feedback, int64, error)
}

// IsNotFoundError reports whether err is the backing store's missing-record
// error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
