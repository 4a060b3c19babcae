package services

import (
	"context"
	"io"
	"time"

	"github.com/hasan-ston/forstudents/internal/models"
	"github.com/hasan-ston/forstudents/internal/validator"
)

// Actor identifies the authenticated caller of a service operation.
type Actor struct {
	ID   uint
	Role models.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// AccessMeta carries request metadata recorded in the download audit log.
type AccessMeta struct {
	IPAddress string
	UserAgent string
}

// AuthResult is returned on successful registration or login.
type AuthResult struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expires_at"`
	User      *models.UserProfile `json:"user"`
}

// TokenClaims is the verified content of an access token.
type TokenClaims struct {
	UserID uint
	Email  string
	Role   models.UserRole
}

// DocumentListOptions filters the document catalog.
type DocumentListOptions struct {
	Status     *models.DocumentStatus
	CourseCode *string
	Kind       *models.DocumentKind
	Mine       bool
	Page       int
	PageSize   int
}

// AuditListOptions filters the download audit log.
type AuditListOptions struct {
	UserID     *uint
	DocumentID *uint
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
}

// UploadInput carries the file part of a document upload.
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// CheckoutResult is returned when a checkout session completes.
type CheckoutResult struct {
	SessionID string            `json:"session_id"`
	Plan      models.PlanStatus `json:"plan"`
	Simulated bool              `json:"simulated"`
}

// AuthService manages accounts, credentials and access tokens.
type AuthService interface {
	Register(ctx context.Context, req *validator.RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req *validator.LoginRequest) (*AuthResult, error)
	VerifyToken(tokenString string) (*TokenClaims, error)
	GetProfile(ctx context.Context, userID uint) (*models.UserProfile, error)
	Promote(ctx context.Context, targetID uint) error
}

// EntitlementService decides whether a user may open a document and
// records every granted access.
type EntitlementService interface {
	Authorize(ctx context.Context, userID, documentID uint, meta AccessMeta) error
}

// DocumentService manages the document catalog and file delivery.
type DocumentService interface {
	Upload(ctx context.Context, actor Actor, req *validator.DocumentUploadRequest, file UploadInput) (*models.DocumentResponse, error)
	Get(ctx context.Context, actor *Actor, id uint) (*models.DocumentResponse, error)
	List(ctx context.Context, actor *Actor, opts DocumentListOptions) (*models.DocumentListResponse, error)
	Download(ctx context.Context, actor Actor, id uint, meta AccessMeta) (*models.DownloadResult, error)
	Approve(ctx context.Context, actor Actor, id uint, note *string) (*models.DocumentResponse, error)
	Reject(ctx context.Context, actor Actor, id uint, note *string) (*models.DocumentResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

// QuestionService generates and serves practice questions per document.
type QuestionService interface {
	Generate(ctx context.Context, actor Actor, documentID uint) (*models.QuestionSetResponse, error)
	Get(ctx context.Context, actor Actor, documentID uint) (*models.QuestionSetResponse, error)
}

// BillingService handles checkout and provider webhooks.
type BillingService interface {
	Checkout(ctx context.Context, actor Actor, req *validator.CheckoutRequest) (*CheckoutResult, error)
	HandleWebhook(ctx context.Context, signature string, req *validator.WebhookRequest) error
}

// FeedbackService records user feedback.
type FeedbackService interface {
	Submit(ctx context.Context, actor *Actor, req *validator.FeedbackRequest) (*models.FeedbackResponse, error)
	List(ctx context.Context, opts FeedbackListOptions) ([]*models.FeedbackResponse, int64, error)
}

// FeedbackListOptions filters feedback listings.
type FeedbackListOptions struct {
	UserID     *uint
	DocumentID *uint
	Page       int
	PageSize   int
}

// AuditService serves the download audit log to administrators.
type AuditService interface {
	List(ctx context.Context, opts AuditListOptions) ([]*models.AuditEntryResponse, int64, error)
	ExportXLSX(ctx context.Context, opts AuditListOptions) ([]byte, error)
}

// ServiceManager provides access to all services with lifecycle management.
type ServiceManager interface {
	Auth() AuthService
	Entitlement() EntitlementService
	Document() DocumentService
	Question() QuestionService
	Billing() BillingService
	Feedback() FeedbackService
	Audit() AuditService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
