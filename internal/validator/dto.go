package validator

import (
	"github.com/hasan-ston/forstudents/internal/models"
)

// RegisterRequest represents the request structure for account registration
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest represents the request structure for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// DocumentUploadRequest represents the multipart form fields accompanying
// an uploaded file
type DocumentUploadRequest struct {
	Title      string              `form:"title" validate:"required,document_title"`
	CourseCode string              `form:"course_code" validate:"required,course_code"`
	Year       *int                `form:"year" validate:"omitempty,min=1990,max=2100"`
	Term       *string             `form:"term" validate:"omitempty,max=32"`
	Kind       models.DocumentKind `form:"kind" validate:"required,document_kind"`
	Notes      *string             `form:"notes" validate:"omitempty,max=255"`
}

// ReviewRequest represents an optional moderator note on approve or reject
type ReviewRequest struct {
	Note *string `json:"note" validate:"omitempty,max=500"`
}

// FeedbackRequest represents the request structure for submitting feedback
type FeedbackRequest struct {
	Message    string  `json:"message" validate:"required,min=1,max=1000"`
	DocumentID *uint   `json:"document_id"`
	Contact    *string `json:"contact" validate:"omitempty,max=254"`
}

// CheckoutRequest represents the request structure for starting a checkout
type CheckoutRequest struct {
	Plan models.PlanStatus `json:"plan" validate:"required,plan_status"`
}

// WebhookRequest represents the billing provider callback payload
type WebhookRequest struct {
	UserID uint   `json:"user_id" validate:"required"`
	Event  string `json:"event" validate:"required,oneof=checkout.completed subscription.deleted"`
}
