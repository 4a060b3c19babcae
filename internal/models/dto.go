package models

import (
	"time"
)

// ===== USER DTOs =====

// UserProfile is the caller-facing view of a user, including the quota
// bookkeeping the frontend renders.
type UserProfile struct {
	ID                uint       `json:"id"`
	Email             string     `json:"email"`
	Role              UserRole   `json:"role"`
	Plan              PlanStatus `json:"plan"`
	FreeDocsRemaining int        `json:"free_docs_remaining"`
	AccessedDocIDs    []uint     `json:"accessed_doc_ids"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ===== DOCUMENT DTOs =====

type UploaderInfo struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

type DocumentResponse struct {
	ID         uint            `json:"id"`
	Title      string          `json:"title"`
	CourseCode string          `json:"course_code"`
	Year       *string         `json:"year"`
	Term       *string         `json:"term"`
	Kind       DocumentKind    `json:"kind"`
	Notes      *string         `json:"notes"`
	Status     *DocumentStatus `json:"status,omitempty"` // only populated for admin callers
	Uploader   *UploaderInfo   `json:"uploader,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

type DocumentListResponse struct {
	Documents []*DocumentResponse `json:"documents"`
	Total     int64               `json:"total"`
}

// DownloadResult is what the gate hands back on a granted access: either the
// stored file (served from the blob store) or a redirect location when the
// content is hosted externally.
type DownloadResult struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"-"`
	RedirectURL string `json:"download_url,omitempty"`
}

// ===== AUDIT DTOs =====

// AuditEntryResponse resolves user email and document title when the rows
// still exist, falling back to raw identifiers.
type AuditEntryResponse struct {
	ID            uint      `json:"id"`
	UserID        *uint     `json:"user_id"`
	UserEmail     string    `json:"user_email,omitempty"`
	DocumentID    uint      `json:"document_id"`
	DocumentTitle string    `json:"document_title,omitempty"`
	IPAddress     string    `json:"ip_address"`
	UserAgent     string    `json:"user_agent"`
	CreatedAt     time.Time `json:"created_at"`
}

// ===== QUESTION DTOs =====

type QuestionSetResponse struct {
	DocumentID  uint           `json:"document_id"`
	Pairs       []QuestionPair `json:"pairs"`
	GeneratedAt *time.Time     `json:"generated_at,omitempty"`
}

// ===== FEEDBACK DTOs =====

type FeedbackResponse struct {
	ID         uint      `json:"id"`
	Message    string    `json:"message"`
	Contact    *string   `json:"contact"`
	DocumentID *uint     `json:"document_id"`
	UserEmail  string    `json:"user_email,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
