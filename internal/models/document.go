package models

import (
	"time"
)

type DocumentStatus string

const (
	StatusPending  DocumentStatus = "pending"
	StatusApproved DocumentStatus = "approved"
	StatusRejected DocumentStatus = "rejected"
)

type DocumentKind string

const (
	KindPaper    DocumentKind = "paper"
	KindSolution DocumentKind = "solution"
)

type Document struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	Title      string         `json:"title" gorm:"not null;size:255;index" validate:"required,min=1,max=255"`
	CourseCode string         `json:"course_code" gorm:"not null;size:64;index" validate:"required,min=1,max=64"`
	Year       *string        `json:"year" gorm:"size:16" validate:"omitempty,max=16"`
	Term       *string        `json:"term" gorm:"size:32" validate:"omitempty,max=32"`
	Kind       DocumentKind   `json:"kind" gorm:"not null;size:32" validate:"required,oneof=paper solution"`
	Notes      *string        `json:"notes" gorm:"size:255" validate:"omitempty,max=255"`
	Status     DocumentStatus `json:"status" gorm:"not null;default:pending;size:32;index"`

	// Content location
	FileName    string `json:"file_name" gorm:"not null;size:255"`
	ContentType string `json:"content_type" gorm:"size:128;default:application/pdf"`

	UploaderID uint      `json:"uploader_id" gorm:"not null;index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	Uploader *User `json:"uploader,omitempty" gorm:"foreignKey:UploaderID"`
}

func (Document) TableName() string {
	return "documents"
}

func (d *Document) IsApproved() bool {
	return d.Status == StatusApproved
}

// CanTransitionTo reports whether a moderation transition is allowed.
// Approved and rejected are terminal; re-applying the current state is
// treated as an idempotent no-op by the service layer, not a transition.
func (d *Document) CanTransitionTo(target DocumentStatus) bool {
	if d.Status == StatusPending {
		return target == StatusApproved || target == StatusRejected
	}
	return false
}
