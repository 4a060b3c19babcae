package models

import (
	"time"
)

// DocumentAccess records that a user has spent (or been granted) access to a
// document. The set of rows per user is the accessed-document set: it only
// ever grows, and its size is what the free-tier gate counts.
type DocumentAccess struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;index;uniqueIndex:uniq_user_doc"`
	DocumentID uint      `json:"document_id" gorm:"not null;index;uniqueIndex:uniq_user_doc"`
	CreatedAt  time.Time `json:"created_at"`

	Document *Document `json:"document,omitempty" gorm:"foreignKey:DocumentID"`
}

func (DocumentAccess) TableName() string {
	return "document_accesses"
}

// DownloadAudit is an append-only record of every granted access event.
// Rows are never updated or deleted by normal flows.
type DownloadAudit struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     *uint     `json:"user_id" gorm:"index"`
	DocumentID uint      `json:"document_id" gorm:"not null;index"`
	IPAddress  string    `json:"ip_address" gorm:"size:64"`
	UserAgent  string    `json:"user_agent" gorm:"size:512"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

func (DownloadAudit) TableName() string {
	return "download_audits"
}
