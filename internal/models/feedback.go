package models

import (
	"time"
)

type Feedback struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     *uint     `json:"user_id" gorm:"index"`
	DocumentID *uint     `json:"document_id" gorm:"index"`
	Message    string    `json:"message" gorm:"not null;size:1000" validate:"required,min=1,max=1000"`
	Contact    *string   `json:"contact" gorm:"size:255" validate:"omitempty,max=255"`
	CreatedAt  time.Time `json:"created_at"`

	User     *User     `json:"-" gorm:"foreignKey:UserID"`
	Document *Document `json:"-" gorm:"foreignKey:DocumentID"`
}

func (Feedback) TableName() string {
	return "feedback"
}
