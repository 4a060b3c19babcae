package models

import (
	"time"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type PlanStatus string

const (
	PlanFree PlanStatus = "free"
	PlanPaid PlanStatus = "paid"
)

type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string     `json:"-" gorm:"not null;size:255"`
	Role         UserRole   `json:"role" gorm:"not null;default:user;size:32;index"`
	Plan         PlanStatus `json:"plan" gorm:"not null;default:free;size:32"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Accesses  []DocumentAccess `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Documents []Document       `json:"-" gorm:"foreignKey:UploaderID"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasUnlimitedAccess reports whether the free-tier quota applies to this user.
// Admins and paying users bypass the quota unconditionally.
func (u *User) HasUnlimitedAccess() bool {
	return u.Role == RoleAdmin || u.Plan == PlanPaid
}
