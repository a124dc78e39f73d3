package models

import (
	"time"

	"gorm.io/gorm"
)

// Role enum values
const (
	RoleStudent   = "STUDENT"
	RoleStaff     = "STAFF"
	RoleAdmin     = "ADMIN"
	RoleDeveloper = "DEVELOPER"
)

type User struct {
	gorm.Model
	ProfileImage        string     `gorm:"default:''" json:"profileImage"`
	Name                string     `gorm:"default:''" json:"name"`
	Email               string     `gorm:"uniqueIndex;not null" json:"email"`
	Mobile              string     `gorm:"default:''" json:"mobile"`
	Role                string     `gorm:"type:varchar(20);default:'STUDENT'" json:"role"`
	Password            string     `gorm:"not null" json:"-"`
	IsActive            bool       `gorm:"default:true" json:"isActive"`
	IsEmailVerified     bool       `gorm:"default:false" json:"isEmailVerified"`
	LastLogin           *time.Time `json:"lastLogin"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LastFailedLogin     *time.Time `json:"-"`
	BlockedUntil        *time.Time `json:"blockedUntil,omitempty"`
	IsDeleted           bool       `gorm:"default:false" json:"-"`
}

// IsBlocked reports whether a login lockout is in effect at t.
func (u *User) IsBlocked(t time.Time) bool {
	return u.BlockedUntil != nil && u.BlockedUntil.After(t)
}
