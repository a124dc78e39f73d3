package models

import (
	"time"

	"gorm.io/gorm"
)

// OTP purposes
const (
	OTPPurposeEmailVerification = "EMAIL_VERIFICATION"
)

type OTP struct {
	gorm.Model
	UserID    uint      `gorm:"not null;index" json:"userId"`
	Email     string    `gorm:"size:100;index" json:"email,omitempty"`
	Code      string    `gorm:"size:6;not null" json:"-"`
	Purpose   string    `gorm:"size:40" json:"purpose"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	IsUsed    bool      `gorm:"default:false" json:"isUsed"`
	IsDeleted bool      `gorm:"default:false" json:"-"`
}
