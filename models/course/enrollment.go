package course

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment status values
const (
	EnrollmentActive    = "ACTIVE"
	EnrollmentExpired   = "EXPIRED"
	EnrollmentCompleted = "COMPLETED"
)

// Enrollment links a student to a course; its presence and non-expiry grant full access.
type Enrollment struct {
	gorm.Model
	UserID           uint       `gorm:"index;not null" json:"userId"`
	CourseID         uint       `gorm:"index;not null" json:"courseId"`
	PaymentID        *uint      `json:"paymentId,omitempty"`
	Status           string     `gorm:"type:varchar(20);default:'ACTIVE'" json:"status"`
	Progress         float64    `gorm:"default:0" json:"progress"` // 0-100
	CompletedModules int        `gorm:"default:0" json:"completedModules"`
	TotalModules     int        `gorm:"default:0" json:"totalModules"`
	ExpiresAt        *time.Time `json:"expiresAt"`
	ReminderSent     bool       `gorm:"default:false" json:"-"`
	CompletedAt      *time.Time `json:"completedAt"`
	IsDeleted        bool       `gorm:"default:false" json:"-"`
}

// IsExpiredAt reports whether the enrollment's access window has closed at t.
func (e *Enrollment) IsExpiredAt(t time.Time) bool {
	if e.Status == EnrollmentExpired {
		return true
	}
	return e.ExpiresAt != nil && !e.ExpiresAt.After(t)
}
