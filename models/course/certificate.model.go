package course

import (
	"time"

	"gorm.io/gorm"
)

// Certificate represents an issued certificate for passing a course exam
type Certificate struct {
	gorm.Model
	UserID            uint      `gorm:"index;not null" json:"userId"`
	CourseID          uint      `gorm:"index;not null" json:"courseId"`
	ExamAttemptID     uint      `json:"examAttemptId"`
	CertificateNumber string    `gorm:"uniqueIndex;size:40" json:"certificateNumber"`
	HolderName        string    `json:"holderName"`
	CourseTitle       string    `json:"courseTitle"`
	Score             float64   `json:"score"`
	IssuedAt          time.Time `json:"issuedAt"`
	IsDeleted         bool      `gorm:"default:false" json:"-"`
}
