package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Exam attempt status values
const (
	AttemptInProgress = "IN_PROGRESS"
	AttemptSubmitted  = "SUBMITTED"
	AttemptExpired    = "EXPIRED"
)

// Exam is a timed multiple-choice test attached to a course
type Exam struct {
	gorm.Model
	CourseID        uint   `gorm:"index;not null" json:"courseId"`
	Title           string `json:"title"`
	DurationMinutes int    `gorm:"default:30" json:"durationMinutes"`
	PassScore       int    `gorm:"default:70" json:"passScore"` // percent
	MaxAttempts     int    `gorm:"default:0" json:"maxAttempts"` // 0 means unlimited
	IsDeleted       bool   `gorm:"default:false" json:"-"`
}

// ExamQuestion is one multiple-choice question; Options is a JSON array of strings.
type ExamQuestion struct {
	gorm.Model
	ExamID       uint           `gorm:"index;not null" json:"examId"`
	Prompt       string         `gorm:"type:text" json:"prompt"`
	Options      datatypes.JSON `json:"options"`
	CorrectIndex int            `json:"-"`
	OrderIndex   int            `gorm:"default:0" json:"orderIndex"`
}

// ExamAttempt is a single timed sitting of an exam
type ExamAttempt struct {
	gorm.Model
	ExamID      uint           `gorm:"index;not null" json:"examId"`
	UserID      uint           `gorm:"index;not null" json:"userId"`
	Status      string         `gorm:"type:varchar(20);default:'IN_PROGRESS'" json:"status"`
	StartedAt   time.Time      `json:"startedAt"`
	Deadline    time.Time      `json:"deadline"`
	SubmittedAt *time.Time     `json:"submittedAt,omitempty"`
	Answers     datatypes.JSON `json:"answers,omitempty"`
	Score       float64        `json:"score"`
	Passed      bool           `json:"passed"`
}
