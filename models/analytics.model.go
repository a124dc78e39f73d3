package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Well-known analytics event types
const (
	EventCourseView       = "course_view"
	EventPreviewStarted   = "preview_started"
	EventPreviewCompleted = "preview_completed"
	EventContentOpened    = "content_opened"
	EventEnrollClicked    = "enroll_clicked"
)

type AnalyticsEvent struct {
	gorm.Model
	CourseID uint           `gorm:"index" json:"courseId"`
	UserID   *uint          `gorm:"index" json:"userId,omitempty"`
	Type     string         `gorm:"size:60;index" json:"type"`
	Metadata datatypes.JSON `json:"metadata"`
}
