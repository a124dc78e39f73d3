package course

import "gorm.io/gorm"

// Course status values
const (
	CourseDraft     = "DRAFT"
	CoursePublished = "PUBLISHED"
	CourseArchived  = "ARCHIVED"
)

// Course represents a learning course in the marketplace
type Course struct {
	gorm.Model
	Title        string `json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	Category     string `gorm:"size:60;index" json:"category"`
	Price        int64  `gorm:"default:0" json:"price"`
	MentorName   string `json:"mentorName"`
	StaffID      uint   `gorm:"index" json:"staffId"`
	AccessDays   int    `gorm:"default:0" json:"accessDays"` // 0 means lifetime access
	Status       string `gorm:"type:varchar(20);default:'DRAFT'" json:"status"`
	ThumbnailKey string `json:"-"`
	IsDeleted    bool   `gorm:"default:false" json:"-"`
}

// IsFree reports whether the course can be enrolled without payment
func (c *Course) IsFree() bool {
	return c.Price <= 0
}
