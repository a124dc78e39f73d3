package models

import (
	"time"

	"gorm.io/gorm"
)

type Broadcast struct {
	gorm.Model
	Title     string     `json:"title"`
	Body      string     `gorm:"type:text" json:"body"`
	Audience  string     `gorm:"type:varchar(20);default:'ALL'" json:"audience"` // ALL or a role
	CreatedBy uint       `json:"createdBy"`
	StartsAt  time.Time  `json:"startsAt"`
	EndsAt    *time.Time `json:"endsAt,omitempty"`
	IsDeleted bool       `gorm:"default:false" json:"-"`
}
