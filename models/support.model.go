package models

import "gorm.io/gorm"

// Ticket status values
const (
	TicketOpen     = "OPEN"
	TicketAnswered = "ANSWERED"
	TicketClosed   = "CLOSED"
)

// Ticket message senders
const (
	SenderUser  = "USER"
	SenderAdmin = "ADMIN"
)

type SupportTicket struct {
	gorm.Model
	UserID      uint            `gorm:"index" json:"userId"`
	CourseID    *uint           `gorm:"index" json:"courseId,omitempty"`
	Title       string          `json:"title"`
	Status      string          `gorm:"type:varchar(20);default:'OPEN'" json:"status"`
	Priority    string          `gorm:"type:varchar(20);default:'MEDIUM'" json:"priority"`
	Category    string          `gorm:"type:varchar(30);default:'GENERAL'" json:"category"`
	IsDeleted   bool            `gorm:"default:false" json:"-"`
	Messages    []TicketMessage `gorm:"foreignKey:TicketID" json:"messages,omitempty"`
}

type TicketMessage struct {
	gorm.Model
	TicketID uint   `gorm:"index;not null" json:"ticketId"`
	SenderID uint   `json:"senderId"`
	Sender   string `gorm:"type:varchar(10)" json:"sender"`
	Text     string `gorm:"type:text" json:"text"`
}
