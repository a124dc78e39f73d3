package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Payment status values
const (
	PaymentPending  = "PENDING"
	PaymentPaid     = "PAID"
	PaymentFailed   = "FAILED"
	PaymentCanceled = "CANCELED"
	PaymentExpired  = "EXPIRED"
	PaymentRefunded = "REFUNDED"
)

// Gateway event processing status
const (
	GatewayEventReceived  = "RECEIVED"
	GatewayEventProcessed = "PROCESSED"
	GatewayEventFailed    = "FAILED"
)

type Payment struct {
	gorm.Model
	OrderID          string     `gorm:"uniqueIndex;size:64;not null" json:"orderId"`
	UserID           uint       `gorm:"index;not null" json:"userId"`
	CourseID         uint       `gorm:"index;not null" json:"courseId"`
	Amount           int64      `gorm:"not null" json:"amount"`
	Status           string     `gorm:"type:varchar(20);default:'PENDING'" json:"status"`
	Provider         string     `gorm:"type:varchar(20);default:'midtrans'" json:"provider"`
	SnapToken        string     `json:"snapToken,omitempty"`
	RedirectURL      string     `json:"redirectUrl,omitempty"`
	GatewayReference string     `json:"gatewayReference,omitempty"`
	PaidAt           *time.Time `json:"paidAt,omitempty"`
	FailedAt         *time.Time `json:"failedAt,omitempty"`
	CanceledAt       *time.Time `json:"canceledAt,omitempty"`
	RefundedAt       *time.Time `json:"refundedAt,omitempty"`
}

// PaymentGatewayEvent is the raw log of every gateway notification received.
type PaymentGatewayEvent struct {
	gorm.Model
	Provider          string         `gorm:"type:varchar(20)" json:"provider"`
	OrderID           string         `gorm:"index;size:64" json:"orderId"`
	PaymentID         *uint          `gorm:"index" json:"paymentId,omitempty"`
	TransactionStatus string         `json:"transactionStatus"`
	Payload           datatypes.JSON `json:"payload"`
	Status            string         `gorm:"type:varchar(20)" json:"status"`
	Error             string         `json:"error,omitempty"`
	ProcessedAt       *time.Time     `json:"processedAt,omitempty"`
}
