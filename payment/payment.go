// Package payment wraps the hosted checkout provider (Midtrans Snap) and the
// verification of its asynchronous notifications.
package payment

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"innerspark/models"
)

var (
	ErrInvalidSignature = errors.New("invalid notification signature")
	ErrGatewayDisabled  = errors.New("payment gateway is not configured")
)

// CheckoutRequest describes a single-course purchase
type CheckoutRequest struct {
	OrderID       string
	Amount        int64
	ItemID        string
	ItemName      string
	CustomerName  string
	CustomerEmail string
}

// Checkout is what the client needs to open the hosted payment page
type Checkout struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirectUrl"`
}

// TransactionStatus is the provider's view of an order, used by the verify round-trip.
type TransactionStatus struct {
	OrderID           string
	TransactionID     string
	TransactionStatus string
	FraudStatus       string
	StatusCode        string
	GrossAmount       string
}

// Gateway is implemented by payment providers.
type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error)
	CheckStatus(ctx context.Context, orderID string) (*TransactionStatus, error)
}

// Default is the gateway used by the payment handlers; nil disables paid checkout.
var Default Gateway

// Notification is the webhook body Midtrans posts on every transaction change.
type Notification struct {
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"`
	TransactionID     string `json:"transaction_id"`
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
}

// Signature computes SHA512(order_id + status_code + gross_amount + server key) as hex.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// VerifySignature checks a notification against the server key.
func VerifySignature(n Notification, serverKey string) error {
	want := strings.ToLower(strings.TrimSpace(n.SignatureKey))
	if want == "" || serverKey == "" {
		return ErrInvalidSignature
	}
	got := Signature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
	if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		return ErrInvalidSignature
	}
	return nil
}

// MapStatus translates a provider transaction status into a payment status.
// ok is false for statuses that carry no state change.
func MapStatus(transactionStatus, fraudStatus string) (status string, ok bool) {
	switch strings.ToLower(transactionStatus) {
	case "capture":
		switch strings.ToLower(fraudStatus) {
		case "challenge":
			return models.PaymentPending, true
		case "deny":
			return models.PaymentFailed, true
		}
		return models.PaymentPaid, true
	case "settlement":
		return models.PaymentPaid, true
	case "pending":
		return models.PaymentPending, true
	case "deny", "failure":
		return models.PaymentFailed, true
	case "cancel":
		return models.PaymentCanceled, true
	case "expire":
		return models.PaymentExpired, true
	case "refund", "partial_refund":
		return models.PaymentRefunded, true
	}
	return "", false
}

// IsFinal reports whether a payment status can no longer change through notifications.
func IsFinal(status string) bool {
	switch status {
	case models.PaymentPaid, models.PaymentRefunded:
		return true
	}
	return false
}
