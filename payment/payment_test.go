package payment

import (
	"testing"

	"innerspark/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	const key = "SB-Mid-server-test"
	n := Notification{
		OrderID:     "order-1",
		StatusCode:  "200",
		GrossAmount: "150000.00",
	}
	n.SignatureKey = Signature(n.OrderID, n.StatusCode, n.GrossAmount, key)

	require.NoError(t, VerifySignature(n, key))

	tampered := n
	tampered.GrossAmount = "1.00"
	assert.ErrorIs(t, VerifySignature(tampered, key), ErrInvalidSignature)

	assert.ErrorIs(t, VerifySignature(n, "other-key"), ErrInvalidSignature)

	missing := n
	missing.SignatureKey = ""
	assert.ErrorIs(t, VerifySignature(missing, key), ErrInvalidSignature)
}

func TestVerifySignatureIgnoresCase(t *testing.T) {
	n := Notification{OrderID: "o", StatusCode: "201", GrossAmount: "10.00"}
	n.SignatureKey = "  " + upper(Signature(n.OrderID, n.StatusCode, n.GrossAmount, "k")) + " "
	assert.NoError(t, VerifySignature(n, "k"))
}

func TestVerifySignatureRejectsPartialMatch(t *testing.T) {
	n := Notification{OrderID: "o-7", StatusCode: "200", GrossAmount: "99000.00"}
	full := Signature(n.OrderID, n.StatusCode, n.GrossAmount, "k")

	n.SignatureKey = full[:64]
	assert.ErrorIs(t, VerifySignature(n, "k"), ErrInvalidSignature)

	n.SignatureKey = full + "00"
	assert.ErrorIs(t, VerifySignature(n, "k"), ErrInvalidSignature)

	n.SignatureKey = full
	assert.NoError(t, VerifySignature(n, "k"))
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 32
		}
	}
	return string(b)
}

func TestMapStatus(t *testing.T) {
	cases := map[[2]string]string{
		{"capture", "accept"}:    models.PaymentPaid,
		{"capture", "challenge"}: models.PaymentPending,
		{"capture", "deny"}:      models.PaymentFailed,
		{"settlement", ""}:       models.PaymentPaid,
		{"pending", ""}:          models.PaymentPending,
		{"deny", ""}:             models.PaymentFailed,
		{"failure", ""}:          models.PaymentFailed,
		{"cancel", ""}:           models.PaymentCanceled,
		{"expire", ""}:           models.PaymentExpired,
		{"refund", ""}:           models.PaymentRefunded,
		{"partial_refund", ""}:   models.PaymentRefunded,
	}
	for in, want := range cases {
		got, ok := MapStatus(in[0], in[1])
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := MapStatus("authorize", "")
	assert.False(t, ok)
}

func TestIsFinal(t *testing.T) {
	assert.True(t, IsFinal(models.PaymentPaid))
	assert.True(t, IsFinal(models.PaymentRefunded))
	assert.False(t, IsFinal(models.PaymentPending))
	assert.False(t, IsFinal(models.PaymentExpired))
}
