package payment

import (
	"context"
	"errors"
	"fmt"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

// Midtrans creates Snap transactions and queries their status through the Core API.
type Midtrans struct {
	snap snap.Client
	core coreapi.Client
}

// NewMidtrans returns a Midtrans gateway for the sandbox or production environment.
func NewMidtrans(serverKey string, production bool) *Midtrans {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	m := &Midtrans{}
	m.snap.New(serverKey, env)
	m.core.New(serverKey, env)
	return m
}

func (m *Midtrans) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, errors.New("checkout amount must be positive")
	}
	if req.OrderID == "" {
		return nil, errors.New("order id is required")
	}

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: req.Amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.CustomerName,
			Email: req.CustomerEmail,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:    req.ItemID,
			Name:  truncate(req.ItemName, 50),
			Price: req.Amount,
			Qty:   1,
		}},
	}

	resp, mErr := m.snap.CreateTransaction(snapReq)
	if mErr != nil {
		return nil, fmt.Errorf("create snap transaction: %s", mErr.Message)
	}
	return &Checkout{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

func (m *Midtrans) CheckStatus(ctx context.Context, orderID string) (*TransactionStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, mErr := m.core.CheckTransaction(orderID)
	if mErr != nil {
		return nil, fmt.Errorf("check transaction %s: %s", orderID, mErr.Message)
	}
	return &TransactionStatus{
		OrderID:           resp.OrderID,
		TransactionID:     resp.TransactionID,
		TransactionStatus: resp.TransactionStatus,
		FraudStatus:       resp.FraudStatus,
		StatusCode:        resp.StatusCode,
		GrossAmount:       resp.GrossAmount,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
