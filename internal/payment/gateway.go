// Package payment provides the payment gateway adapter. The engine treats
// payments as an opaque external call returning a payment id and status.
package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"nivesh/internal/services"
)

// Gateway is a stand-in payment provider adapter. A production deployment
// replaces it with a real PSP client behind the same interface; the
// transaction lifecycle only depends on the id/status contract.
type Gateway struct{}

// NewGateway creates a payment gateway adapter.
func NewGateway() *Gateway {
	return &Gateway{}
}

// Initiate starts a payment. It honors the caller's context so the
// transaction controller can bound the call with a timeout; on timeout the
// transaction stays PENDING for reconciliation.
func (g *Gateway) Initiate(ctx context.Context, amount float64, method, account string) (*services.PaymentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("payment amount must be positive, got %.2f", amount)
	}

	return &services.PaymentResult{
		PaymentID: "PAY-" + uuid.New().String(),
		Status:    "INITIATED",
	}, nil
}
