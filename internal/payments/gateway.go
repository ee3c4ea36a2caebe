// Package payments wraps the fiat payment processor. The real processor is
// not integrated yet; the mock stands in behind the same interface.
package payments

import (
	"context"
	"errors"

	"github.com/carelinkvn/carelink-backend/internal/models"
)

// Gateway charges and refunds fiat transactions.
type Gateway interface {
	Charge(ctx context.Context, tx *models.Transaction) error
	Refund(ctx context.Context, tx *models.Transaction) error
}

var (
	ErrChargeDeclined = errors.New("payment gateway: charge declined")
	ErrRefundDeclined = errors.New("payment gateway: refund declined")
)

// MockGateway always succeeds unless told to fail. It replaces the
// probabilistic stub of the legacy system so tests stay deterministic.
type MockGateway struct {
	FailCharges bool
	FailRefunds bool
}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (g *MockGateway) Charge(ctx context.Context, tx *models.Transaction) error {
	if g.FailCharges {
		return ErrChargeDeclined
	}
	return nil
}

func (g *MockGateway) Refund(ctx context.Context, tx *models.Transaction) error {
	if g.FailRefunds {
		return ErrRefundDeclined
	}
	return nil
}
