package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"reportsvc/internal/domain"
	"reportsvc/internal/port"
)

// MockPaymentGateway is a mock implementation of port.PaymentGateway.
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreatePayment(ctx context.Context, req port.PaymentRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentGateway) ParseNotification(body []byte) (*domain.PaymentNotification, error) {
	args := m.Called(body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentNotification), args.Error(1)
}
