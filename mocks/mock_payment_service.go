package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"reportsvc/internal/domain"
)

// MockPaymentService is a mock implementation of service.PaymentService.
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) GetPrice(ctx context.Context, user domain.User, reportID uuid.UUID, promocode *string) (*domain.PriceQuote, error) {
	args := m.Called(ctx, user, reportID, promocode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PriceQuote), args.Error(1)
}

func (m *MockPaymentService) CreatePayment(ctx context.Context, user domain.User, reportID uuid.UUID, promocode *string, requestID string) (string, error) {
	args := m.Called(ctx, user, reportID, promocode, requestID)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentService) ApplyNotification(ctx context.Context, body []byte) error {
	args := m.Called(ctx, body)
	return args.Error(0)
}
