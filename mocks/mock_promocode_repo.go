package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"reportsvc/internal/domain"
)

// MockPromocodeRepo is a mock implementation of port.PromocodeRepository.
type MockPromocodeRepo struct {
	mock.Mock
}

func (m *MockPromocodeRepo) GetByCode(ctx context.Context, code string) (*domain.Promocode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Promocode), args.Error(1)
}

func (m *MockPromocodeRepo) AdjustUsages(ctx context.Context, code string, delta int) error {
	args := m.Called(ctx, code, delta)
	return args.Error(0)
}
