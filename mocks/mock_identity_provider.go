package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"reportsvc/internal/domain"
)

// MockIdentityProvider is a mock implementation of port.IdentityProvider.
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) GetUser(ctx context.Context, accessToken string) (*domain.User, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
