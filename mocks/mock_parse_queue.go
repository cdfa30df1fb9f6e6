package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"reportsvc/internal/port"
)

// MockParseQueue is a mock implementation of port.ParseQueue.
type MockParseQueue struct {
	mock.Mock
}

func (m *MockParseQueue) SendParseJob(ctx context.Context, job port.ParseJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}
