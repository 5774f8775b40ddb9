package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vytor/matchflash/internal/models"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueResult(result models.GameResult) error {
	args := m.Called(result)
	return args.Error(0)
}
