package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"jcwest/internal/domain"
)

// MockEstimateRunRepo is a mock implementation of port.EstimateRunRepository.
type MockEstimateRunRepo struct {
	mock.Mock
}

func (m *MockEstimateRunRepo) Create(ctx context.Context, run *domain.EstimateRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockEstimateRunRepo) GetByID(ctx context.Context, runID uuid.UUID) (*domain.EstimateRun, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EstimateRun), args.Error(1)
}

func (m *MockEstimateRunRepo) ListByProject(ctx context.Context, projectID string, offset, limit int) ([]domain.EstimateRun, int, error) {
	args := m.Called(ctx, projectID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.EstimateRun), args.Int(1), args.Error(2)
}
