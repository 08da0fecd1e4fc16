package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"jcwest/internal/domain"
)

// MockCalibrationRunRepo is a mock implementation of port.CalibrationRunRepository.
type MockCalibrationRunRepo struct {
	mock.Mock
}

func (m *MockCalibrationRunRepo) Create(ctx context.Context, run *domain.CalibrationRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockCalibrationRunRepo) GetByID(ctx context.Context, runID uuid.UUID) (*domain.CalibrationRun, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CalibrationRun), args.Error(1)
}

func (m *MockCalibrationRunRepo) LatestByProject(ctx context.Context, projectID string) (*domain.CalibrationRun, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CalibrationRun), args.Error(1)
}
