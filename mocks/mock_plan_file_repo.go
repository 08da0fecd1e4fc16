package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"jcwest/internal/domain"
)

// MockPlanFileRepo is a mock implementation of port.PlanFileRepository.
type MockPlanFileRepo struct {
	mock.Mock
}

func (m *MockPlanFileRepo) Create(ctx context.Context, file *domain.PlanFile) error {
	args := m.Called(ctx, file)
	return args.Error(0)
}

func (m *MockPlanFileRepo) GetByID(ctx context.Context, fileID uuid.UUID) (*domain.PlanFile, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PlanFile), args.Error(1)
}

func (m *MockPlanFileRepo) ListByProject(ctx context.Context, projectID string, offset, limit int) ([]domain.PlanFile, int, error) {
	args := m.Called(ctx, projectID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.PlanFile), args.Int(1), args.Error(2)
}

func (m *MockPlanFileRepo) UpdateStatus(ctx context.Context, fileID uuid.UUID, status string) error {
	args := m.Called(ctx, fileID, status)
	return args.Error(0)
}

func (m *MockPlanFileRepo) Delete(ctx context.Context, fileID uuid.UUID) error {
	args := m.Called(ctx, fileID)
	return args.Error(0)
}
