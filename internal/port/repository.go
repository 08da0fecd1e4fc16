package port

import (
	"context"

	"github.com/google/uuid"

	"jcwest/internal/domain"
)

// PlanFileRepository defines the contract for stored plan and quote
// file metadata persistence.
type PlanFileRepository interface {
	Create(ctx context.Context, file *domain.PlanFile) error
	GetByID(ctx context.Context, fileID uuid.UUID) (*domain.PlanFile, error)
	ListByProject(ctx context.Context, projectID string, offset, limit int) ([]domain.PlanFile, int, error)
	UpdateStatus(ctx context.Context, fileID uuid.UUID, status string) error
	Delete(ctx context.Context, fileID uuid.UUID) error
}

// EstimateRunRepository defines the contract for persisted pricing runs.
type EstimateRunRepository interface {
	Create(ctx context.Context, run *domain.EstimateRun) error
	GetByID(ctx context.Context, runID uuid.UUID) (*domain.EstimateRun, error)
	ListByProject(ctx context.Context, projectID string, offset, limit int) ([]domain.EstimateRun, int, error)
}

// CalibrationRunRepository defines the contract for persisted
// calibration runs and their factors documents.
type CalibrationRunRepository interface {
	Create(ctx context.Context, run *domain.CalibrationRun) error
	GetByID(ctx context.Context, runID uuid.UUID) (*domain.CalibrationRun, error)
	LatestByProject(ctx context.Context, projectID string) (*domain.CalibrationRun, error)
}
