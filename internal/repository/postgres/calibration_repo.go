package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"jcwest/internal/domain"
	"jcwest/internal/port"
)

type calibrationRunRepo struct {
	db *sqlx.DB
}

// NewCalibrationRunRepo creates a new PostgreSQL-backed CalibrationRunRepository.
func NewCalibrationRunRepo(db *sqlx.DB) port.CalibrationRunRepository {
	return &calibrationRunRepo{db: db}
}

func (r *calibrationRunRepo) Create(ctx context.Context, run *domain.CalibrationRun) error {
	run.CreatedAt = time.Now().UTC()

	query := `INSERT INTO calibration_runs
		(id, project_id, factors, row_count, file_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.ProjectID, run.Factors, run.RowCount, run.FileCount, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("calibrationRunRepo.Create: %w", err)
	}
	return nil
}

func (r *calibrationRunRepo) GetByID(ctx context.Context, runID uuid.UUID) (*domain.CalibrationRun, error) {
	var run domain.CalibrationRun
	err := r.db.GetContext(ctx, &run,
		"SELECT * FROM calibration_runs WHERE id = $1", runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("calibrationRunRepo.GetByID: %w", err)
	}
	return &run, nil
}

func (r *calibrationRunRepo) LatestByProject(ctx context.Context, projectID string) (*domain.CalibrationRun, error) {
	var run domain.CalibrationRun
	err := r.db.GetContext(ctx, &run,
		`SELECT * FROM calibration_runs
		 WHERE project_id = $1
		 ORDER BY created_at DESC LIMIT 1`, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("calibrationRunRepo.LatestByProject: %w", err)
	}
	return &run, nil
}
