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

type estimateRunRepo struct {
	db *sqlx.DB
}

// NewEstimateRunRepo creates a new PostgreSQL-backed EstimateRunRepository.
func NewEstimateRunRepo(db *sqlx.DB) port.EstimateRunRepository {
	return &estimateRunRepo{db: db}
}

func (r *estimateRunRepo) Create(ctx context.Context, run *domain.EstimateRun) error {
	run.CreatedAt = time.Now().UTC()

	query := `INSERT INTO estimate_runs
		(id, project_id, policy_id, region, grand_total, response, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.ProjectID, run.PolicyID, run.Region,
		run.GrandTotal, run.Response, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("estimateRunRepo.Create: %w", err)
	}
	return nil
}

func (r *estimateRunRepo) GetByID(ctx context.Context, runID uuid.UUID) (*domain.EstimateRun, error) {
	var run domain.EstimateRun
	err := r.db.GetContext(ctx, &run,
		"SELECT * FROM estimate_runs WHERE id = $1", runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("estimateRunRepo.GetByID: %w", err)
	}
	return &run, nil
}

func (r *estimateRunRepo) ListByProject(ctx context.Context, projectID string, offset, limit int) ([]domain.EstimateRun, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM estimate_runs WHERE project_id = $1", projectID)
	if err != nil {
		return nil, 0, fmt.Errorf("estimateRunRepo.ListByProject count: %w", err)
	}

	var runs []domain.EstimateRun
	err = r.db.SelectContext(ctx, &runs,
		`SELECT * FROM estimate_runs
		 WHERE project_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		projectID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("estimateRunRepo.ListByProject: %w", err)
	}
	return runs, total, nil
}
