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

type planFileRepo struct {
	db *sqlx.DB
}

// NewPlanFileRepo creates a new PostgreSQL-backed PlanFileRepository.
func NewPlanFileRepo(db *sqlx.DB) port.PlanFileRepository {
	return &planFileRepo{db: db}
}

func (r *planFileRepo) Create(ctx context.Context, file *domain.PlanFile) error {
	file.CreatedAt = time.Now().UTC()

	query := `INSERT INTO plan_files
		(id, project_id, name, kind, content_type, size_bytes, storage_key, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		file.ID, file.ProjectID, file.Name, file.Kind, file.ContentType,
		file.SizeBytes, file.StorageKey, file.Status, file.CreatedAt)
	if err != nil {
		return fmt.Errorf("planFileRepo.Create: %w", err)
	}
	return nil
}

func (r *planFileRepo) GetByID(ctx context.Context, fileID uuid.UUID) (*domain.PlanFile, error) {
	var file domain.PlanFile
	err := r.db.GetContext(ctx, &file,
		"SELECT * FROM plan_files WHERE id = $1", fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, fmt.Errorf("planFileRepo.GetByID: %w", err)
	}
	return &file, nil
}

func (r *planFileRepo) ListByProject(ctx context.Context, projectID string, offset, limit int) ([]domain.PlanFile, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM plan_files WHERE project_id = $1 AND status != $2",
		projectID, "deleted")
	if err != nil {
		return nil, 0, fmt.Errorf("planFileRepo.ListByProject count: %w", err)
	}

	var files []domain.PlanFile
	err = r.db.SelectContext(ctx, &files,
		`SELECT * FROM plan_files
		 WHERE project_id = $1 AND status != $2
		 ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		projectID, "deleted", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("planFileRepo.ListByProject: %w", err)
	}
	return files, total, nil
}

func (r *planFileRepo) UpdateStatus(ctx context.Context, fileID uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE plan_files SET status = $1 WHERE id = $2", status, fileID)
	if err != nil {
		return fmt.Errorf("planFileRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrPlanNotFound
	}
	return nil
}

func (r *planFileRepo) Delete(ctx context.Context, fileID uuid.UUID) error {
	return r.UpdateStatus(ctx, fileID, "deleted")
}
