package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"jcwest/internal/assemblies"
	"jcwest/internal/config"
	"jcwest/internal/domain"
	"jcwest/internal/takeoff"
)

// TakeoffService defines the plan takeoff contract: a plan PDF in, a
// v0 quantities document out.
type TakeoffService interface {
	RunFromFile(ctx context.Context, fileID uuid.UUID) (*takeoff.Result, error)
	RunFromBytes(ctx context.Context, projectID, name string, data []byte) (*takeoff.Result, error)
}

type takeoffService struct {
	files   FileService
	cfg     *config.TakeoffConfig
	rules   *takeoff.FixtureRules
	catalog *assemblies.Catalog
}

// NewTakeoffService creates a TakeoffService. Fixture rules and the
// assembly catalog are loaded once from the configured paths; a missing
// path disables that expansion rather than failing the service.
func NewTakeoffService(files FileService, cfg *config.TakeoffConfig) TakeoffService {
	s := &takeoffService{files: files, cfg: cfg}

	if cfg.FixtureRulesPath != "" {
		rules, err := takeoff.LoadFixtureRules(cfg.FixtureRulesPath)
		if err != nil {
			log.Printf("takeoffService: fixture rules %s unavailable: %v", cfg.FixtureRulesPath, err)
		} else {
			s.rules = rules
		}
	}
	if cfg.AssembliesPath != "" {
		catalog, err := assemblies.LoadCatalog(cfg.AssembliesPath)
		if err != nil {
			log.Printf("takeoffService: assembly catalog %s unavailable: %v", cfg.AssembliesPath, err)
		} else {
			s.catalog = catalog
		}
	}
	return s
}

func (s *takeoffService) RunFromFile(ctx context.Context, fileID uuid.UUID) (*takeoff.Result, error) {
	file, data, err := s.files.Download(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.Kind != domain.FileKindPlan {
		return nil, fmt.Errorf("file %s is a %s, not a plan: %w", fileID, file.Kind, domain.ErrUnsupportedFileType)
	}
	return s.run(file.ProjectID, file.Name, data)
}

func (s *takeoffService) RunFromBytes(_ context.Context, projectID, name string, data []byte) (*takeoff.Result, error) {
	return s.run(projectID, name, data)
}

func (s *takeoffService) run(projectID, name string, data []byte) (*takeoff.Result, error) {
	result, err := takeoff.RunBytes(data, name, takeoff.Options{
		ProjectID:    projectID,
		MaxPages:     s.cfg.MaxPages,
		FixtureRules: s.rules,
	})
	if err != nil {
		return nil, fmt.Errorf("takeoff for %s: %w", name, err)
	}

	if s.catalog != nil {
		s.catalog.Apply(result.Quantities, s.cfg.ProjectType)
	}

	log.Printf("takeoffService: %s -> %d trades, scale %s (%s)",
		name, len(result.Quantities.Trades), result.Scale.Label, result.Scale.Signal)
	return result, nil
}
