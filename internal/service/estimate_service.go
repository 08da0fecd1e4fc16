package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"jcwest/internal/config"
	"jcwest/internal/csvexport"
	"jcwest/internal/domain"
	"jcwest/internal/port"
	"jcwest/internal/pricing"
	"jcwest/internal/report"
)

// EstimateInput is the DTO for pricing run requests.
type EstimateInput struct {
	ProjectID   string
	ProjectName string
	Quantities  *domain.TradeQuantities
	Region      string

	// CalibrationID applies the factors of a stored calibration run.
	// When nil the project's latest run is used if one exists.
	CalibrationID *uuid.UUID

	// NotifyEmail, when set, triggers an estimate-ready email with a
	// presigned link to the exported workbook.
	NotifyEmail string
	NotifyName  string
}

// EstimateService defines the pricing run contract.
type EstimateService interface {
	Run(ctx context.Context, input EstimateInput) (*domain.EstimateRun, *domain.EstimateResponse, error)
	GetByID(ctx context.Context, runID uuid.UUID) (*domain.EstimateRun, error)
	List(ctx context.Context, projectID string, offset, limit int) ([]domain.EstimateRun, int, error)
	ExportCSV(run *domain.EstimateRun) ([]byte, string, error)
	ExportWorkbook(run *domain.EstimateRun) ([]byte, string, error)
}

type estimateService struct {
	estimateRepo    port.EstimateRunRepository
	calibrationRepo port.CalibrationRunRepository
	storage         port.ObjectStorage
	email           port.EmailSender
	pricingCfg      *config.PricingConfig
	s3Cfg           *config.S3Config
}

// NewEstimateService creates an EstimateService implementation.
func NewEstimateService(
	estimateRepo port.EstimateRunRepository,
	calibrationRepo port.CalibrationRunRepository,
	storage port.ObjectStorage,
	email port.EmailSender,
	pricingCfg *config.PricingConfig,
	s3Cfg *config.S3Config,
) EstimateService {
	return &estimateService{
		estimateRepo:    estimateRepo,
		calibrationRepo: calibrationRepo,
		storage:         storage,
		email:           email,
		pricingCfg:      pricingCfg,
		s3Cfg:           s3Cfg,
	}
}

func (s *estimateService) Run(ctx context.Context, input EstimateInput) (*domain.EstimateRun, *domain.EstimateResponse, error) {
	region := input.Region
	if region == "" {
		region = s.pricingCfg.DefaultRegion
	}

	policy, policyText, err := pricing.LoadPolicy(s.pricingCfg.PolicyPath, region)
	if err != nil {
		return nil, nil, err
	}

	in := pricing.Inputs{
		Quantities: input.Quantities,
		Policy:     policy,
		PolicyText: policyText,
	}

	if s.pricingCfg.UnitCostsPath != "" {
		table, raw, err := pricing.LoadCostTable(s.pricingCfg.UnitCostsPath)
		if err != nil {
			return nil, nil, err
		}
		in.UnitCosts = table
		in.UnitCostsText = raw
	}
	if s.pricingCfg.VendorCostsPath != "" {
		table, raw, err := pricing.LoadCostTable(s.pricingCfg.VendorCostsPath)
		if err != nil {
			return nil, nil, err
		}
		in.VendorCosts = table
		in.VendorCostsText = raw
	}

	factors, err := s.resolveFactors(ctx, input)
	if err != nil {
		return nil, nil, err
	}
	in.Factors = factors

	resp, err := pricing.Price(in)
	if err != nil {
		return nil, nil, err
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, nil, fmt.Errorf("marshaling estimate response: %w", err)
	}

	run := &domain.EstimateRun{
		ID:         uuid.New(),
		ProjectID:  input.ProjectID,
		PolicyID:   resp.PolicyID,
		Region:     resp.Region,
		GrandTotal: resp.GrandTotal,
		Response:   raw,
	}
	if err := s.estimateRepo.Create(ctx, run); err != nil {
		return nil, nil, err
	}

	log.Printf("estimateService.Run: run %s for project %s, grand total %.2f (%d warnings)",
		run.ID, run.ProjectID, resp.GrandTotal, len(resp.Warnings))

	if input.NotifyEmail != "" {
		if err := s.notify(ctx, input, run, resp); err != nil {
			log.Printf("estimateService.Run: notification for run %s failed: %v", run.ID, err)
		}
	}

	return run, resp, nil
}

// resolveFactors picks the calibration factors for a run: the named run
// when given, otherwise the project's latest, otherwise none.
func (s *estimateService) resolveFactors(ctx context.Context, input EstimateInput) (*domain.CalibrationFactors, error) {
	var calRun *domain.CalibrationRun
	var err error

	switch {
	case input.CalibrationID != nil:
		calRun, err = s.calibrationRepo.GetByID(ctx, *input.CalibrationID)
		if err != nil {
			return nil, err
		}
	case s.calibrationRepo != nil:
		calRun, err = s.calibrationRepo.LatestByProject(ctx, input.ProjectID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, nil
			}
			return nil, err
		}
	default:
		return nil, nil
	}

	var factors domain.CalibrationFactors
	if err := json.Unmarshal(calRun.Factors, &factors); err != nil {
		return nil, fmt.Errorf("decoding factors of calibration run %s: %w", calRun.ID, err)
	}
	return &factors, nil
}

func (s *estimateService) notify(ctx context.Context, input EstimateInput, run *domain.EstimateRun, resp *domain.EstimateResponse) error {
	workbook, name, err := s.buildWorkbook(input.ProjectName, resp)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("projects/%s/exports/%s/%s", input.ProjectID, run.ID, name)
	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3Cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(workbook),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Size:        int64(len(workbook)),
	})
	if err != nil {
		return fmt.Errorf("uploading workbook: %w", err)
	}

	url, err := s.storage.GetPresignedURL(ctx, s.s3Cfg.Bucket, key, s.s3Cfg.PresignExpiry)
	if err != nil {
		return fmt.Errorf("presigning workbook: %w", err)
	}

	return s.email.SendEstimateEmail(ctx, input.NotifyEmail, input.NotifyName,
		input.ProjectName, url, resp.GrandTotal)
}

func (s *estimateService) GetByID(ctx context.Context, runID uuid.UUID) (*domain.EstimateRun, error) {
	return s.estimateRepo.GetByID(ctx, runID)
}

func (s *estimateService) List(ctx context.Context, projectID string, offset, limit int) ([]domain.EstimateRun, int, error) {
	return s.estimateRepo.ListByProject(ctx, projectID, offset, limit)
}

// ExportCSV renders a stored run's line items as CSV, BOM included, and
// returns the bytes with a Content-Disposition filename.
func (s *estimateService) ExportCSV(run *domain.EstimateRun) ([]byte, string, error) {
	resp, err := decodeResponse(run)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	buf.Write(csvexport.BOM)
	w := csvexport.NewWriter(&buf)
	if err := w.WriteEstimate(resp); err != nil {
		return nil, "", fmt.Errorf("writing estimate csv: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", fmt.Errorf("flushing estimate csv: %w", err)
	}

	return buf.Bytes(), csvexport.BuildFilename("estimate_" + run.ProjectID), nil
}

// ExportWorkbook renders a stored run as the two-sheet Excel workbook.
func (s *estimateService) ExportWorkbook(run *domain.EstimateRun) ([]byte, string, error) {
	resp, err := decodeResponse(run)
	if err != nil {
		return nil, "", err
	}
	return s.buildWorkbook(run.ProjectID, resp)
}

func (s *estimateService) buildWorkbook(projectName string, resp *domain.EstimateResponse) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, projectName, resp); err != nil {
		return nil, "", fmt.Errorf("writing workbook: %w", err)
	}
	name := csvexport.SanitizeFilename("estimate_"+projectName) + ".xlsx"
	return buf.Bytes(), name, nil
}

func decodeResponse(run *domain.EstimateRun) (*domain.EstimateResponse, error) {
	var resp domain.EstimateResponse
	if err := json.Unmarshal(run.Response, &resp); err != nil {
		return nil, fmt.Errorf("decoding response of run %s: %w", run.ID, err)
	}
	return &resp, nil
}
