package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"jcwest/internal/calibration"
	"jcwest/internal/config"
	"jcwest/internal/domain"
	"jcwest/internal/planpdf"
	"jcwest/internal/port"
	"jcwest/internal/quotes"
)

// CalibrationInput is the DTO for calibration run requests. Quote text
// comes from a directory batch, stored vendor-quote files, or both.
type CalibrationInput struct {
	ProjectID     string
	EstimateRunID uuid.UUID
	QuotesDir     string
	QuoteFileIDs  []uuid.UUID
}

// CalibrationResult bundles the persisted run with the artifacts the
// caller usually wants back immediately.
type CalibrationResult struct {
	Run     *domain.CalibrationRun
	Factors *domain.CalibrationFactors
	Rows    []domain.VendorRow
	Compare *calibration.CompareReport
}

// CalibrationService defines the vendor-quote calibration contract.
type CalibrationService interface {
	Run(ctx context.Context, input CalibrationInput) (*CalibrationResult, error)
	GetByID(ctx context.Context, runID uuid.UUID) (*domain.CalibrationRun, error)
	LatestByProject(ctx context.Context, projectID string) (*domain.CalibrationRun, error)
}

type calibrationService struct {
	calibrationRepo port.CalibrationRunRepository
	estimateRepo    port.EstimateRunRepository
	files           FileService
	quotesCfg       *config.QuotesConfig
	opts            calibration.Options
}

// NewCalibrationService creates a CalibrationService implementation.
func NewCalibrationService(
	calibrationRepo port.CalibrationRunRepository,
	estimateRepo port.EstimateRunRepository,
	files FileService,
	quotesCfg *config.QuotesConfig,
	calibrationCfg *config.CalibrationConfig,
) CalibrationService {
	return &calibrationService{
		calibrationRepo: calibrationRepo,
		estimateRepo:    estimateRepo,
		files:           files,
		quotesCfg:       quotesCfg,
		opts: calibration.Options{
			ClampMin:    calibrationCfg.ClampMin,
			ClampMax:    calibrationCfg.ClampMax,
			MinEstimate: calibrationCfg.MinEstimate,
		},
	}
}

func (s *calibrationService) Run(ctx context.Context, input CalibrationInput) (*CalibrationResult, error) {
	estRun, err := s.estimateRepo.GetByID(ctx, input.EstimateRunID)
	if err != nil {
		return nil, err
	}
	var est domain.EstimateResponse
	if err := json.Unmarshal(estRun.Response, &est); err != nil {
		return nil, fmt.Errorf("decoding response of run %s: %w", estRun.ID, err)
	}

	vendorMap, err := quotes.LoadVendorMap(s.quotesCfg.VendorMapPath)
	if err != nil {
		return nil, err
	}
	rules, err := quotes.LoadVendorRules(s.quotesCfg.VendorRulesPath)
	if err != nil {
		return nil, err
	}
	parser := quotes.NewParser(vendorMap, rules)

	rows, fileCount, err := s.parseBatch(ctx, parser, rules, input)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrNoVendorRows
	}

	factors := calibration.ComputeFactors(&est, rows, s.opts)
	compare := calibration.BuildCompare(&est, rows, factors)

	rawFactors, err := json.Marshal(factors)
	if err != nil {
		return nil, fmt.Errorf("marshaling factors: %w", err)
	}

	run := &domain.CalibrationRun{
		ID:        uuid.New(),
		ProjectID: input.ProjectID,
		Factors:   rawFactors,
		RowCount:  len(rows),
		FileCount: fileCount,
	}
	if err := s.calibrationRepo.Create(ctx, run); err != nil {
		return nil, err
	}

	log.Printf("calibrationService.Run: run %s for project %s, %d rows from %d files, %d factors, %d outliers",
		run.ID, run.ProjectID, len(rows), fileCount, len(factors.Factors), len(parser.Outliers))

	return &CalibrationResult{
		Run:     run,
		Factors: factors,
		Rows:    rows,
		Compare: compare,
	}, nil
}

// parseBatch gathers quote text from the directory batch and any stored
// quote files, newest quote per vendor first when prefer_latest is set.
func (s *calibrationService) parseBatch(ctx context.Context, parser *quotes.Parser, rules *quotes.VendorRules, input CalibrationInput) ([]domain.VendorRow, int, error) {
	var rows []domain.VendorRow
	fileCount := 0

	dir := input.QuotesDir
	if dir == "" {
		dir = s.quotesCfg.QuotesDir
	}
	if dir != "" {
		batch, n, err := s.parseDir(parser, rules, dir)
		if err != nil {
			return nil, 0, err
		}
		rows = append(rows, batch...)
		fileCount += n
	}

	for _, fileID := range input.QuoteFileIDs {
		file, data, err := s.files.Download(ctx, fileID)
		if err != nil {
			return nil, 0, err
		}
		if file.Kind != domain.FileKindVendorQuote {
			return nil, 0, fmt.Errorf("file %s is a %s, not a vendor quote: %w",
				fileID, file.Kind, domain.ErrUnsupportedFileType)
		}
		text, err := quoteText(file.Name, data)
		if err != nil {
			log.Printf("calibrationService: skipping unreadable quote %s: %v", file.Name, err)
			continue
		}
		vendor, trade := rules.Classify(file.Name)
		rows = append(rows, parser.ParseText(text, vendor, trade)...)
		fileCount++
	}

	return rows, fileCount, nil
}

func (s *calibrationService) parseDir(parser *quotes.Parser, rules *quotes.VendorRules, dir string) ([]domain.VendorRow, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("reading quotes dir %s: %w", dir, err)
	}

	var files []quotes.QuoteFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".txt" && ext != ".pdf" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, quotes.QuoteFile{
			Path:    filepath.Join(dir, e.Name()),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	if parser.Map.Parsing.PreferLatestFile != nil && *parser.Map.Parsing.PreferLatestFile {
		files = quotes.ChooseLatest(files, rules)
	}

	var rows []domain.VendorRow
	for _, f := range files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return nil, 0, fmt.Errorf("reading quote %s: %w", f.Path, err)
		}
		text, err := quoteText(f.Path, data)
		if err != nil {
			log.Printf("calibrationService: skipping unreadable quote %s: %v", f.Path, err)
			continue
		}
		vendor, trade := rules.Classify(f.Path)
		rows = append(rows, parser.ParseText(text, vendor, trade)...)
	}
	return rows, len(files), nil
}

// quoteText extracts the line-oriented text of one quote document. PDFs
// go through the plan reader; anything else is treated as plain text.
func quoteText(name string, data []byte) (string, error) {
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		doc, err := planpdf.ReadBytes(data, name, 0)
		if err != nil {
			return "", err
		}
		return doc.CombinedText(), nil
	}
	return string(data), nil
}

func (s *calibrationService) GetByID(ctx context.Context, runID uuid.UUID) (*domain.CalibrationRun, error) {
	return s.calibrationRepo.GetByID(ctx, runID)
}

func (s *calibrationService) LatestByProject(ctx context.Context, projectID string) (*domain.CalibrationRun, error) {
	return s.calibrationRepo.LatestByProject(ctx, projectID)
}
