package service_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"jcwest/internal/config"
	"jcwest/internal/domain"
	"jcwest/internal/service"
	"jcwest/mocks"
)

const testVendorMapYAML = `rules:
  - if: "water heater"
    to:
      trade: plumbing
      item: water_heater
`

const testVendorRulesYAML = `rules:
  - match: "lynn"
    vendor: Lynn Plumbing
    trade: plumbing
`

const testQuoteText = `Lynn Plumbing Proposal
Install water heater 1 EA $2,400.00
Total $2,400.00
`

func writeQuoteFixtures(t *testing.T) (*config.QuotesConfig, string) {
	t.Helper()
	dir := t.TempDir()

	mapPath := filepath.Join(dir, "vendor_map.yaml")
	require.NoError(t, os.WriteFile(mapPath, []byte(testVendorMapYAML), 0o600))
	rulesPath := filepath.Join(dir, "vendor_rules.yaml")
	require.NoError(t, os.WriteFile(rulesPath, []byte(testVendorRulesYAML), 0o600))

	quotesDir := filepath.Join(dir, "quotes")
	require.NoError(t, os.Mkdir(quotesDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(quotesDir, "lynn_plumbing_bid.txt"), []byte(testQuoteText), 0o600))

	return &config.QuotesConfig{
		VendorMapPath:   mapPath,
		VendorRulesPath: rulesPath,
	}, quotesDir
}

func storedEstimateRun(t *testing.T, runID uuid.UUID) *domain.EstimateRun {
	t.Helper()
	resp := domain.EstimateResponse{
		Version:  domain.QuantitiesVersion,
		PolicyID: "default_v1",
		LineItems: []domain.PricedLineItem{
			{Trade: "plumbing", Code: "water_heater", Unit: "ea", Qty: 1, Total: 2000},
		},
		GrandTotal: 2000,
	}
	raw, err := json.Marshal(&resp)
	require.NoError(t, err)
	return &domain.EstimateRun{ID: runID, ProjectID: "ridgeline_lot_4", Response: raw}
}

func TestCalibrationService_Run(t *testing.T) {
	quotesCfg, quotesDir := writeQuoteFixtures(t)

	calibrationRepo := new(mocks.MockCalibrationRunRepo)
	estimateRepo := new(mocks.MockEstimateRunRepo)
	svc := service.NewCalibrationService(calibrationRepo, estimateRepo, nil, quotesCfg, &config.CalibrationConfig{})

	estRunID := uuid.New()
	estimateRepo.On("GetByID", mock.Anything, estRunID).Return(storedEstimateRun(t, estRunID), nil)
	calibrationRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.CalibrationRun")).Return(nil)

	result, err := svc.Run(context.Background(), service.CalibrationInput{
		ProjectID:     "ridgeline_lot_4",
		EstimateRunID: estRunID,
		QuotesDir:     quotesDir,
	})
	require.NoError(t, err)

	// Quote totals 2400 against an estimate of 2000 on the exact key.
	assert.Equal(t, domain.FactorsType, result.Factors.Type)
	assert.InDelta(t, 1.2, result.Factors.Factors["plumbing::water_heater"], 0.0001)

	require.Len(t, result.Rows, 1)
	row := result.Rows[0]
	assert.Equal(t, "Lynn Plumbing", row.Vendor)
	assert.Equal(t, "plumbing", row.Trade)
	assert.Equal(t, "water_heater", row.Item)
	assert.Equal(t, 2400.0, row.QuotedTotal)

	require.Len(t, result.Compare.Rows, 1)
	assert.InDelta(t, 400.0, result.Compare.Rows[0].Delta, 0.001)

	assert.Equal(t, 1, result.Run.RowCount)
	assert.Equal(t, 1, result.Run.FileCount)
	calibrationRepo.AssertExpectations(t)
}

func TestCalibrationService_Run_NoRows(t *testing.T) {
	quotesCfg, _ := writeQuoteFixtures(t)

	calibrationRepo := new(mocks.MockCalibrationRunRepo)
	estimateRepo := new(mocks.MockEstimateRunRepo)
	svc := service.NewCalibrationService(calibrationRepo, estimateRepo, nil, quotesCfg, &config.CalibrationConfig{})

	estRunID := uuid.New()
	estimateRepo.On("GetByID", mock.Anything, estRunID).Return(storedEstimateRun(t, estRunID), nil)

	emptyDir := t.TempDir()
	_, err := svc.Run(context.Background(), service.CalibrationInput{
		ProjectID:     "ridgeline_lot_4",
		EstimateRunID: estRunID,
		QuotesDir:     emptyDir,
	})
	assert.ErrorIs(t, err, domain.ErrNoVendorRows)
}
