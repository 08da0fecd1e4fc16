package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jcwest/internal/service"
)

// CalibrationHandler handles vendor-quote calibration endpoints.
type CalibrationHandler struct {
	calibrationService service.CalibrationService
}

// NewCalibrationHandler creates a new CalibrationHandler.
func NewCalibrationHandler(calibrationService service.CalibrationService) *CalibrationHandler {
	return &CalibrationHandler{calibrationService: calibrationService}
}

type calibrationRequest struct {
	ProjectID     string   `json:"project_id" binding:"required"`
	EstimateRunID string   `json:"estimate_run_id" binding:"required"`
	QuotesDir     string   `json:"quotes_dir"`
	QuoteFileIDs  []string `json:"quote_file_ids"`
}

// Run handles POST /api/v1/calibrations
func (h *CalibrationHandler) Run(c *gin.Context) {
	var req calibrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "project_id and estimate_run_id are required")
		return
	}

	estRunID, err := uuid.Parse(req.EstimateRunID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid estimate run ID")
		return
	}

	input := service.CalibrationInput{
		ProjectID:     req.ProjectID,
		EstimateRunID: estRunID,
		QuotesDir:     req.QuotesDir,
	}
	for _, raw := range req.QuoteFileIDs {
		fileID, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid quote file ID "+raw)
			return
		}
		input.QuoteFileIDs = append(input.QuoteFileIDs, fileID)
	}

	result, err := h.calibrationService.Run(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, gin.H{
		"run_id":  result.Run.ID,
		"factors": result.Factors,
		"rows":    result.Rows,
		"compare": result.Compare,
	})
}

// GetByID handles GET /api/v1/calibrations/:id
func (h *CalibrationHandler) GetByID(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid calibration run ID")
		return
	}

	run, err := h.calibrationService.GetByID(c.Request.Context(), runID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, run)
}

// Latest handles GET /api/v1/calibrations/latest
func (h *CalibrationHandler) Latest(c *gin.Context) {
	projectID := c.Query("project_id")
	if projectID == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_PROJECT", "project_id query parameter is required")
		return
	}

	run, err := h.calibrationService.LatestByProject(c.Request.Context(), projectID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, run)
}
