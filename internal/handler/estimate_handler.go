package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jcwest/internal/domain"
	"jcwest/internal/quantities"
	"jcwest/internal/service"
)

// EstimateHandler handles pricing run endpoints.
type EstimateHandler struct {
	estimateService service.EstimateService
}

// NewEstimateHandler creates a new EstimateHandler.
func NewEstimateHandler(estimateService service.EstimateService) *EstimateHandler {
	return &EstimateHandler{estimateService: estimateService}
}

type estimateRequest struct {
	ProjectID     string          `json:"project_id" binding:"required"`
	ProjectName   string          `json:"project_name"`
	Region        string          `json:"region"`
	Quantities    json.RawMessage `json:"quantities" binding:"required"`
	CalibrationID string          `json:"calibration_id"`
	NotifyEmail   string          `json:"notify_email"`
	NotifyName    string          `json:"notify_name"`
}

// Run handles POST /api/v1/estimate
func (h *EstimateHandler) Run(c *gin.Context) {
	var req estimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "project_id and quantities are required")
		return
	}

	doc, err := quantities.Parse(req.Quantities)
	if err != nil {
		HandleError(c, err)
		return
	}

	input := service.EstimateInput{
		ProjectID:   req.ProjectID,
		ProjectName: req.ProjectName,
		Quantities:  doc,
		Region:      req.Region,
		NotifyEmail: req.NotifyEmail,
		NotifyName:  req.NotifyName,
	}
	if req.CalibrationID != "" {
		calID, err := uuid.Parse(req.CalibrationID)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid calibration ID")
			return
		}
		input.CalibrationID = &calID
	}

	run, resp, err := h.estimateService.Run(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, gin.H{
		"run_id":   run.ID,
		"estimate": resp,
	})
}

// GetByID handles GET /api/v1/estimates/:id
func (h *EstimateHandler) GetByID(c *gin.Context) {
	run, ok := h.loadRun(c)
	if !ok {
		return
	}
	RespondOK(c, run)
}

// List handles GET /api/v1/estimates
func (h *EstimateHandler) List(c *gin.Context) {
	projectID := c.Query("project_id")
	if projectID == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_PROJECT", "project_id query parameter is required")
		return
	}

	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	runs, total, err := h.estimateService.List(c.Request.Context(), projectID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, runs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// ExportCSV handles GET /api/v1/estimates/:id/csv
func (h *EstimateHandler) ExportCSV(c *gin.Context) {
	run, ok := h.loadRun(c)
	if !ok {
		return
	}

	data, name, err := h.estimateService.ExportCSV(run)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// ExportWorkbook handles GET /api/v1/estimates/:id/xlsx
func (h *EstimateHandler) ExportWorkbook(c *gin.Context) {
	run, ok := h.loadRun(c)
	if !ok {
		return
	}

	data, name, err := h.estimateService.ExportWorkbook(run)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *EstimateHandler) loadRun(c *gin.Context) (run *domain.EstimateRun, ok bool) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid estimate run ID")
		return nil, false
	}
	loaded, err := h.estimateService.GetByID(c.Request.Context(), runID)
	if err != nil {
		HandleError(c, err)
		return nil, false
	}
	return loaded, true
}
