package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jcwest/internal/service"
	"jcwest/internal/takeoff"
)

// TakeoffHandler handles plan takeoff endpoints.
type TakeoffHandler struct {
	takeoffService service.TakeoffService
}

// NewTakeoffHandler creates a new TakeoffHandler.
func NewTakeoffHandler(takeoffService service.TakeoffService) *TakeoffHandler {
	return &TakeoffHandler{takeoffService: takeoffService}
}

type takeoffRequest struct {
	FileID string `json:"file_id" binding:"required"`
}

// Run handles POST /api/v1/takeoff. A multipart request runs takeoff on
// the uploaded plan directly; a JSON body references a stored file.
func (h *TakeoffHandler) Run(c *gin.Context) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		h.runFromUpload(c)
		return
	}

	var req takeoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "file_id is required")
		return
	}
	fileID, err := uuid.Parse(req.FileID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid file ID")
		return
	}

	result, err := h.takeoffService.RunFromFile(c.Request.Context(), fileID)
	if err != nil {
		HandleError(c, err)
		return
	}
	respondTakeoff(c, result)
}

func (h *TakeoffHandler) runFromUpload(c *gin.Context) {
	projectID := c.PostForm("project_id")
	if projectID == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_PROJECT", "project_id field is required")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file")
		return
	}

	result, err := h.takeoffService.RunFromBytes(c.Request.Context(), projectID, header.Filename, data)
	if err != nil {
		HandleError(c, err)
		return
	}
	respondTakeoff(c, result)
}

func respondTakeoff(c *gin.Context, result *takeoff.Result) {
	RespondOK(c, gin.H{
		"quantities": result.Quantities,
		"scale":      result.Scale,
		"geometry":   result.Geometry,
		"fixtures":   result.Fixtures,
		"features":   result.Features,
	})
}
