package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"jcwest/internal/domain"
	"jcwest/internal/handler"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"plan not found", domain.ErrPlanNotFound, http.StatusNotFound, "PLAN_NOT_FOUND"},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"schema violation", domain.ErrSchemaViolation, http.StatusBadRequest, "SCHEMA_VIOLATION"},
		{"unsupported version", domain.ErrUnsupportedVersion, http.StatusBadRequest, "UNSUPPORTED_VERSION"},
		{"policy invalid", domain.ErrPolicyInvalid, http.StatusBadRequest, "POLICY_INVALID"},
		{"cost table header", domain.ErrCostTableHeader, http.StatusBadRequest, "COST_TABLE_HEADER"},
		{"unsupported file type", domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{"file too large", domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{"upload failed", domain.ErrUploadFailed, http.StatusInternalServerError, "UPLOAD_FAILED"},
		{"no vendor rows", domain.ErrNoVendorRows, http.StatusBadRequest, "NO_VENDOR_ROWS"},
		{"unknown error", assert.AnError, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, msg := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestMapDomainError_WrappedError(t *testing.T) {
	wrapped := fmt.Errorf("validating quantities: %w", domain.ErrSchemaViolation)
	status, code, _ := handler.MapDomainError(wrapped)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "SCHEMA_VIOLATION", code)
}
