package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrSchemaViolation     = errors.New("document does not conform to schema")
	ErrUnsupportedVersion  = errors.New("unsupported document version")
	ErrPolicyInvalid       = errors.New("pricing policy is invalid")
	ErrCostTableHeader     = errors.New("cost table is missing required header")
	ErrPlanNotFound        = errors.New("plan file not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrNoVendorRows        = errors.New("no vendor rows parsed from quote batch")
)
