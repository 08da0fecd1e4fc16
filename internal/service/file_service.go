package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"jcwest/internal/config"
	"jcwest/internal/domain"
	"jcwest/internal/port"
)

// FileUploadInput is the DTO for plan and quote file upload requests.
type FileUploadInput struct {
	ProjectID string
	Kind      domain.FileKind
	File      multipart.File
	Header    *multipart.FileHeader
}

// FileService defines the plan file management contract.
type FileService interface {
	Upload(ctx context.Context, input FileUploadInput) (*domain.PlanFile, error)
	GetByID(ctx context.Context, fileID uuid.UUID) (*domain.PlanFile, error)
	List(ctx context.Context, projectID string, offset, limit int) ([]domain.PlanFile, int, error)
	Download(ctx context.Context, fileID uuid.UUID) (*domain.PlanFile, []byte, error)
	GetDownloadURL(ctx context.Context, fileID uuid.UUID) (string, error)
	Delete(ctx context.Context, fileID uuid.UUID) error
}

type fileService struct {
	planRepo port.PlanFileRepository
	storage  port.ObjectStorage
	cfg      *config.S3Config
}

// NewFileService creates a new FileService implementation.
func NewFileService(
	planRepo port.PlanFileRepository,
	storage port.ObjectStorage,
	cfg *config.S3Config,
) FileService {
	return &fileService{
		planRepo: planRepo,
		storage:  storage,
		cfg:      cfg,
	}
}

func (s *fileService) Upload(ctx context.Context, input FileUploadInput) (*domain.PlanFile, error) {
	// Only PDFs flow through the pipeline.
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	if ext != "pdf" {
		return nil, domain.ErrUnsupportedFileType
	}

	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Read first 512 bytes for magic-byte content type detection
	buf := make([]byte, 512)
	n, err := input.File.Read(buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading file header: %w", err)
	}
	detectedType := http.DetectContentType(buf[:n])
	if detectedType != "application/pdf" {
		return nil, domain.ErrUnsupportedFileType
	}

	// Seek back to beginning for upload
	if _, err := input.File.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking file: %w", err)
	}

	fileID := uuid.New()
	storageKey := fmt.Sprintf("projects/%s/%s/%s/%s",
		input.ProjectID, input.Kind, fileID, input.Header.Filename)

	file := &domain.PlanFile{
		ID:          fileID,
		ProjectID:   input.ProjectID,
		Name:        input.Header.Filename,
		Kind:        input.Kind,
		ContentType: "application/pdf",
		SizeBytes:   input.Header.Size,
		StorageKey:  storageKey,
		Status:      "pending",
	}

	log.Printf("fileService.Upload: uploading %s (%s, %d bytes) for project %s",
		input.Header.Filename, input.Kind, input.Header.Size, input.ProjectID)

	if err := s.planRepo.Create(ctx, file); err != nil {
		log.Printf("fileService.Upload: failed to create file metadata: %v", err)
		return nil, fmt.Errorf("creating file metadata: %w", err)
	}

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         storageKey,
		Body:        input.File,
		ContentType: "application/pdf",
		Size:        input.Header.Size,
	})
	if err != nil {
		log.Printf("fileService.Upload: S3 upload failed for file %s: %v", file.ID, err)
		_ = s.planRepo.UpdateStatus(ctx, file.ID, "failed")
		return nil, domain.ErrUploadFailed
	}

	if err := s.planRepo.UpdateStatus(ctx, file.ID, "uploaded"); err != nil {
		return nil, fmt.Errorf("updating file status: %w", err)
	}
	file.Status = "uploaded"

	return file, nil
}

func (s *fileService) GetByID(ctx context.Context, fileID uuid.UUID) (*domain.PlanFile, error) {
	return s.planRepo.GetByID(ctx, fileID)
}

func (s *fileService) List(ctx context.Context, projectID string, offset, limit int) ([]domain.PlanFile, int, error) {
	return s.planRepo.ListByProject(ctx, projectID, offset, limit)
}

func (s *fileService) Download(ctx context.Context, fileID uuid.UUID) (*domain.PlanFile, []byte, error) {
	file, err := s.planRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.storage.Download(ctx, s.cfg.Bucket, file.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("downloading %s: %w", file.StorageKey, err)
	}
	return file, data, nil
}

func (s *fileService) GetDownloadURL(ctx context.Context, fileID uuid.UUID) (string, error) {
	file, err := s.planRepo.GetByID(ctx, fileID)
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, s.cfg.Bucket, file.StorageKey, s.cfg.PresignExpiry)
}

func (s *fileService) Delete(ctx context.Context, fileID uuid.UUID) error {
	log.Printf("fileService.Delete: deleting file %s", fileID)

	file, err := s.planRepo.GetByID(ctx, fileID)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, s.cfg.Bucket, file.StorageKey); err != nil {
		log.Printf("fileService.Delete: failed to delete from S3: %v", err)
		return fmt.Errorf("deleting from storage: %w", err)
	}

	return s.planRepo.Delete(ctx, fileID)
}
