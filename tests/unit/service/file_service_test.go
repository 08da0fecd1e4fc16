package service_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"jcwest/internal/config"
	"jcwest/internal/domain"
	"jcwest/internal/port"
	"jcwest/internal/service"
	"jcwest/mocks"
)

func testS3Config() config.S3Config {
	return config.S3Config{
		Region:        "us-east-1",
		Bucket:        "test-bucket",
		MaxFileSizeMB: 50,
		PresignExpiry: 3600,
	}
}

// createMultipartFile creates a fake multipart file header and content for testing.
func createMultipartFile(t *testing.T, filename string, content []byte, contentType string) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)

	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content) + 1024))
	require.NoError(t, err)
	file, err := form.File["file"][0].Open()
	require.NoError(t, err)
	return file, form.File["file"][0]
}

// pdfContent returns minimal valid PDF bytes.
func pdfContent() []byte {
	return []byte("%PDF-1.4 test content that is at least a few bytes long for detection purposes")
}

func TestFileService_Upload_PDF(t *testing.T) {
	planRepo := new(mocks.MockPlanFileRepo)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewFileService(planRepo, storage, &cfg)

	file, header := createMultipartFile(t, "lot4_plans.pdf", pdfContent(), "application/pdf")
	defer file.Close()

	planRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.PlanFile")).Return(nil)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{Location: "https://test-bucket.s3.amazonaws.com/test", ETag: "abc"}, nil)
	planRepo.On("UpdateStatus", mock.Anything, mock.AnythingOfType("uuid.UUID"), "uploaded").Return(nil)

	result, err := svc.Upload(context.Background(), service.FileUploadInput{
		ProjectID: "ridgeline_lot_4",
		Kind:      domain.FileKindPlan,
		File:      file,
		Header:    header,
	})

	require.NoError(t, err)
	assert.Equal(t, "lot4_plans.pdf", result.Name)
	assert.Equal(t, domain.FileKindPlan, result.Kind)
	assert.Equal(t, "uploaded", result.Status)
	assert.Contains(t, result.StorageKey, "projects/ridgeline_lot_4/plan/")
	planRepo.AssertExpectations(t)
	storage.AssertExpectations(t)
}

func TestFileService_Upload_RejectsNonPDFExtension(t *testing.T) {
	planRepo := new(mocks.MockPlanFileRepo)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewFileService(planRepo, storage, &cfg)

	file, header := createMultipartFile(t, "plans.docx", pdfContent(), "application/pdf")
	defer file.Close()

	_, err := svc.Upload(context.Background(), service.FileUploadInput{
		ProjectID: "p1",
		Kind:      domain.FileKindPlan,
		File:      file,
		Header:    header,
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestFileService_Upload_RejectsWrongMagicBytes(t *testing.T) {
	planRepo := new(mocks.MockPlanFileRepo)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewFileService(planRepo, storage, &cfg)

	file, header := createMultipartFile(t, "fake.pdf", []byte("plain text, not a pdf at all"), "application/pdf")
	defer file.Close()

	_, err := svc.Upload(context.Background(), service.FileUploadInput{
		ProjectID: "p1",
		Kind:      domain.FileKindPlan,
		File:      file,
		Header:    header,
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestFileService_Upload_RejectsTooLarge(t *testing.T) {
	planRepo := new(mocks.MockPlanFileRepo)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	cfg.MaxFileSizeMB = 0
	svc := service.NewFileService(planRepo, storage, &cfg)

	file, header := createMultipartFile(t, "big.pdf", pdfContent(), "application/pdf")
	defer file.Close()

	_, err := svc.Upload(context.Background(), service.FileUploadInput{
		ProjectID: "p1",
		Kind:      domain.FileKindPlan,
		File:      file,
		Header:    header,
	})
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestFileService_Upload_StorageFailureMarksFailed(t *testing.T) {
	planRepo := new(mocks.MockPlanFileRepo)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewFileService(planRepo, storage, &cfg)

	file, header := createMultipartFile(t, "plans.pdf", pdfContent(), "application/pdf")
	defer file.Close()

	planRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.PlanFile")).Return(nil)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(nil, assert.AnError)
	planRepo.On("UpdateStatus", mock.Anything, mock.AnythingOfType("uuid.UUID"), "failed").Return(nil)

	_, err := svc.Upload(context.Background(), service.FileUploadInput{
		ProjectID: "p1",
		Kind:      domain.FileKindVendorQuote,
		File:      file,
		Header:    header,
	})
	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	planRepo.AssertCalled(t, "UpdateStatus", mock.Anything, mock.AnythingOfType("uuid.UUID"), "failed")
}

func TestFileService_Download(t *testing.T) {
	planRepo := new(mocks.MockPlanFileRepo)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewFileService(planRepo, storage, &cfg)

	fileID := uuid.New()
	stored := &domain.PlanFile{
		ID:         fileID,
		ProjectID:  "p1",
		Name:       "plans.pdf",
		Kind:       domain.FileKindPlan,
		StorageKey: "projects/p1/plan/x/plans.pdf",
	}
	planRepo.On("GetByID", mock.Anything, fileID).Return(stored, nil)
	storage.On("Download", mock.Anything, "test-bucket", stored.StorageKey).
		Return(pdfContent(), nil)

	file, data, err := svc.Download(context.Background(), fileID)
	require.NoError(t, err)
	assert.Equal(t, stored, file)
	assert.Equal(t, pdfContent(), data)
}

func TestFileService_GetDownloadURL(t *testing.T) {
	planRepo := new(mocks.MockPlanFileRepo)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewFileService(planRepo, storage, &cfg)

	fileID := uuid.New()
	stored := &domain.PlanFile{ID: fileID, StorageKey: "projects/p1/plan/x/plans.pdf"}
	planRepo.On("GetByID", mock.Anything, fileID).Return(stored, nil)
	storage.On("GetPresignedURL", mock.Anything, "test-bucket", stored.StorageKey, int64(3600)).
		Return("https://signed.example.com/plans.pdf", nil)

	url, err := svc.GetDownloadURL(context.Background(), fileID)
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example.com/plans.pdf", url)
}

func TestFileService_Delete_MissingFile(t *testing.T) {
	planRepo := new(mocks.MockPlanFileRepo)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewFileService(planRepo, storage, &cfg)

	fileID := uuid.New()
	planRepo.On("GetByID", mock.Anything, fileID).Return(nil, domain.ErrPlanNotFound)

	err := svc.Delete(context.Background(), fileID)
	assert.ErrorIs(t, err, domain.ErrPlanNotFound)
}
