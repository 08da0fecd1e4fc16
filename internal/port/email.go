package port

import "context"

// EmailSender abstracts outbound estimate notifications.
type EmailSender interface {
	// SendEstimateEmail notifies a recipient that an estimate is ready,
	// with a presigned link to the exported workbook.
	SendEstimateEmail(ctx context.Context, toEmail, toName, projectName, downloadURL string, grandTotal float64) error
}
