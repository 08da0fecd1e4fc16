package noop

import (
	"context"
	"log"

	"jcwest/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs estimate
// notifications to stdout. The default when no provider is configured.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendEstimateEmail(_ context.Context, toEmail, toName, projectName, downloadURL string, grandTotal float64) error {
	log.Printf("[NOOP EMAIL] Estimate ready for %s (%s): project %q, grand total $%.2f, download %s",
		toName, toEmail, projectName, grandTotal, downloadURL)
	return nil
}
