package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEstimateEmail(ctx context.Context, toEmail, toName, projectName, downloadURL string, grandTotal float64) error {
	args := m.Called(ctx, toEmail, toName, projectName, downloadURL, grandTotal)
	return args.Error(0)
}
