package service

import (
	"context"
	"errors"

	"timsbridge/internal/fiscal"
)

var (
	ErrInvoiceNotFound    = errors.New("invoice not found")
	ErrInvoiceNotDraft    = errors.New("invoice is not a draft")
	ErrSubmissionInFlight = errors.New("invoice is already being sent")
	ErrInvalidInvoice     = errors.New("invalid invoice")
)

// Notice levels
const (
	NoticeInfo    = "info"
	NoticeWarning = "warning"
	NoticeError   = "error"
)

// Notice is a message meant for the operator who triggered a fiscal action.
type Notice struct {
	Level      string `json:"level"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	Invoice    string `json:"invoice,omitempty"`
	ResponseID string `json:"response_id,omitempty"`
}

// Notifier delivers notices to operators. Implementations must not block.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// SubmitAbortedError is returned by the eligibility gate when a failed
// fiscalization must stop the invoice from being submitted.
type SubmitAbortedError struct {
	Cause error
}

func (e *SubmitAbortedError) Error() string {
	return "Failed to send invoice to TIMS: " + fiscal.UserMessage(e.Cause)
}

func (e *SubmitAbortedError) Unwrap() error {
	return e.Cause
}
