package fiscal

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Kind classifies how a fiscalization attempt ended without acknowledgment.
type Kind string

const (
	KindIneligible         Kind = "ineligible"
	KindPreconditionFailed Kind = "precondition_failed"
	KindTransportFailed    Kind = "transport_failed"
	KindDeviceRejected     Kind = "device_rejected"
	KindUnexpected         Kind = "unexpected_failure"
)

// Operator-facing messages.
const (
	MsgDeviceInactive  = "TIMS Device Setup for Sending Invoices is not Active."
	MsgPostingDate     = "Invoice Posting Date Must be Today's Date"
	MsgTransport       = "Request Time Out Error, please make sure the TIMS/ETR Machine is active."
	MsgDeviceRejected  = "Invoice Submission to KRA Failed. Please Check KRA Response Generated."
	MsgUnexpected      = "An error occurred while sending the invoice to TIMS. Please check the error logs for details."
	MsgAlreadyFiscal   = "Invoice has already been sent to TIMS."
	MsgSubmissionClaim = "Invoice is already being sent to TIMS."
)

// Error is a classified fiscalization failure.
type Error struct {
	Kind    Kind
	Op      string
	Message string

	// ResponseID points at the stored device response for rejections.
	ResponseID *uuid.UUID

	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Op != "" {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a classified error carrying an operator message.
func New(kind Kind, op, message string) error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap classifies err. Returns nil if err is nil.
func Wrap(kind Kind, op, message string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// KindOf extracts the kind from err. Unclassified errors are unexpected.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// UserMessage is the text shown to the operator for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Kind != KindUnexpected {
		return e.Message
	}
	return MsgUnexpected
}
