package handler

import (
	"errors"
	"net/http"

	"timsbridge/internal/fiscal"
	"timsbridge/internal/service"
	"timsbridge/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

var notFound = []error{
	service.ErrInvoiceNotFound,
	service.ErrDeviceResponseNotFound,
	service.ErrDeviceSetupNotFound,
}

func notFoundErr(err error) error {
	for _, target := range notFound {
		if errors.Is(err, target) {
			return target
		}
	}
	return nil
}

// statusFor maps service and fiscal errors to HTTP status codes.
func statusFor(err error) int {
	var aborted *service.SubmitAbortedError
	switch {
	case errors.As(err, &aborted):
		return http.StatusConflict
	case notFoundErr(err) != nil:
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInvoice):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvoiceNotDraft),
		errors.Is(err, service.ErrSubmissionInFlight):
		return http.StatusConflict
	}

	switch fiscal.KindOf(err) {
	case fiscal.KindIneligible:
		return http.StatusConflict
	case fiscal.KindPreconditionFailed:
		return http.StatusPreconditionFailed
	case fiscal.KindTransportFailed:
		return http.StatusBadGateway
	case fiscal.KindDeviceRejected:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// messageFor is the text put in the error body. Fiscal failures use the
// operator message; internal errors are not echoed back.
func messageFor(err error, status int) string {
	var aborted *service.SubmitAbortedError
	if errors.As(err, &aborted) {
		return aborted.Error()
	}
	if target := notFoundErr(err); target != nil {
		return target.Error()
	}
	var fe *fiscal.Error
	if errors.As(err, &fe) {
		return fiscal.UserMessage(err)
	}
	if status == http.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}

// writeError responds with the mapped status. data, when non-nil, is sent
// alongside the error.
func writeError(c *gin.Context, err error, data interface{}) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	_ = c.Error(err)

	msg := messageFor(err, status)
	if data != nil {
		c.JSON(status, response.ErrorWithData(status, msg, data))
		return
	}
	c.JSON(status, response.Error(status, msg))
}
