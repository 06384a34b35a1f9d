package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"timsbridge/internal/device"
	"timsbridge/internal/fiscal"
	"timsbridge/internal/model"
	"timsbridge/internal/repository"
	"timsbridge/internal/telemetry"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// Submission outcomes
const (
	OutcomeAcknowledged       = "acknowledged"
	OutcomeIneligible         = string(fiscal.KindIneligible)
	OutcomePreconditionFailed = string(fiscal.KindPreconditionFailed)
	OutcomeTransportFailed    = string(fiscal.KindTransportFailed)
	OutcomeRejected           = string(fiscal.KindDeviceRejected)
	OutcomeUnexpected         = string(fiscal.KindUnexpected)
)

// --- DTOs ---

type SubmissionResult struct {
	Invoice      string  `json:"invoice"`
	Outcome      string  `json:"outcome"`
	Message      string  `json:"message"`
	SaleType     string  `json:"sale_type,omitempty"`
	ResponseID   *string `json:"response_id,omitempty"`
	ResponseCode string  `json:"response_code,omitempty"`
	CUIN         string  `json:"cuin,omitempty"`
	QRCode       string  `json:"qr_code,omitempty"`
	SigningTime  string  `json:"signing_time,omitempty"`
	Finalized    bool    `json:"finalized"`

	// Document is the invoice as stored after acknowledgment.
	Document *model.SalesInvoice `json:"-"`

	claimed bool
}

// SubmissionDeps wires the submission protocol.
type SubmissionDeps struct {
	Invoices  repository.InvoiceRepository
	Responses repository.DeviceResponseRepository
	Audit     repository.AuditRepository
	Device    device.Client
	Notifier  Notifier
	Metrics   *telemetry.FiscalMetrics
	Logger    zerolog.Logger
	ClaimTTL  time.Duration
	Now       func() time.Time
}

// --- Interface ---

// SubmissionService sends one invoice to the control unit and records the
// answer. The error is nil only for an acknowledged invoice; otherwise it is
// a *fiscal.Error whose kind tells the caller what happened. The operator
// has already been notified when Submit returns.
type SubmissionService interface {
	Submit(ctx context.Context, invoiceName string, setup model.DeviceSetup, actor string) (*SubmissionResult, error)
}

type submissionService struct {
	invoices  repository.InvoiceRepository
	responses repository.DeviceResponseRepository
	audit     repository.AuditRepository
	device    device.Client
	notifier  Notifier
	metrics   *telemetry.FiscalMetrics
	logger    zerolog.Logger
	claimTTL  time.Duration
	now       func() time.Time
}

func NewSubmissionService(deps SubmissionDeps) SubmissionService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	ttl := deps.ClaimTTL
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &submissionService{
		invoices:  deps.Invoices,
		responses: deps.Responses,
		audit:     deps.Audit,
		device:    deps.Device,
		notifier:  deps.Notifier,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		claimTTL:  ttl,
		now:       now,
	}
}

// --- Implementation ---

func (s *submissionService) Submit(ctx context.Context, invoiceName string, setup model.DeviceSetup, actor string) (*SubmissionResult, error) {
	result := &SubmissionResult{Invoice: invoiceName}

	err := s.submit(ctx, invoiceName, setup, result)

	// bookkeeping below must not be cut short by a caller that went away
	bgCtx := context.WithoutCancel(ctx)

	if err != nil && result.claimed {
		if relErr := s.invoices.ReleaseClaim(bgCtx, invoiceName, string(fiscal.KindOf(err))); relErr != nil {
			s.logger.Error().Err(relErr).Str("invoice", invoiceName).Msg("failed to release fiscal claim")
		}
	}

	if err == nil {
		result.Outcome = OutcomeAcknowledged
		result.Message = "Invoice successfully submitted to TIMS."
	} else {
		result.Outcome = string(fiscal.KindOf(err))
		result.Message = fiscal.UserMessage(err)
	}

	if s.metrics != nil {
		s.metrics.Submissions.WithLabelValues(result.Outcome, result.SaleType).Inc()
	}
	s.report(bgCtx, result, err)
	s.recordAudit(bgCtx, actor, result)

	return result, err
}

func (s *submissionService) submit(ctx context.Context, name string, setup model.DeviceSetup, result *SubmissionResult) error {
	const op = "submission.submit"

	inv, err := s.invoices.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = fmt.Errorf("%w: %s", ErrInvoiceNotFound, name)
		}
		return fiscal.Wrap(fiscal.KindUnexpected, op, "failed to load invoice", err)
	}

	if inv.Fiscalized {
		return fiscal.New(fiscal.KindIneligible, op, fiscal.MsgAlreadyFiscal)
	}

	now := s.now()
	if err := checkPreconditions(inv, setup, now); err != nil {
		return err
	}

	claimed, err := s.invoices.ClaimForSending(ctx, name, now, now.Add(-s.claimTTL))
	if err != nil {
		return fiscal.Wrap(fiscal.KindUnexpected, op, "failed to claim invoice", err)
	}
	if !claimed {
		return fiscal.Wrap(fiscal.KindIneligible, op, fiscal.MsgSubmissionClaim, ErrSubmissionInFlight)
	}
	result.claimed = true

	originCUIN := ""
	if inv.IsReturn {
		originCUIN, err = s.originCUIN(ctx, inv)
		if err != nil {
			return fiscal.Wrap(fiscal.KindUnexpected, op, "failed to look up original sale", err)
		}
	}

	built := fiscal.BuildPayload(payloadInput(inv, setup, originCUIN))
	result.SaleType = built.Payload.SaleType
	s.reportDropped(inv.Name, built.Dropped)

	payloadSent, err := json.Marshal(built.Payload)
	if err != nil {
		return fiscal.Wrap(fiscal.KindUnexpected, op, "failed to encode payload", err)
	}

	// Once the request is on the wire the device may sign the invoice, so the
	// round trip and everything recording its result ignore caller cancellation.
	// The client timeout still bounds the call.
	sendCtx := context.WithoutCancel(ctx)

	start := time.Now()
	resp, err := s.device.PostInvoice(sendCtx, setup.Address(), built.Payload)
	s.observeLatency(start, err)
	if err != nil {
		if errors.Is(err, device.ErrTransport) || errors.Is(err, device.ErrMalformedResponse) {
			return fiscal.Wrap(fiscal.KindTransportFailed, op, fiscal.MsgTransport, err)
		}
		return fiscal.Wrap(fiscal.KindUnexpected, op, "device call failed", err)
	}

	record := &model.DeviceResponse{
		ResponseCode:  resp.ResponseCode,
		Message:       resp.Message,
		TSIN:          resp.TSIN,
		CUSN:          resp.CUSN,
		CUIN:          resp.CUIN,
		QRCode:        resp.QRCode,
		SigningTime:   resp.SigningTime,
		InvoiceNumber: inv.Name,
		PayloadSent:   string(payloadSent),
	}
	if err := s.responses.Create(sendCtx, record); err != nil {
		return fiscal.Wrap(fiscal.KindUnexpected, op, "failed to store device response", err)
	}
	responseID := record.ID.String()
	result.ResponseID = &responseID
	result.ResponseCode = resp.ResponseCode

	if !resp.Acknowledged() {
		return &fiscal.Error{
			Kind:       fiscal.KindDeviceRejected,
			Op:         op,
			Message:    fiscal.MsgDeviceRejected,
			ResponseID: &record.ID,
			Err:        fmt.Errorf("device answered %s: %s", resp.ResponseCode, resp.Message),
		}
	}

	return s.acknowledge(sendCtx, inv, setup, resp, result)
}

// acknowledge applies the device signature to the invoice and then, as a
// separate step, finalizes it if it is still a draft.
func (s *submissionService) acknowledge(ctx context.Context, inv *model.SalesInvoice, setup model.DeviceSetup, resp *device.Response, result *SubmissionResult) error {
	const op = "submission.acknowledge"

	meta := model.FiscalMetadata{
		ResponseCode:     resp.ResponseCode,
		TSIN:             resp.TSIN,
		CUSN:             resp.CUSN,
		CUIN:             resp.CUIN,
		QRCode:           resp.QRCode,
		SigningTime:      resp.SigningTime,
		ETRSerialNumber:  setup.ETRSerialNumber,
		ETRInvoiceNumber: resp.CUIN,
	}
	if err := s.invoices.ApplyFiscalMetadata(ctx, inv.Name, meta); err != nil {
		return fiscal.Wrap(fiscal.KindUnexpected, op, "failed to apply fiscal metadata", err)
	}
	result.CUIN = resp.CUIN
	result.QRCode = resp.QRCode
	result.SigningTime = resp.SigningTime

	finalized, err := s.invoices.FinalizeIfDraft(ctx, inv.Name)
	if err != nil {
		return fiscal.Wrap(fiscal.KindUnexpected, op, "failed to finalize invoice", err)
	}
	result.Finalized = finalized

	refreshed, err := s.invoices.FindByName(ctx, inv.Name)
	if err != nil {
		return fiscal.Wrap(fiscal.KindUnexpected, op, "failed to reload invoice", err)
	}
	result.Document = refreshed

	return nil
}

func (s *submissionService) originCUIN(ctx context.Context, inv *model.SalesInvoice) (string, error) {
	if inv.ReturnAgainst == "" {
		s.logger.Warn().Str("invoice", inv.Name).Msg("credit note has no return-against invoice, sending empty cuin")
		return "", nil
	}
	origin, err := s.responses.FindAcknowledged(ctx, inv.ReturnAgainst)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn().
			Str("invoice", inv.Name).
			Str("return_against", inv.ReturnAgainst).
			Msg("no acknowledged response for original sale, sending empty cuin")
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return origin.CUIN, nil
}

// --- Helpers ---

func checkPreconditions(inv *model.SalesInvoice, setup model.DeviceSetup, now time.Time) error {
	const op = "submission.preconditions"

	if !setup.IsActive() {
		return fiscal.New(fiscal.KindPreconditionFailed, op, fiscal.MsgDeviceInactive)
	}
	if !setup.AllowOtherDayPosting && inv.PostingDate.Format(dateLayout) != now.Format(dateLayout) {
		return fiscal.New(fiscal.KindPreconditionFailed, op, fiscal.MsgPostingDate)
	}
	return nil
}

func payloadInput(inv *model.SalesInvoice, setup model.DeviceSetup, originCUIN string) fiscal.PayloadInput {
	items := make([]fiscal.LineItem, 0, len(inv.Items))
	for _, it := range inv.Items {
		items = append(items, fiscal.LineItem{
			ItemCode:  it.ItemCode,
			ItemName:  it.ItemName,
			Qty:       it.Qty,
			NetRate:   it.NetRate,
			BandLabel: it.TaxBand,
			TaxRate:   it.TaxRate,
		})
	}

	return fiscal.PayloadInput{
		InvoiceName: inv.Name,
		IsReturn:    inv.IsReturn,
		IsPaid:      inv.Status == model.InvoiceStatusPaid,
		CustomerPIN: inv.CustomerTaxID,
		Category:    fiscal.CategoryFor(inv.TaxesIncludedInRate),
		Items:       items,
		OriginCUIN:  originCUIN,
		Till:        setup.TillNumber,
	}
}

func (s *submissionService) reportDropped(invoice string, dropped []fiscal.DroppedLine) {
	for _, d := range dropped {
		s.logger.Warn().
			Str("invoice", invoice).
			Str("item_code", d.ItemCode).
			Str("band_label", d.BandLabel).
			Str("taxable", d.Taxable.StringFixed(2)).
			Msg("line item tax band not recognized, excluded from VAT totals")
		if s.metrics != nil {
			s.metrics.DroppedLineItems.WithLabelValues(d.BandLabel).Inc()
		}
	}
}

func (s *submissionService) observeLatency(start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	label := "ok"
	if err != nil {
		label = "error"
	}
	s.metrics.DeviceLatency.WithLabelValues(label).Observe(time.Since(start).Seconds())
}

func (s *submissionService) report(ctx context.Context, result *SubmissionResult, err error) {
	n := Notice{Invoice: result.Invoice, Title: "TIMS", Message: result.Message}
	if result.ResponseID != nil {
		n.ResponseID = *result.ResponseID
	}

	switch fiscal.KindOf(err) {
	case "":
		s.logger.Info().Str("invoice", result.Invoice).Str("cuin", result.CUIN).Bool("finalized", result.Finalized).Msg("invoice acknowledged by device")
		n.Level = NoticeInfo
	case fiscal.KindIneligible:
		s.logger.Debug().Err(err).Str("invoice", result.Invoice).Msg("invoice not sent")
		return
	case fiscal.KindUnexpected:
		s.logger.Error().Err(err).Str("invoice", result.Invoice).Msg("TIMS KRA Error.")
		n.Level = NoticeError
		n.Title = "TIMS KRA Error"
	default:
		s.logger.Warn().Err(err).Str("invoice", result.Invoice).Str("outcome", result.Outcome).Msg("invoice not fiscalized")
		n.Level = NoticeWarning
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, n)
	}
}

func (s *submissionService) recordAudit(ctx context.Context, actor string, result *SubmissionResult) {
	if s.audit == nil || result.Outcome == OutcomeIneligible {
		return
	}
	details, _ := json.Marshal(map[string]interface{}{
		"outcome":       result.Outcome,
		"response_id":   result.ResponseID,
		"response_code": result.ResponseCode,
		"finalized":     result.Finalized,
	})
	entry := &model.AuditLog{
		Actor:      actorOrSystem(actor),
		Action:     model.ActionFiscalizeInvoice,
		EntityID:   result.Invoice,
		EntityName: result.Invoice,
		Details:    string(details),
	}
	if err := s.audit.Log(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("invoice", result.Invoice).Msg("failed to write audit log")
	}
}

func actorOrSystem(actor string) string {
	if actor == "" {
		return "system"
	}
	return actor
}
