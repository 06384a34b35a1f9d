package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"timsbridge/internal/fiscal"
	"timsbridge/internal/model"
	"timsbridge/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateInvoiceItemRequest struct {
	ItemCode string  `json:"item_code" binding:"required"`
	ItemName string  `json:"item_name"`
	Qty      *string `json:"qty"`
	NetRate  string  `json:"net_rate" binding:"required"`
	TaxBand  string  `json:"tax_band"`
	TaxRate  *string `json:"tax_rate"`
}

type CreateInvoiceRequest struct {
	Name                string                     `json:"name" binding:"required"`
	Customer            string                     `json:"customer" binding:"required"`
	CustomerTaxID       string                     `json:"customer_tax_id"`
	PostingDate         string                     `json:"posting_date" binding:"required"` // YYYY-MM-DD
	IsReturn            bool                       `json:"is_return"`
	ReturnAgainst       string                     `json:"return_against"`
	Status              string                     `json:"status" binding:"omitempty,oneof=Draft Unpaid Paid Return"`
	TaxesIncludedInRate bool                       `json:"taxes_included_in_rate"`
	Items               []CreateInvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
}

type InvoiceFilter struct {
	Status       string
	FiscalStatus string
	Fiscalized   *bool
	Page         int
	Limit        int
}

type InvoiceItemResponse struct {
	Idx      int     `json:"idx"`
	ItemCode string  `json:"item_code"`
	ItemName string  `json:"item_name"`
	Qty      *string `json:"qty"`
	NetRate  string  `json:"net_rate"`
	TaxBand  string  `json:"tax_band"`
	TaxRate  *string `json:"tax_rate"`
}

type InvoiceResponse struct {
	ID                string                `json:"id"`
	Name              string                `json:"name"`
	Customer          string                `json:"customer"`
	CustomerTaxID     string                `json:"customer_tax_id"`
	PostingDate       string                `json:"posting_date"`
	IsReturn          bool                  `json:"is_return"`
	ReturnAgainst     string                `json:"return_against,omitempty"`
	DocStatus         int                   `json:"docstatus"`
	Status            string                `json:"status"`
	TaxCategory       string                `json:"tax_category"`
	SentToKRA         bool                  `json:"sent_to_kra"`
	FiscalStatus      string                `json:"fiscal_status"`
	FiscalLastOutcome string                `json:"fiscal_last_outcome,omitempty"`
	TimsResponseCode  string                `json:"tims_response_code,omitempty"`
	TSIN              string                `json:"tsin,omitempty"`
	CUSN              string                `json:"cusn,omitempty"`
	CUIN              string                `json:"cuin,omitempty"`
	QRCode            string                `json:"qr_code,omitempty"`
	SigningTime       string                `json:"signing_time,omitempty"`
	ETRSerialNumber   string                `json:"etr_serial_number,omitempty"`
	ETRInvoiceNumber  string                `json:"etr_invoice_number,omitempty"`
	Items             []InvoiceItemResponse `json:"items,omitempty"`
	CreatedAt         string                `json:"created_at"`
}

type SubmitInvoiceResponse struct {
	Invoice       InvoiceResponse   `json:"invoice"`
	Fiscalization *SubmissionResult `json:"fiscalization"`
}

// --- Interface ---

type InvoiceService interface {
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest, actor string) (InvoiceResponse, error)
	GetInvoice(ctx context.Context, name string) (InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]InvoiceResponse, int64, error)
	// SubmitInvoice is the host submit event: it runs the eligibility gate
	// and finalizes the draft unless the gate aborts.
	SubmitInvoice(ctx context.Context, name, actor string) (SubmitInvoiceResponse, error)
	// FiscalizeInvoice sends an invoice to the device on operator request,
	// bypassing the on-submit flags.
	FiscalizeInvoice(ctx context.Context, name, actor string) (*SubmissionResult, error)
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	setups      DeviceSetupService
	gate        EligibilityGate
	submissions SubmissionService
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	setups DeviceSetupService,
	gate EligibilityGate,
	submissions SubmissionService,
) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		setups:      setups,
		gate:        gate,
		submissions: submissions,
	}
}

// --- Implementation ---

func (s *invoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest, actor string) (InvoiceResponse, error) {
	postingDate, err := time.Parse(dateLayout, req.PostingDate)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("%w: posting_date must be YYYY-MM-DD", ErrInvalidInvoice)
	}
	if req.IsReturn && req.ReturnAgainst == "" {
		return InvoiceResponse{}, fmt.Errorf("%w: return_against is required for returns", ErrInvalidInvoice)
	}

	status := req.Status
	if status == "" {
		status = model.InvoiceStatusDraft
	}

	invoice := model.SalesInvoice{
		Name:                req.Name,
		Customer:            req.Customer,
		CustomerTaxID:       req.CustomerTaxID,
		PostingDate:         postingDate,
		IsReturn:            req.IsReturn,
		ReturnAgainst:       req.ReturnAgainst,
		DocStatus:           model.DocStatusDraft,
		Status:              status,
		TaxesIncludedInRate: req.TaxesIncludedInRate,
		FiscalStatus:        model.FiscalNotSent,
	}

	for i, it := range req.Items {
		item, err := toItemModel(i+1, it)
		if err != nil {
			return InvoiceResponse{}, err
		}
		invoice.Items = append(invoice.Items, item)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.invoiceRepo.Create(txCtx, &invoice); err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}
		return s.logAudit(txCtx, actor, model.ActionCreateInvoice, invoice.Name, map[string]interface{}{
			"customer":  invoice.Customer,
			"is_return": invoice.IsReturn,
			"items":     len(invoice.Items),
		})
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	return mapInvoice(&invoice), nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, name string) (InvoiceResponse, error) {
	invoice, err := s.find(ctx, name)
	if err != nil {
		return InvoiceResponse{}, err
	}
	return mapInvoice(invoice), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter InvoiceFilter) ([]InvoiceResponse, int64, error) {
	invoices, total, err := s.invoiceRepo.List(ctx, repository.InvoiceFilter{
		Status:       filter.Status,
		FiscalStatus: filter.FiscalStatus,
		Fiscalized:   filter.Fiscalized,
		Page:         filter.Page,
		Limit:        filter.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}

	res := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		res = append(res, mapInvoice(&invoices[i]))
	}
	return res, total, nil
}

func (s *invoiceService) SubmitInvoice(ctx context.Context, name, actor string) (SubmitInvoiceResponse, error) {
	invoice, err := s.find(ctx, name)
	if err != nil {
		return SubmitInvoiceResponse{}, err
	}
	if !invoice.IsDraft() {
		return SubmitInvoiceResponse{}, ErrInvoiceNotDraft
	}

	setup, err := s.setups.GetSetup(ctx)
	if err != nil {
		return SubmitInvoiceResponse{}, err
	}

	fiscalization, err := s.gate.OnSubmit(ctx, invoice, *setup, actor)
	if err != nil {
		return SubmitInvoiceResponse{Invoice: mapInvoice(invoice), Fiscalization: fiscalization}, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.invoiceRepo.FinalizeIfDraft(txCtx, name); err != nil {
			return fmt.Errorf("failed to submit invoice: %w", err)
		}
		return s.logAudit(txCtx, actor, model.ActionSubmitInvoice, name, map[string]interface{}{
			"fiscal_outcome": fiscalization.Outcome,
		})
	})
	if err != nil {
		return SubmitInvoiceResponse{}, err
	}

	reloaded, err := s.find(ctx, name)
	if err != nil {
		return SubmitInvoiceResponse{}, err
	}
	return SubmitInvoiceResponse{Invoice: mapInvoice(reloaded), Fiscalization: fiscalization}, nil
}

func (s *invoiceService) FiscalizeInvoice(ctx context.Context, name, actor string) (*SubmissionResult, error) {
	setup, err := s.setups.GetSetup(ctx)
	if err != nil {
		return nil, err
	}
	return s.submissions.Submit(ctx, name, *setup, actor)
}

// --- Helpers ---

func (s *invoiceService) find(ctx context.Context, name string) (*model.SalesInvoice, error) {
	invoice, err := s.invoiceRepo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}
	return invoice, nil
}

func (s *invoiceService) logAudit(ctx context.Context, actor, action, entity string, details map[string]interface{}) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}
	if err := s.auditRepo.Log(ctx, &model.AuditLog{
		Actor:      actorOrSystem(actor),
		Action:     action,
		EntityID:   entity,
		EntityName: entity,
		Details:    string(raw),
	}); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func toItemModel(idx int, req CreateInvoiceItemRequest) (model.SalesInvoiceItem, error) {
	netRate, err := decimal.NewFromString(req.NetRate)
	if err != nil {
		return model.SalesInvoiceItem{}, fmt.Errorf("%w: item %d net_rate: %v", ErrInvalidInvoice, idx, err)
	}
	qty, err := parseOptionalDecimal(req.Qty)
	if err != nil {
		return model.SalesInvoiceItem{}, fmt.Errorf("%w: item %d qty: %v", ErrInvalidInvoice, idx, err)
	}
	rate, err := parseOptionalDecimal(req.TaxRate)
	if err != nil {
		return model.SalesInvoiceItem{}, fmt.Errorf("%w: item %d tax_rate: %v", ErrInvalidInvoice, idx, err)
	}

	return model.SalesInvoiceItem{
		Idx:      idx,
		ItemCode: req.ItemCode,
		ItemName: req.ItemName,
		Qty:      qty,
		NetRate:  netRate,
		TaxBand:  req.TaxBand,
		TaxRate:  rate,
	}, nil
}

func parseOptionalDecimal(s *string) (decimal.NullDecimal, error) {
	if s == nil || *s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

// --- Mapping ---

func mapInvoice(inv *model.SalesInvoice) InvoiceResponse {
	res := InvoiceResponse{
		ID:                inv.ID.String(),
		Name:              inv.Name,
		Customer:          inv.Customer,
		CustomerTaxID:     inv.CustomerTaxID,
		PostingDate:       inv.PostingDate.Format(dateLayout),
		IsReturn:          inv.IsReturn,
		ReturnAgainst:     inv.ReturnAgainst,
		DocStatus:         inv.DocStatus,
		Status:            inv.Status,
		TaxCategory:       string(fiscal.CategoryFor(inv.TaxesIncludedInRate)),
		SentToKRA:         inv.Fiscalized,
		FiscalStatus:      inv.FiscalStatus,
		FiscalLastOutcome: inv.FiscalLastOutcome,
		TimsResponseCode:  inv.TimsResponseCode,
		TSIN:              inv.TSIN,
		CUSN:              inv.CUSN,
		CUIN:              inv.CUIN,
		QRCode:            inv.QRCode,
		SigningTime:       inv.SigningTime,
		ETRSerialNumber:   inv.ETRSerialNumber,
		ETRInvoiceNumber:  inv.ETRInvoiceNumber,
		CreatedAt:         inv.CreatedAt.Format("2006-01-02 15:04:05"),
	}

	for _, it := range inv.Items {
		res.Items = append(res.Items, InvoiceItemResponse{
			Idx:      it.Idx,
			ItemCode: it.ItemCode,
			ItemName: it.ItemName,
			Qty:      nullDecimalString(it.Qty),
			NetRate:  it.NetRate.String(),
			TaxBand:  it.TaxBand,
			TaxRate:  nullDecimalString(it.TaxRate),
		})
	}
	return res
}

func nullDecimalString(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.String()
	return &s
}
