package repository

import (
	"context"
	"time"

	"timsbridge/internal/model"

	"gorm.io/gorm"
)

// InvoiceFilter narrows invoice listings. Empty fields match everything.
type InvoiceFilter struct {
	Status       string
	FiscalStatus string
	Fiscalized   *bool
	Page         int
	Limit        int
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.SalesInvoice) error
	FindByName(ctx context.Context, name string) (*model.SalesInvoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]model.SalesInvoice, int64, error)

	// ClaimForSending moves an unfiscalized invoice to SENDING. It returns
	// false when the invoice is fiscalized or held by a claim newer than
	// staleBefore.
	ClaimForSending(ctx context.Context, name string, now, staleBefore time.Time) (bool, error)
	// ReleaseClaim returns a SENDING invoice to NOT_SENT and records why.
	ReleaseClaim(ctx context.Context, name, outcome string) error
	ApplyFiscalMetadata(ctx context.Context, name string, meta model.FiscalMetadata) error
	// FinalizeIfDraft submits the invoice if it is still a draft and reports
	// whether it did.
	FinalizeIfDraft(ctx context.Context, name string) (bool, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.SalesInvoice) error {
	return GetDB(ctx, r.db).Create(invoice).Error
}

func (r *invoiceRepository) FindByName(ctx context.Context, name string) (*model.SalesInvoice, error) {
	var invoice model.SalesInvoice
	err := GetDB(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("idx asc") }).
		First(&invoice, "name = ?", name).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) List(ctx context.Context, filter InvoiceFilter) ([]model.SalesInvoice, int64, error) {
	var invoices []model.SalesInvoice
	var total int64

	apply := func(q *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.FiscalStatus != "" {
			q = q.Where("fiscal_status = ?", filter.FiscalStatus)
		}
		if filter.Fiscalized != nil {
			q = q.Where("fiscalized = ?", *filter.Fiscalized)
		}
		return q
	}

	db := GetDB(ctx, r.db)
	if err := apply(db.Model(&model.SalesInvoice{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := apply(db.Model(&model.SalesInvoice{})).
		Order("posting_date desc, name desc").
		Offset(offset).Limit(filter.Limit).
		Find(&invoices).Error; err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

func (r *invoiceRepository) ClaimForSending(ctx context.Context, name string, now, staleBefore time.Time) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.SalesInvoice{}).
		Where("name = ? AND fiscalized = ?", name, false).
		Where("fiscal_status <> ? OR fiscal_claimed_at IS NULL OR fiscal_claimed_at < ?", model.FiscalSending, staleBefore).
		Updates(map[string]interface{}{
			"fiscal_status":     model.FiscalSending,
			"fiscal_claimed_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *invoiceRepository) ReleaseClaim(ctx context.Context, name, outcome string) error {
	return GetDB(ctx, r.db).Model(&model.SalesInvoice{}).
		Where("name = ? AND fiscal_status = ?", name, model.FiscalSending).
		Updates(map[string]interface{}{
			"fiscal_status":       model.FiscalNotSent,
			"fiscal_claimed_at":   nil,
			"fiscal_last_outcome": outcome,
		}).Error
}

func (r *invoiceRepository) ApplyFiscalMetadata(ctx context.Context, name string, meta model.FiscalMetadata) error {
	res := GetDB(ctx, r.db).Model(&model.SalesInvoice{}).
		Where("name = ?", name).
		Updates(map[string]interface{}{
			"tims_response_code":  meta.ResponseCode,
			"tsin":                meta.TSIN,
			"cusn":                meta.CUSN,
			"cuin":                meta.CUIN,
			"qr_code":             meta.QRCode,
			"signing_time":        meta.SigningTime,
			"etr_serial_number":   meta.ETRSerialNumber,
			"etr_invoice_number":  meta.ETRInvoiceNumber,
			"fiscalized":          true,
			"fiscal_status":       model.FiscalAcknowledged,
			"fiscal_claimed_at":   nil,
			"fiscal_last_outcome": "acknowledged",
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *invoiceRepository) FinalizeIfDraft(ctx context.Context, name string) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.SalesInvoice{}).
		Where("name = ? AND doc_status = ?", name, model.DocStatusDraft).
		Updates(map[string]interface{}{
			"doc_status": model.DocStatusSubmitted,
			"status": gorm.Expr(
				"CASE WHEN status = ? THEN CASE WHEN is_return THEN ? ELSE ? END ELSE status END",
				model.InvoiceStatusDraft, model.InvoiceStatusReturn, model.InvoiceStatusUnpaid,
			),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
