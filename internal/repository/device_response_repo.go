package repository

import (
	"context"

	"timsbridge/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxExportRows caps a single export.
const maxExportRows = 10000

type DeviceResponseFilter struct {
	InvoiceNumber string
	ResponseCode  string
	Page          int
	Limit         int
}

// DeviceResponseRepository is append-only: there is no update or delete.
type DeviceResponseRepository interface {
	Create(ctx context.Context, resp *model.DeviceResponse) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.DeviceResponse, error)
	// FindAcknowledged returns the latest successful response for an invoice.
	FindAcknowledged(ctx context.Context, invoiceNumber string) (*model.DeviceResponse, error)
	List(ctx context.Context, filter DeviceResponseFilter) ([]model.DeviceResponse, int64, error)
	ListForExport(ctx context.Context, filter DeviceResponseFilter) ([]model.DeviceResponse, error)
}

type deviceResponseRepository struct {
	db *gorm.DB
}

func NewDeviceResponseRepository(db *gorm.DB) DeviceResponseRepository {
	return &deviceResponseRepository{db: db}
}

// Create writes outside any transaction carried by ctx so the record
// survives a rollback of the surrounding invoice operation.
func (r *deviceResponseRepository) Create(ctx context.Context, resp *model.DeviceResponse) error {
	return r.db.WithContext(ctx).Create(resp).Error
}

func (r *deviceResponseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.DeviceResponse, error) {
	var resp model.DeviceResponse
	if err := GetDB(ctx, r.db).First(&resp, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *deviceResponseRepository) FindAcknowledged(ctx context.Context, invoiceNumber string) (*model.DeviceResponse, error) {
	var resp model.DeviceResponse
	err := GetDB(ctx, r.db).
		Where("invoice_number = ? AND response_code = ?", invoiceNumber, model.ResponseCodeSuccess).
		Order("created_at desc").
		First(&resp).Error
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *deviceResponseRepository) filtered(ctx context.Context, filter DeviceResponseFilter) *gorm.DB {
	q := GetDB(ctx, r.db).Model(&model.DeviceResponse{})
	if filter.InvoiceNumber != "" {
		q = q.Where("invoice_number = ?", filter.InvoiceNumber)
	}
	if filter.ResponseCode != "" {
		q = q.Where("response_code = ?", filter.ResponseCode)
	}
	return q
}

func (r *deviceResponseRepository) List(ctx context.Context, filter DeviceResponseFilter) ([]model.DeviceResponse, int64, error) {
	var responses []model.DeviceResponse
	var total int64

	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := r.filtered(ctx, filter).Order("created_at desc").Offset(offset).Limit(filter.Limit).Find(&responses).Error; err != nil {
		return nil, 0, err
	}

	return responses, total, nil
}

func (r *deviceResponseRepository) ListForExport(ctx context.Context, filter DeviceResponseFilter) ([]model.DeviceResponse, error) {
	var responses []model.DeviceResponse
	if err := r.filtered(ctx, filter).Order("created_at asc").Limit(maxExportRows).Find(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}
