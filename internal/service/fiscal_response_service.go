package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"timsbridge/internal/export"
	"timsbridge/internal/model"
	"timsbridge/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrDeviceResponseNotFound = errors.New("device response not found")

// --- DTOs ---

type DeviceResponseFilter struct {
	InvoiceNumber string
	ResponseCode  string
	Page          int
	Limit         int
}

// --- Interface ---

// FiscalResponseService reads the device response audit trail.
type FiscalResponseService interface {
	ListResponses(ctx context.Context, filter DeviceResponseFilter) ([]model.DeviceResponse, int64, error)
	GetResponse(ctx context.Context, id string) (*model.DeviceResponse, error)
	ExportResponses(ctx context.Context, filter DeviceResponseFilter, w io.Writer) (int, error)
}

type fiscalResponseService struct {
	responseRepo repository.DeviceResponseRepository
}

func NewFiscalResponseService(responseRepo repository.DeviceResponseRepository) FiscalResponseService {
	return &fiscalResponseService{responseRepo: responseRepo}
}

// --- Implementation ---

func (s *fiscalResponseService) ListResponses(ctx context.Context, filter DeviceResponseFilter) ([]model.DeviceResponse, int64, error) {
	rows, total, err := s.responseRepo.List(ctx, toRepoResponseFilter(filter))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list device responses: %w", err)
	}
	return rows, total, nil
}

func (s *fiscalResponseService) GetResponse(ctx context.Context, id string) (*model.DeviceResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrDeviceResponseNotFound
	}

	resp, err := s.responseRepo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceResponseNotFound
		}
		return nil, fmt.Errorf("failed to load device response: %w", err)
	}
	return resp, nil
}

// ExportResponses writes matching responses to w as xlsx and returns the row count.
func (s *fiscalResponseService) ExportResponses(ctx context.Context, filter DeviceResponseFilter, w io.Writer) (int, error) {
	rows, err := s.responseRepo.ListForExport(ctx, toRepoResponseFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to load device responses: %w", err)
	}
	if err := export.WriteDeviceResponses(w, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// --- Helpers ---

func toRepoResponseFilter(f DeviceResponseFilter) repository.DeviceResponseFilter {
	return repository.DeviceResponseFilter{
		InvoiceNumber: f.InvoiceNumber,
		ResponseCode:  f.ResponseCode,
		Page:          f.Page,
		Limit:         f.Limit,
	}
}
