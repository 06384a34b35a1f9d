package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"timsbridge/internal/service"
)

type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) CreateInvoice(ctx context.Context, req service.CreateInvoiceRequest, actor string) (service.InvoiceResponse, error) {
	args := m.Called(ctx, req, actor)
	return args.Get(0).(service.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceService) GetInvoice(ctx context.Context, name string) (service.InvoiceResponse, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(service.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceService) ListInvoices(ctx context.Context, filter service.InvoiceFilter) ([]service.InvoiceResponse, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]service.InvoiceResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceService) SubmitInvoice(ctx context.Context, name, actor string) (service.SubmitInvoiceResponse, error) {
	args := m.Called(ctx, name, actor)
	return args.Get(0).(service.SubmitInvoiceResponse), args.Error(1)
}

func (m *MockInvoiceService) FiscalizeInvoice(ctx context.Context, name, actor string) (*service.SubmissionResult, error) {
	args := m.Called(ctx, name, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SubmissionResult), args.Error(1)
}
