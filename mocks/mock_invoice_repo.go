package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"timsbridge/internal/model"
	"timsbridge/internal/repository"
)

// MockInvoiceRepository is a mock implementation of repository.InvoiceRepository.
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *model.SalesInvoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) FindByName(ctx context.Context, name string) (*model.SalesInvoice, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SalesInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) List(ctx context.Context, filter repository.InvoiceFilter) ([]model.SalesInvoice, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.SalesInvoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) ClaimForSending(ctx context.Context, name string, now, staleBefore time.Time) (bool, error) {
	args := m.Called(ctx, name, now, staleBefore)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) ReleaseClaim(ctx context.Context, name, outcome string) error {
	args := m.Called(ctx, name, outcome)
	return args.Error(0)
}

func (m *MockInvoiceRepository) ApplyFiscalMetadata(ctx context.Context, name string, meta model.FiscalMetadata) error {
	args := m.Called(ctx, name, meta)
	return args.Error(0)
}

func (m *MockInvoiceRepository) FinalizeIfDraft(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}
