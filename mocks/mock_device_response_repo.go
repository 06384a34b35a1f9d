package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"timsbridge/internal/model"
	"timsbridge/internal/repository"
)

type MockDeviceResponseRepository struct {
	mock.Mock
}

func (m *MockDeviceResponseRepository) Create(ctx context.Context, resp *model.DeviceResponse) error {
	args := m.Called(ctx, resp)
	return args.Error(0)
}

func (m *MockDeviceResponseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.DeviceResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeviceResponse), args.Error(1)
}

func (m *MockDeviceResponseRepository) FindAcknowledged(ctx context.Context, invoiceNumber string) (*model.DeviceResponse, error) {
	args := m.Called(ctx, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeviceResponse), args.Error(1)
}

func (m *MockDeviceResponseRepository) List(ctx context.Context, filter repository.DeviceResponseFilter) ([]model.DeviceResponse, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.DeviceResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockDeviceResponseRepository) ListForExport(ctx context.Context, filter repository.DeviceResponseFilter) ([]model.DeviceResponse, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DeviceResponse), args.Error(1)
}
