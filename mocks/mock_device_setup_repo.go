package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"timsbridge/internal/model"
)

type MockDeviceSetupRepository struct {
	mock.Mock
}

func (m *MockDeviceSetupRepository) Get(ctx context.Context, defaults model.DeviceSetup) (*model.DeviceSetup, error) {
	args := m.Called(ctx, defaults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeviceSetup), args.Error(1)
}

func (m *MockDeviceSetupRepository) Save(ctx context.Context, setup *model.DeviceSetup) error {
	args := m.Called(ctx, setup)
	return args.Error(0)
}

func (m *MockDeviceSetupRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
