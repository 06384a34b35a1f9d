package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"timsbridge/internal/model"
	"timsbridge/internal/service"
)

type MockDeviceSetupService struct {
	mock.Mock
}

func (m *MockDeviceSetupService) GetSetup(ctx context.Context) (*model.DeviceSetup, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeviceSetup), args.Error(1)
}

func (m *MockDeviceSetupService) UpdateSetup(ctx context.Context, req service.UpdateDeviceSetupRequest, actor string) (*model.DeviceSetup, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeviceSetup), args.Error(1)
}

func (m *MockDeviceSetupService) TestConnection(ctx context.Context, req service.TestConnectionRequest, actor string) (service.ProbeResult, error) {
	args := m.Called(ctx, req, actor)
	return args.Get(0).(service.ProbeResult), args.Error(1)
}
