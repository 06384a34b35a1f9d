package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"timsbridge/internal/device"
	"timsbridge/internal/fiscal"
)

// MockDeviceClient is a mock implementation of device.Client.
type MockDeviceClient struct {
	mock.Mock
}

func (m *MockDeviceClient) PostInvoice(ctx context.Context, addr string, payload fiscal.Payload) (*device.Response, error) {
	args := m.Called(ctx, addr, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*device.Response), args.Error(1)
}

// MockProber is a mock implementation of device.Prober.
type MockProber struct {
	mock.Mock
}

func (m *MockProber) Probe(ctx context.Context, addr string) error {
	args := m.Called(ctx, addr)
	return args.Error(0)
}
