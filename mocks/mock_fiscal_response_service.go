package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"timsbridge/internal/model"
	"timsbridge/internal/service"
)

type MockFiscalResponseService struct {
	mock.Mock
}

func (m *MockFiscalResponseService) ListResponses(ctx context.Context, filter service.DeviceResponseFilter) ([]model.DeviceResponse, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.DeviceResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockFiscalResponseService) GetResponse(ctx context.Context, id string) (*model.DeviceResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeviceResponse), args.Error(1)
}

// ExportResponses writes the optional third return value, a []byte, to w.
func (m *MockFiscalResponseService) ExportResponses(ctx context.Context, filter service.DeviceResponseFilter, w io.Writer) (int, error) {
	args := m.Called(ctx, filter, w)
	if len(args) > 2 {
		if body, ok := args.Get(2).([]byte); ok {
			_, _ = w.Write(body)
		}
	}
	return args.Int(0), args.Error(1)
}
