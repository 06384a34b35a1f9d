package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"timsbridge/internal/service"
)

type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) GetAuditLogs(ctx context.Context, filter service.AuditLogFilter) ([]service.AuditLogResponse, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]service.AuditLogResponse), args.Get(1).(int64), args.Error(2)
}
