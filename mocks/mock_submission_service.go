package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"timsbridge/internal/model"
	"timsbridge/internal/service"
)

// MockSubmissionService is a mock implementation of service.SubmissionService.
type MockSubmissionService struct {
	mock.Mock
}

func (m *MockSubmissionService) Submit(ctx context.Context, invoiceName string, setup model.DeviceSetup, actor string) (*service.SubmissionResult, error) {
	args := m.Called(ctx, invoiceName, setup, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SubmissionResult), args.Error(1)
}

// MockEligibilityGate is a mock implementation of service.EligibilityGate.
type MockEligibilityGate struct {
	mock.Mock
}

func (m *MockEligibilityGate) Evaluate(inv *model.SalesInvoice, setup model.DeviceSetup) service.GateDecision {
	args := m.Called(inv, setup)
	return args.Get(0).(service.GateDecision)
}

func (m *MockEligibilityGate) OnSubmit(ctx context.Context, inv *model.SalesInvoice, setup model.DeviceSetup, actor string) (*service.SubmissionResult, error) {
	args := m.Called(ctx, inv, setup, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SubmissionResult), args.Error(1)
}
