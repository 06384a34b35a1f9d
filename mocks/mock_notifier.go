package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"timsbridge/internal/service"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, n service.Notice) {
	m.Called(ctx, n)
}
