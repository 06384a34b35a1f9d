package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockTransactionManager runs fn directly on ctx unless the expectation
// returns an error, in which case fn is never called.
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}
