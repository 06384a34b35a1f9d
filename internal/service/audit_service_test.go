package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"timsbridge/internal/model"
	"timsbridge/internal/repository"
	"timsbridge/internal/service"
	"timsbridge/mocks"
)

func TestGetAuditLogs(t *testing.T) {
	repo := new(mocks.MockAuditRepository)
	svc := service.NewAuditService(repo)

	repo.On("List", mock.Anything, repository.AuditFilter{Action: model.ActionFiscalizeInvoice, Page: 1, Limit: 10}).
		Return([]model.AuditLog{{
			ID:        uuid.New(),
			Actor:     "system",
			Action:    model.ActionFiscalizeInvoice,
			EntityID:  "ACC-SINV-2024-00001",
			Details:   `{"outcome":"acknowledged"}`,
			CreatedAt: time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC),
		}}, int64(1), nil)

	logs, total, err := svc.GetAuditLogs(context.Background(), service.AuditLogFilter{
		Action: model.ActionFiscalizeInvoice, Page: 1, Limit: 10,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, logs, 1)
	assert.Equal(t, "system", logs[0].Actor)
	assert.Equal(t, "2024-05-02 09:30:00", logs[0].CreatedAt)
}
