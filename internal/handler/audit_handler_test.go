package handler_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"timsbridge/internal/handler"
	"timsbridge/internal/service"
	"timsbridge/mocks"
)

func TestAuditHandler_GetAuditLogs(t *testing.T) {
	svc := new(mocks.MockAuditService)
	h := handler.NewAuditHandler(svc, []byte("secret"))

	svc.On("GetAuditLogs", mock.Anything, service.AuditLogFilter{Action: "PROBE_DEVICE", Page: 1, Limit: 50}).
		Return([]service.AuditLogResponse{{Action: "PROBE_DEVICE"}}, int64(1), nil)

	c, w := newContext(http.MethodGet, "/api/audit-logs?action=PROBE_DEVICE&limit=50", nil)
	h.GetAuditLogs(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])
	assert.Equal(t, float64(1), data["total_pages"])
}

func TestAuditHandler_GetAuditLogs_Error(t *testing.T) {
	svc := new(mocks.MockAuditService)
	h := handler.NewAuditHandler(svc, []byte("secret"))
	svc.On("GetAuditLogs", mock.Anything, mock.Anything).Return(nil, int64(0), errors.New("db down"))

	c, w := newContext(http.MethodGet, "/api/audit-logs", nil)
	h.GetAuditLogs(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
