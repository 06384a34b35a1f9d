package handler_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"timsbridge/internal/handler"
	"timsbridge/internal/model"
	"timsbridge/internal/service"
	"timsbridge/mocks"
)

func TestDeviceSetupHandler_Update(t *testing.T) {
	svc := new(mocks.MockDeviceSetupService)
	h := handler.NewDeviceSetupHandler(svc, []byte("secret"))

	svc.On("UpdateSetup", mock.Anything, mock.MatchedBy(func(r service.UpdateDeviceSetupRequest) bool {
		return r.IP != nil && *r.IP == "10.0.0.5" && r.Port != nil && *r.Port == 8086 && r.SendCreditNotes == nil
	}), "jane").Return(&model.DeviceSetup{IP: "10.0.0.5", Port: 8086}, nil)

	c, w := newContext(http.MethodPut, "/api/tims/setup", []byte(`{"ip":"10.0.0.5","port":8086}`))
	h.UpdateSetup(c)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestDeviceSetupHandler_Update_BadPort(t *testing.T) {
	svc := new(mocks.MockDeviceSetupService)
	h := handler.NewDeviceSetupHandler(svc, []byte("secret"))

	c, w := newContext(http.MethodPut, "/api/tims/setup", []byte(`{"port":70000}`))
	h.UpdateSetup(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "UpdateSetup", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeviceSetupHandler_TestConnection(t *testing.T) {
	svc := new(mocks.MockDeviceSetupService)
	h := handler.NewDeviceSetupHandler(svc, []byte("secret"))

	svc.On("TestConnection", mock.Anything, service.TestConnectionRequest{IP: "10.0.0.5", Port: 8086}, "jane").
		Return(service.ProbeResult{Success: false, Error: "connection refused", Status: model.DeviceInactive}, nil)

	c, w := newContext(http.MethodPost, "/api/tims/setup/test-connection", []byte(`{"ip":"10.0.0.5","port":8086}`))
	h.TestConnection(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]interface{})
	assert.Equal(t, false, data["success"])
	assert.Equal(t, model.DeviceInactive, data["status"])
}

func TestDeviceSetupHandler_TestConnection_Validation(t *testing.T) {
	svc := new(mocks.MockDeviceSetupService)
	h := handler.NewDeviceSetupHandler(svc, []byte("secret"))

	c, w := newContext(http.MethodPost, "/api/tims/setup/test-connection", []byte(`{"port":8086}`))
	h.TestConnection(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeviceSetupHandler_Get_Failure(t *testing.T) {
	svc := new(mocks.MockDeviceSetupService)
	h := handler.NewDeviceSetupHandler(svc, []byte("secret"))
	svc.On("GetSetup", mock.Anything).Return(nil, errors.New("connection reset by peer"))

	c, w := newContext(http.MethodGet, "/api/tims/setup", nil)
	h.GetSetup(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decode(t, w).Error)
}
