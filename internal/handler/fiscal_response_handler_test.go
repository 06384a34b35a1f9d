package handler_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"timsbridge/internal/export"
	"timsbridge/internal/handler"
	"timsbridge/internal/model"
	"timsbridge/internal/service"
	"timsbridge/mocks"
)

func TestFiscalResponseHandler_List(t *testing.T) {
	svc := new(mocks.MockFiscalResponseService)
	h := handler.NewFiscalResponseHandler(svc, []byte("secret"))

	svc.On("ListResponses", mock.Anything, service.DeviceResponseFilter{InvoiceNumber: "INV-1", ResponseCode: "999", Page: 1, Limit: 20}).
		Return([]model.DeviceResponse{{ResponseCode: "999"}}, int64(1), nil)

	c, w := newContext(http.MethodGet, "/api/tims/responses?invoice=INV-1&response_code=999", nil)
	h.ListResponses(c)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestFiscalResponseHandler_Get_NotFound(t *testing.T) {
	svc := new(mocks.MockFiscalResponseService)
	h := handler.NewFiscalResponseHandler(svc, []byte("secret"))
	id := uuid.NewString()
	svc.On("GetResponse", mock.Anything, id).Return(nil, service.ErrDeviceResponseNotFound)

	c, w := newContext(http.MethodGet, "/api/tims/responses/"+id, nil, gin.Param{Key: "id", Value: id})
	h.GetResponse(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFiscalResponseHandler_Export(t *testing.T) {
	svc := new(mocks.MockFiscalResponseService)
	h := handler.NewFiscalResponseHandler(svc, []byte("secret"))
	svc.On("ExportResponses", mock.Anything, service.DeviceResponseFilter{ResponseCode: "000"}, mock.Anything).
		Return(1, nil, []byte("PK-workbook"))

	c, w := newContext(http.MethodGet, "/api/tims/responses/export?response_code=000", nil)
	h.ExportResponses(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=\"tims-responses-")
	assert.Equal(t, "PK-workbook", w.Body.String())
}
