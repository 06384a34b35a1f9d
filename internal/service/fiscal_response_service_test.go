package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"timsbridge/internal/export"
	"timsbridge/internal/model"
	"timsbridge/internal/repository"
	"timsbridge/internal/service"
	"timsbridge/mocks"
)

func TestListResponses_PassesFilter(t *testing.T) {
	repo := new(mocks.MockDeviceResponseRepository)
	svc := service.NewFiscalResponseService(repo)

	repo.On("List", mock.Anything, repository.DeviceResponseFilter{InvoiceNumber: "ACC-SINV-2024-00001", Page: 1, Limit: 20}).
		Return([]model.DeviceResponse{{ResponseCode: "000"}}, int64(1), nil)

	rows, total, err := svc.ListResponses(context.Background(), service.DeviceResponseFilter{
		InvoiceNumber: "ACC-SINV-2024-00001", Page: 1, Limit: 20,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, rows, 1)
}

func TestGetResponse(t *testing.T) {
	repo := new(mocks.MockDeviceResponseRepository)
	svc := service.NewFiscalResponseService(repo)

	id := uuid.New()
	missing := uuid.New()
	repo.On("FindByID", mock.Anything, id).Return(&model.DeviceResponse{ID: id, ResponseCode: "999"}, nil)
	repo.On("FindByID", mock.Anything, missing).Return(nil, gorm.ErrRecordNotFound)

	got, err := svc.GetResponse(context.Background(), id.String())
	require.NoError(t, err)
	assert.Equal(t, "999", got.ResponseCode)

	_, err = svc.GetResponse(context.Background(), missing.String())
	assert.ErrorIs(t, err, service.ErrDeviceResponseNotFound)

	_, err = svc.GetResponse(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, service.ErrDeviceResponseNotFound)
}

func TestExportResponses(t *testing.T) {
	repo := new(mocks.MockDeviceResponseRepository)
	svc := service.NewFiscalResponseService(repo)

	repo.On("ListForExport", mock.Anything, repository.DeviceResponseFilter{ResponseCode: "999"}).
		Return([]model.DeviceResponse{
			{ID: uuid.New(), ResponseCode: "999", InvoiceNumber: "A"},
			{ID: uuid.New(), ResponseCode: "999", InvoiceNumber: "B"},
		}, nil)

	var buf bytes.Buffer
	n, err := svc.ExportResponses(context.Background(), service.DeviceResponseFilter{ResponseCode: "999"}, &buf)

	require.NoError(t, err)
	assert.Equal(t, 2, n)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestExportResponses_RepoError(t *testing.T) {
	repo := new(mocks.MockDeviceResponseRepository)
	svc := service.NewFiscalResponseService(repo)
	repo.On("ListForExport", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	var buf bytes.Buffer
	_, err := svc.ExportResponses(context.Background(), service.DeviceResponseFilter{}, &buf)

	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}
