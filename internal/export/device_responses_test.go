package export

import (
	"bytes"
	"testing"
	"time"

	"timsbridge/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteDeviceResponses(t *testing.T) {
	rows := []model.DeviceResponse{
		{
			ID:            uuid.New(),
			ResponseCode:  "000",
			Message:       "Success",
			CUIN:          "0170490000000123",
			InvoiceNumber: "ACC-SINV-2024-00001",
			PayloadSent:   `{"saleType":"sale"}`,
			CreatedAt:     time.Date(2024, 5, 2, 10, 15, 4, 0, time.UTC),
		},
		{
			ID:            uuid.New(),
			ResponseCode:  "999",
			Message:       "Invalid PIN",
			InvoiceNumber: "ACC-SINV-2024-00002",
			CreatedAt:     time.Date(2024, 5, 2, 11, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDeviceResponses(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "Invoice", got[0][1])
	assert.Equal(t, "2024-05-02 10:15:04", got[1][0])
	assert.Equal(t, "ACC-SINV-2024-00001", got[1][1])
	assert.Equal(t, "000", got[1][2])
	assert.Equal(t, "0170490000000123", got[1][6])
	assert.Equal(t, "Invalid PIN", got[2][3])
}

func TestWriteDeviceResponses_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDeviceResponses(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, got, 1, "header only")
}
