// Package export renders the device response audit trail as a spreadsheet.
package export

import (
	"fmt"
	"io"

	"timsbridge/internal/model"

	"github.com/xuri/excelize/v2"
)

const SheetName = "KRA Responses"

// ContentType of the workbook written by WriteDeviceResponses.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var header = []interface{}{
	"Created At", "Invoice", "Response Code", "Message", "TSIN", "CUSN", "CUIN",
	"QR Code", "Signing Time", "Payload Sent", "ID",
}

// WriteDeviceResponses writes rows to w as an xlsx workbook, oldest first.
func WriteDeviceResponses(w io.Writer, rows []model.DeviceResponse) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.InvoiceNumber,
			r.ResponseCode,
			r.Message,
			r.TSIN,
			r.CUSN,
			r.CUIN,
			r.QRCode,
			r.SigningTime,
			r.PayloadSent,
			r.ID.String(),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", lastCol, 22); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
