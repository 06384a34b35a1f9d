package model

import (
	"time"

	"github.com/google/uuid"
)

// ResponseCodeSuccess is the code the device returns for a signed invoice.
const ResponseCodeSuccess = "000"

// DeviceResponse is the append-only record of one device round-trip.
// Rows are never updated or deleted.
type DeviceResponse struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ResponseCode  string    `gorm:"type:varchar(10);not null;index" json:"response_code"`
	Message       string    `gorm:"type:text" json:"message"`
	TSIN          string    `gorm:"type:varchar(100)" json:"tsin"`
	CUSN          string    `gorm:"type:varchar(100)" json:"cusn"`
	CUIN          string    `gorm:"type:varchar(100)" json:"cuin"`
	QRCode        string    `gorm:"type:text" json:"qr_code"`
	SigningTime   string    `gorm:"type:varchar(50)" json:"signing_time"`
	InvoiceNumber string    `gorm:"type:varchar(140);not null;index" json:"invoice_number"`
	PayloadSent   string    `gorm:"type:text" json:"payload_sent"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

func (DeviceResponse) TableName() string {
	return "tims_device_responses"
}

// Acknowledged reports whether the device signed the invoice.
func (r *DeviceResponse) Acknowledged() bool {
	return r.ResponseCode == ResponseCodeSuccess
}
