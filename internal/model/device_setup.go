package model

import (
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// DeviceStatus enum constants
const (
	DeviceActive   = "Active"
	DeviceInactive = "Inactive"
)

// DeviceSetup is the single row configuring the TIMS/ETR control unit.
type DeviceSetup struct {
	ID                       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Status                   string    `gorm:"type:varchar(20);not null;default:'Inactive'" json:"status"`
	IP                       string    `gorm:"type:varchar(255)" json:"ip"`
	Port                     int       `json:"port"`
	SendInvoicesOnSubmit     bool      `gorm:"not null;default:false" json:"send_invoices_on_submit"`
	SendCreditNotes          bool      `gorm:"not null;default:false" json:"send_credit_notes"`
	AllowSubmissionOnFailure bool      `gorm:"not null;default:false" json:"allow_submission_on_failure"`
	AllowOtherDayPosting     bool      `gorm:"not null;default:false" json:"allow_other_day_posting"`
	TillNumber               string    `gorm:"type:varchar(50)" json:"till_number"`
	ETRSerialNumber          string    `gorm:"type:varchar(50)" json:"etr_serial_number"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

// TableName keeps the singleton under a TIMS-specific name.
func (DeviceSetup) TableName() string {
	return "tims_device_setups"
}

// IsActive reports whether the last probe reached the device.
func (s *DeviceSetup) IsActive() bool {
	return s.Status == DeviceActive
}

// Address returns host:port of the device.
func (s *DeviceSetup) Address() string {
	return net.JoinHostPort(s.IP, strconv.Itoa(s.Port))
}
