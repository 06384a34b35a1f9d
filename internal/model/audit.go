package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateInvoice     = "CREATE_INVOICE"
	ActionSubmitInvoice     = "SUBMIT_INVOICE"
	ActionFiscalizeInvoice  = "FISCALIZE_INVOICE"
	ActionUpdateDeviceSetup = "UPDATE_DEVICE_SETUP"
	ActionProbeDevice       = "PROBE_DEVICE"
)

// AuditLog tracks Who, What, and When for fiscal operations
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Actor      string    `gorm:"type:varchar(100);index" json:"actor"` // JWT subject, "system" for automated runs
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(140);index" json:"entity_id"`
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string    `gorm:"type:jsonb" json:"details"` // Serialized JSON payload of the action
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
