package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocStatus enum constants
const (
	DocStatusDraft     = 0
	DocStatusSubmitted = 1
	DocStatusCancelled = 2
)

// Invoice status constants (payment state as kept by the accounting host)
const (
	InvoiceStatusDraft  = "Draft"
	InvoiceStatusUnpaid = "Unpaid"
	InvoiceStatusPaid   = "Paid"
	InvoiceStatusReturn = "Return"
)

// FiscalStatus enum constants
const (
	FiscalNotSent      = "NOT_SENT"
	FiscalSending      = "SENDING"
	FiscalAcknowledged = "ACKNOWLEDGED"
)

// SalesInvoice is a sales invoice or credit note awaiting fiscalization.
// Name is the business key reported to the device as rctNo.
type SalesInvoice struct {
	ID                  uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name                string             `gorm:"type:varchar(140);uniqueIndex;not null" json:"name"`
	Customer            string             `gorm:"type:varchar(255);not null" json:"customer"`
	CustomerTaxID       string             `gorm:"type:varchar(30)" json:"customer_tax_id"`
	PostingDate         time.Time          `gorm:"type:date;not null" json:"posting_date"`
	IsReturn            bool               `gorm:"not null;default:false" json:"is_return"`
	ReturnAgainst       string             `gorm:"type:varchar(140);index" json:"return_against"`
	DocStatus           int                `gorm:"not null;default:0;index" json:"docstatus"`
	Status              string             `gorm:"type:varchar(30);not null;default:'Draft'" json:"status"`
	TaxesIncludedInRate bool               `gorm:"not null;default:false" json:"taxes_included_in_rate"`
	Items               []SalesInvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`

	// Fiscal metadata, written only after the device acknowledges the invoice.
	Fiscalized        bool       `gorm:"not null;default:false;index" json:"sent_to_kra"`
	FiscalStatus      string     `gorm:"type:varchar(20);not null;default:'NOT_SENT';index" json:"fiscal_status"`
	FiscalClaimedAt   *time.Time `json:"fiscal_claimed_at,omitempty"`
	FiscalLastOutcome string     `gorm:"type:varchar(30)" json:"fiscal_last_outcome"`
	TimsResponseCode  string     `gorm:"type:varchar(10)" json:"tims_response_code"`
	TSIN              string     `gorm:"type:varchar(100)" json:"tsin"`
	CUSN              string     `gorm:"type:varchar(100)" json:"cusn"`
	CUIN              string     `gorm:"type:varchar(100);index" json:"cuin"`
	QRCode            string     `gorm:"type:text" json:"qr_code"`
	SigningTime       string     `gorm:"type:varchar(50)" json:"signing_time"`
	ETRSerialNumber   string     `gorm:"type:varchar(50)" json:"etr_serial_number"`
	ETRInvoiceNumber  string     `gorm:"type:varchar(100)" json:"etr_invoice_number"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SalesInvoiceItem is one line of a SalesInvoice.
type SalesInvoiceItem struct {
	ID        uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceID uuid.UUID           `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Idx       int                 `gorm:"not null" json:"idx"`
	ItemCode  string              `gorm:"type:varchar(140);not null" json:"item_code"`
	ItemName  string              `gorm:"type:varchar(255)" json:"item_name"`
	Qty       decimal.NullDecimal `gorm:"type:decimal(18,4)" json:"qty"`
	NetRate   decimal.Decimal     `gorm:"type:decimal(18,4);not null" json:"net_rate"`
	TaxBand   string              `gorm:"type:varchar(50)" json:"tax_band"` // "VAT 16%", "Zero Rated", "Exempt", ...
	TaxRate   decimal.NullDecimal `gorm:"type:decimal(9,4)" json:"tax_rate"`
}

// IsDraft reports whether the invoice has not been finalized yet.
func (s *SalesInvoice) IsDraft() bool {
	return s.DocStatus == DocStatusDraft
}

// FiscalMetadata is what the device returns for an acknowledged invoice.
type FiscalMetadata struct {
	ResponseCode     string
	TSIN             string
	CUSN             string
	CUIN             string
	QRCode           string
	SigningTime      string
	ETRSerialNumber  string
	ETRInvoiceNumber string
}
