package fiscal

import "github.com/shopspring/decimal"

const (
	SaleTypeSale   = "sale"
	SaleTypeRefund = "refund"

	PaymentCash   = "Cash"
	PaymentCredit = "Credit"
)

// Payload is the JSON body posted to the device. Field names are fixed by
// the device API.
type Payload struct {
	SaleType    string        `json:"saleType"`
	CUIN        string        `json:"cuin"`
	Till        string        `json:"till"`
	RctNo       string        `json:"rctNo"`
	Total       float64       `json:"total"`
	Paid        float64       `json:"Paid"`
	Payment     string        `json:"Payment"`
	CustomerPIN string        `json:"CustomerPIN"`
	VATANet     float64       `json:"VAT_A_Net"`
	VATA        float64       `json:"VAT_A"`
	VATBNet     float64       `json:"VAT_B_Net"`
	VATB        float64       `json:"VAT_B"`
	VATCNet     float64       `json:"VAT_C_Net"`
	VATC        float64       `json:"VAT_C"`
	VATDNet     float64       `json:"VAT_D_Net"`
	VATD        float64       `json:"VAT_D"`
	VATENet     float64       `json:"VAT_E_Net"`
	VATE        float64       `json:"VAT_E"`
	VATFNet     float64       `json:"VAT_F_Net"`
	VATF        float64       `json:"VAT_F"`
	Data        []ProductLine `json:"data"`
}

// PayloadInput is everything the builder needs from an invoice.
type PayloadInput struct {
	InvoiceName string
	IsReturn    bool
	IsPaid      bool
	CustomerPIN string
	Category    TaxCategory
	Items       []LineItem

	// OriginCUIN is the control-unit invoice number of the sale a refund
	// reverses. Empty when no acknowledged sale was found.
	OriginCUIN string
	Till       string
}

// BuildResult carries the payload along with the intermediate totals.
type BuildResult struct {
	Payload Payload
	Totals  VatTotals
	Dropped []DroppedLine
}

// BuildPayload assembles the device request for an invoice.
func BuildPayload(in PayloadInput) BuildResult {
	totals, lines, dropped := Aggregate(in.Items, in.Category)

	saleType := SaleTypeSale
	cuin := ""
	if in.IsReturn {
		saleType = SaleTypeRefund
		cuin = in.OriginCUIN
	}

	payment := PaymentCredit
	if in.IsPaid {
		payment = PaymentCash
	}

	total := money(totals.Total())
	p := Payload{
		SaleType:    saleType,
		CUIN:        cuin,
		Till:        in.Till,
		RctNo:       in.InvoiceName,
		Total:       total,
		Paid:        total,
		Payment:     payment,
		CustomerPIN: in.CustomerPIN,
		Data:        lines,
	}

	bandFields := [bandCount][2]*float64{
		BandA: {&p.VATANet, &p.VATA},
		BandB: {&p.VATBNet, &p.VATB},
		BandC: {&p.VATCNet, &p.VATC},
		BandD: {&p.VATDNet, &p.VATD},
		BandE: {&p.VATENet, &p.VATE},
		BandF: {&p.VATFNet, &p.VATF},
	}
	for b, f := range bandFields {
		bt := totals.Band(Band(b))
		*f[0] = money(bt.Net)
		*f[1] = money(bt.Tax)
	}

	return BuildResult{Payload: p, Totals: totals, Dropped: dropped}
}

// money is the wire form of an amount: magnitude rounded to cents.
func money(d decimal.Decimal) float64 {
	return d.Abs().Round(2).InexactFloat64()
}
