package fiscal

import "github.com/shopspring/decimal"

// TaxCategory says whether unit prices on an invoice already contain tax.
type TaxCategory string

const (
	TaxInclusive TaxCategory = "Inclusive"
	TaxExclusive TaxCategory = "Exclusive"
)

// CategoryFor derives the category from the invoice tax template setting.
func CategoryFor(includedInRate bool) TaxCategory {
	if includedInRate {
		return TaxInclusive
	}
	return TaxExclusive
}

var hundred = decimal.NewFromInt(100)

// LineItem is the snapshot of an invoice line taken at submission time.
type LineItem struct {
	ItemCode  string
	ItemName  string
	Qty       decimal.NullDecimal // absent or zero resolves to 1
	NetRate   decimal.Decimal
	BandLabel string
	TaxRate   decimal.NullDecimal // percent, absent resolves to 0
	Discount  decimal.Decimal
}

// ProductLine is one entry of the payload "data" array.
type ProductLine struct {
	ProductCode string  `json:"productCode"`
	ProductDesc string  `json:"productDesc"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Discount    float64 `json:"discount"`
	TaxType     int64   `json:"taxtype"`
}

// LineTax is the result of taxing a single line item.
type LineTax struct {
	Band       Band
	Recognized bool
	Taxable    decimal.Decimal
	Tax        decimal.Decimal
	Line       ProductLine
}

// CalculateLine computes the taxable and tax amounts of an item and the
// product line reported to the device. Amounts keep their sign here; the
// payload builder reports magnitudes.
func CalculateLine(item LineItem, category TaxCategory) LineTax {
	rate := decimal.Zero
	if item.TaxRate.Valid {
		rate = item.TaxRate.Decimal
	}
	qty := decimal.NewFromInt(1)
	if item.Qty.Valid && !item.Qty.Decimal.IsZero() {
		qty = item.Qty.Decimal
	}
	unitPrice := item.NetRate.Round(2)
	discount := item.Discount

	gross := unitPrice.Mul(qty).Sub(discount)
	taxable := gross
	if category == TaxInclusive {
		factor := decimal.NewFromInt(1).Add(rate.Div(hundred))
		taxable = gross.Div(factor)
	}
	tax := taxable.Mul(rate).Div(hundred)

	band, ok := ClassifyBand(item.BandLabel)

	return LineTax{
		Band:       band,
		Recognized: ok,
		Taxable:    taxable,
		Tax:        tax,
		Line: ProductLine{
			ProductCode: ProductCode(item.BandLabel, item.ItemCode),
			ProductDesc: item.ItemName,
			Quantity:    qty.Abs().InexactFloat64(),
			UnitPrice:   unitPrice.Abs().InexactFloat64(),
			Discount:    discount.Abs().InexactFloat64(),
			TaxType:     rate.IntPart(),
		},
	}
}
