package fiscal

import "github.com/shopspring/decimal"

// BandTotal is the accumulated net and tax amount of one band.
type BandTotal struct {
	Net decimal.Decimal
	Tax decimal.Decimal
}

// VatTotals accumulates line amounts per band. The zero value is ready to use.
type VatTotals struct {
	bands [bandCount]BandTotal
}

// Add routes a taxed line into its band. Lines with an unrecognized
// descriptor never reach here; see Aggregate.
func (v *VatTotals) Add(b Band, taxable, tax decimal.Decimal) {
	if !b.valid() {
		return
	}
	v.bands[b].Net = v.bands[b].Net.Add(taxable)
	v.bands[b].Tax = v.bands[b].Tax.Add(tax)
}

// Band returns the running totals of b.
func (v *VatTotals) Band(b Band) BandTotal {
	if !b.valid() {
		return BandTotal{}
	}
	return v.bands[b]
}

// Total is the unrounded grand total: net plus tax for the taxed bands and
// net only for zero-rated and exempt.
func (v *VatTotals) Total() decimal.Decimal {
	total := decimal.Zero
	for i, bt := range v.bands {
		total = total.Add(bt.Net)
		if Band(i).Taxed() {
			total = total.Add(bt.Tax)
		}
	}
	return total
}

// DroppedLine records a line item whose descriptor matched no band.
type DroppedLine struct {
	ItemCode  string
	BandLabel string
	Taxable   decimal.Decimal
	Tax       decimal.Decimal
}

// Aggregate taxes every item and accumulates the results. Items with an
// unrecognized descriptor still produce a product line but contribute to no
// band; they are returned so the caller can report them.
func Aggregate(items []LineItem, category TaxCategory) (VatTotals, []ProductLine, []DroppedLine) {
	var totals VatTotals
	lines := make([]ProductLine, 0, len(items))
	var dropped []DroppedLine

	for _, item := range items {
		lt := CalculateLine(item, category)
		lines = append(lines, lt.Line)
		if !lt.Recognized {
			dropped = append(dropped, DroppedLine{
				ItemCode:  item.ItemCode,
				BandLabel: item.BandLabel,
				Taxable:   lt.Taxable,
				Tax:       lt.Tax,
			})
			continue
		}
		totals.Add(lt.Band, lt.Taxable, lt.Tax)
	}

	return totals, lines, dropped
}
