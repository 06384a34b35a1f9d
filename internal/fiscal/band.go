// Package fiscal computes per-band VAT totals for an invoice and builds the
// request a TIMS/ETR control unit signs.
package fiscal

// Band is one of the six statutory VAT slots the device accepts.
type Band int

const (
	BandA Band = iota // VAT 16%
	BandB             // VAT 8%
	BandC             // VAT 10%
	BandD             // VAT 2%
	BandE             // Zero Rated
	BandF             // Exempt

	bandCount = 6
)

// Tax band descriptors as they appear on invoice line items.
const (
	LabelVAT16     = "VAT 16%"
	LabelVAT8      = "VAT 8%"
	LabelVAT10     = "VAT 10%"
	LabelVAT2      = "VAT 2%"
	LabelZeroRated = "Zero Rated"
	LabelExempt    = "Exempt"
)

// HS codes reported in place of the item code for zero-rated and exempt goods.
const (
	HSCodeExempt    = "0043.11.00"
	HSCodeZeroRated = "0022.10.00"
)

var bandLabels = [bandCount]string{
	BandA: LabelVAT16,
	BandB: LabelVAT8,
	BandC: LabelVAT10,
	BandD: LabelVAT2,
	BandE: LabelZeroRated,
	BandF: LabelExempt,
}

var bandKeys = [bandCount]string{"A", "B", "C", "D", "E", "F"}

// ClassifyBand maps a descriptor to its band by exact match.
// The second return value is false for unrecognized descriptors.
func ClassifyBand(label string) (Band, bool) {
	for b, l := range bandLabels {
		if l == label {
			return Band(b), true
		}
	}
	return 0, false
}

// Label returns the descriptor of the band.
func (b Band) Label() string {
	if !b.valid() {
		return ""
	}
	return bandLabels[b]
}

// Key returns the single letter used in payload field names (VAT_A, VAT_B_Net, ...).
func (b Band) Key() string {
	if !b.valid() {
		return ""
	}
	return bandKeys[b]
}

// Taxed reports whether the band's tax amount counts toward the invoice total.
// Zero-rated and exempt bands contribute their net amount only.
func (b Band) Taxed() bool {
	return b.valid() && b < BandE
}

func (b Band) valid() bool {
	return b >= 0 && b < bandCount
}

// ProductCode returns the HS-code override for exempt and zero-rated items,
// or the item's own code for every other descriptor.
func ProductCode(label, itemCode string) string {
	switch label {
	case LabelExempt:
		return HSCodeExempt
	case LabelZeroRated:
		return HSCodeZeroRated
	default:
		return itemCode
	}
}
