package pricing

import "handyman_bids/internal/models/bid"

// Totals is the priced breakdown of a bid. Markup applies to the
// subtotal, tax applies after markup. Values keep full float precision;
// rounding to cents happens only when formatting for output.
type Totals struct {
	Subtotal     float64 `json:"subtotal"`
	MarkupPct    float64 `json:"markupPct"`
	MarkupAmount float64 `json:"markupAmount"`
	TaxPct       float64 `json:"taxPct"`
	TaxAmount    float64 `json:"taxAmount"`
	Total        float64 `json:"total"`
}

// LineTotal returns material cost plus labor for a single line item.
func LineTotal(it bid.LineItem) float64 {
	return it.MaterialCost + it.LaborHours*it.HourlyRate
}

// Calculate prices an ordered sequence of line items. It does not
// validate its inputs; rejecting negative amounts is the caller's job.
// An empty item list yields all-zero totals.
func Calculate(items []bid.LineItem, markupPct, taxPct float64) Totals {
	var subtotal float64
	for _, it := range items {
		subtotal += LineTotal(it)
	}

	markupAmount := subtotal * markupPct / 100
	postMarkup := subtotal + markupAmount
	taxAmount := postMarkup * taxPct / 100

	return Totals{
		Subtotal:     subtotal,
		MarkupPct:    markupPct,
		MarkupAmount: markupAmount,
		TaxPct:       taxPct,
		TaxAmount:    taxAmount,
		Total:        postMarkup + taxAmount,
	}
}
