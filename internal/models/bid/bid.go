package bid

import "time"

// LineItem is one task or material entry within a bid. Line totals are
// derived, never stored.
type LineItem struct {
	Description  string  `json:"description"`
	MaterialCost float64 `json:"materialCost"`
	LaborHours   float64 `json:"laborHours"`
	HourlyRate   float64 `json:"hourlyRate"`
}

type BidRequest struct {
	CustomerId  int64      `json:"customerId" validate:"required"`
	ProjectName string     `json:"projectName" validate:"required"`
	Items       []LineItem `json:"items"`
	MarkupPct   float64    `json:"markupPct"`
	TaxPct      float64    `json:"taxPct"`
}

// BidRecord is a full stored bid. Everything except Status is an
// immutable snapshot taken at save time.
type BidRecord struct {
	Id            int64      `json:"id"`
	CustomerId    int64      `json:"customerId"`
	CustomerName  string     `json:"customerName"`
	CustomerEmail string     `json:"customerEmail"`
	ProjectName   string     `json:"projectName"`
	DateCreated   time.Time  `json:"dateCreated"`
	Items         []LineItem `json:"items"`
	Subtotal      float64    `json:"subtotal"`
	MarkupPct     float64    `json:"markupPct"`
	TaxPct        float64    `json:"taxPct"`
	Total         float64    `json:"total"`
	Status        string     `json:"status"`
}

// BidListing is one bid-history row, joined with the customer's
// display name.
type BidListing struct {
	Id           int64     `json:"id"`
	DateCreated  time.Time `json:"dateCreated"`
	CustomerName string    `json:"customerName"`
	ProjectName  string    `json:"projectName"`
	Total        float64   `json:"total"`
	Status       string    `json:"status"`
}

type EmailLinkResponse struct {
	Link string `json:"link"`
}

const StatusDraft = "Draft"

// Statuses is the fixed set of bid statuses, in the order presented to
// the user. A status is a flat label: any status may follow any other,
// there is no enforced workflow graph and no terminal state.
var Statuses = []string{StatusDraft, "Sent", "Approved", "Declined", "Completed", "Paid"}

func IsValidStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}
