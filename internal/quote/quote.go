package quote

import (
	"bytes"
	"fmt"
	"handyman_bids/internal/models/bid"
	"handyman_bids/internal/pricing"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
)

// Document holds everything the quote PDF needs. It is a plain value:
// building a quote never touches storage.
type Document struct {
	QuoteRef     string
	CustomerName string
	ProjectName  string
	Date         time.Time
	Items        []bid.LineItem
	Totals       pricing.Totals
}

// NewRef returns a short reference number printed on each generated
// quote so a customer can cite it back.
func NewRef() string {
	return "Q-" + strings.ToUpper(uuid.NewString()[:8])
}

// Build renders the quote as a single-page-per-flow PDF: title header,
// customer/project/date lines, one table row per line item, then the
// totals block. Currency values are rounded to cents here and nowhere
// earlier.
func Build(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Uncompressed output keeps the rendered text byte-inspectable.
	pdf.SetCompression(false)

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Arial", "B", 15)
		pdf.CellFormat(0, 10, "Job Estimate / Quote", "", 1, "C", false, 0, "")
		pdf.Ln(10)
	})

	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)

	pdf.CellFormat(200, 10, fmt.Sprintf("Customer: %s", doc.CustomerName), "", 1, "", false, 0, "")
	pdf.CellFormat(200, 10, fmt.Sprintf("Project: %s", doc.ProjectName), "", 1, "", false, 0, "")
	pdf.CellFormat(200, 10, fmt.Sprintf("Date: %s", doc.Date.Format("2006-01-02")), "", 1, "", false, 0, "")
	if doc.QuoteRef != "" {
		pdf.CellFormat(200, 10, fmt.Sprintf("Quote Ref: %s", doc.QuoteRef), "", 1, "", false, 0, "")
	}
	pdf.Ln(10)

	pdf.SetFillColor(200, 220, 255)
	pdf.CellFormat(80, 10, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 10, "Mat. Cost", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 10, "Labor Hrs", "1", 0, "R", true, 0, "")
	pdf.CellFormat(40, 10, "Total", "1", 1, "R", true, 0, "")

	for _, it := range doc.Items {
		pdf.CellFormat(80, 10, it.Description, "1", 0, "", false, 0, "")
		pdf.CellFormat(30, 10, money(it.MaterialCost), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 10, fmt.Sprintf("%g", it.LaborHours), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 10, money(pricing.LineTotal(it)), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(10)

	pdf.CellFormat(140, 10, "Subtotal:", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 10, money(doc.Totals.Subtotal), "", 1, "R", false, 0, "")

	pdf.CellFormat(140, 10, fmt.Sprintf("Markup (%g%%):", doc.Totals.MarkupPct), "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 10, money(doc.Totals.MarkupAmount), "", 1, "R", false, 0, "")

	pdf.CellFormat(140, 10, fmt.Sprintf("Tax (%g%%):", doc.Totals.TaxPct), "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 10, money(doc.Totals.TaxAmount), "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(140, 10, "TOTAL QUOTE:", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 10, money(doc.Totals.Total), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("quote.Build: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName follows the download naming convention
// Quote_{customer}_{project}.pdf.
func FileName(customerName, projectName string) string {
	return fmt.Sprintf("Quote_%s_%s.pdf", customerName, projectName)
}

// MailtoLink builds a mail-client deep link with a prefilled subject
// and body. Nothing is sent; the link is advisory text for the user's
// own mail client.
func MailtoLink(email, customerName, projectName string, total float64) string {
	subject := fmt.Sprintf("Estimate for %s", projectName)
	body := fmt.Sprintf("Hi %s,\r\n\r\nHere is the estimate for the %s.\r\n\r\n"+
		"Total Estimate: %s\r\n\r\n"+
		"Includes materials, labor, and necessary prep work.\r\n\r\n"+
		"Please let me know if you would like to proceed!",
		customerName, projectName, money(total))

	q := url.Values{}
	q.Set("subject", subject)
	q.Set("body", body)

	// Mail clients expect %20 over + for spaces.
	return "mailto:" + email + "?" + strings.ReplaceAll(q.Encode(), "+", "%20")
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
