package notification

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// Receipt holds what a purchase receipt prints.
type Receipt struct {
	TransactionID int64
	StudentName   string
	StudentEmail  string
	CourseTitle   string
	Amount        decimal.Decimal
	Currency      string
	PaidAt        time.Time
}

func (r Receipt) Filename() string {
	return fmt.Sprintf("receipt-%d.pdf", r.TransactionID)
}

// RenderReceipt lays the receipt out on a single A4 page.
func RenderReceipt(r Receipt) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Receipt #%d", r.TransactionID), true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 12, "Purchase receipt")
	pdf.Ln(16)

	pdf.SetFont("Arial", "", 12)
	lines := [][2]string{
		{"Receipt", fmt.Sprintf("#%d", r.TransactionID)},
		{"Student", r.StudentName},
		{"Email", r.StudentEmail},
		{"Course", r.CourseTitle},
		{"Amount", fmt.Sprintf("%s %s", r.Amount.StringFixed(2), r.Currency)},
		{"Paid at", r.PaidAt.UTC().Format("2006-01-02 15:04 MST")},
	}
	for _, line := range lines {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(40, 10, line[0])
		pdf.SetFont("Arial", "", 12)
		pdf.Cell(0, 10, pdf.UnicodeTranslatorFromDescriptor("")(line[1]))
		pdf.Ln(10)
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "I", 10)
	pdf.Cell(0, 10, "Thank you for learning with us.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error generating receipt PDF: %w", err)
	}
	return buf.Bytes(), nil
}
