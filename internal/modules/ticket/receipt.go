// README: PDF receipt for a paid purchase.
package ticket

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/phpdave11/gofpdf"
)

// The core PDF fonts are Latin-1 only, so the receipt uses English labels.
func renderReceipt(p *Purchase) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Receipt "+p.OrderID, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "RIDE PASS RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Order ID    : "+p.OrderID)
	pdf.Ln(7)
	if p.PaidAt != nil {
		pdf.Cell(0, 7, "Paid at     : "+p.PaidAt.Format("2006-01-02 15:04"))
		pdf.Ln(7)
	}
	pdf.Cell(0, 7, "Payment key : "+p.PaymentKey)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Items:")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	for i, s := range p.Quote.Selection {
		line := fmt.Sprintf("%d) %d-ride ticket", i+1, s.BaseRides)
		if s.BonusRides > 0 {
			line += fmt.Sprintf(" (+%d bonus)", s.BonusRides)
		}
		line += fmt.Sprintf(" x %d  @ %s = %s", s.Count, formatAmount(p.Amount.Currency, s.UnitPrice), formatAmount(p.Amount.Currency, s.Subtotal))
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.Cell(0, 6, fmt.Sprintf("Requested rides : %d", p.Quote.RequestedRides))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Granted rides   : %d", p.Quote.GrantedRides))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Price per ride  : "+formatAmount(p.Amount.Currency, p.Quote.PricePerRide))
	pdf.Ln(6)
	if p.Quote.DiscountAmount > 0 {
		pdf.Cell(0, 6, "Discount        : -"+formatAmount(p.Amount.Currency, p.Quote.DiscountAmount))
		pdf.Ln(6)
	}
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total: "+formatAmount(p.Amount.Currency, p.Amount.Amount))
	pdf.Ln(12)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("RECEIPT_%s.pdf", p.OrderID), nil
}

// formatAmount renders 180000 as "KRW 180,000".
func formatAmount(currency string, v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatInt(v, 10)
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(s[i])
	}
	out := b.String()
	if neg {
		out = "-" + out
	}
	return currency + " " + out
}
