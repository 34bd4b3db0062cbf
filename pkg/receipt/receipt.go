// Package receipt renders printable tuition receipts.
package receipt

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"math"
	"strings"
	"time"

	"github.com/divan/num2words"
	qrcode "github.com/skip2/go-qrcode"
)

// Data is everything printed on a receipt.
type Data struct {
	Number         string
	ProgramName    string
	IssuedAt       time.Time
	StudentName    string
	RegistrationID string
	MonthYear      string // YYYY-MM
	Amount         float64
	Currency       string
	Paid           bool
	PaymentDate    *time.Time
	PaymentMethod  string
	Notes          string
}

// Number builds the receipt number for a payment: RCPT-<YYYYMM>-<first 8 of id>.
func Number(paymentID, monthYear string) string {
	id := strings.ReplaceAll(paymentID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("RCPT-%s-%s", strings.ReplaceAll(monthYear, "-", ""), strings.ToUpper(id))
}

// AmountInWords spells an amount as "<whole> <currency> and NN/100".
func AmountInWords(amount float64, currency string) string {
	whole := int(amount)
	cents := int(math.Round((amount - float64(whole)) * 100))
	if cents == 100 {
		whole++
		cents = 0
	}
	words := num2words.Convert(whole)
	if words != "" {
		words = strings.ToUpper(words[:1]) + words[1:]
	}
	return fmt.Sprintf("%s %s and %02d/100", words, currency, cents)
}

// MonthLabel turns "2025-10" into "October 2025"; bad input is returned as is.
func MonthLabel(monthYear string) string {
	t, err := time.Parse("2006-01", monthYear)
	if err != nil {
		return monthYear
	}
	return t.Format("January 2006")
}

// Filename is the download name of the receipt.
func Filename(d *Data) string {
	return d.Number + ".html"
}

type view struct {
	*Data
	Month       string
	AmountText  string
	AmountWords string
	Status      string
	PaidOn      string
	QRCode      template.URL
	Issued      string
}

// Render produces the standalone HTML document with an embedded QR code of
// the receipt number.
func Render(d *Data) ([]byte, error) {
	png, err := qrcode.Encode(d.Number, qrcode.Medium, 160)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	v := view{
		Data:        d,
		Month:       MonthLabel(d.MonthYear),
		AmountText:  fmt.Sprintf("%.2f %s", d.Amount, d.Currency),
		AmountWords: AmountInWords(d.Amount, d.Currency),
		Status:      "UNPAID",
		QRCode:      template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)),
		Issued:      d.IssuedAt.Format("January 2, 2006 15:04 MST"),
	}
	if d.Paid {
		v.Status = "PAID"
	}
	if d.PaymentDate != nil {
		v.PaidOn = d.PaymentDate.Format("January 2, 2006")
	}

	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, v); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

var receiptTmpl = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Receipt {{.Number}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; color: #222; max-width: 720px; margin: 32px auto; }
header { display: flex; justify-content: space-between; align-items: center; border-bottom: 2px solid #1e3a8a; padding-bottom: 12px; }
h1 { margin: 0; color: #1e3a8a; }
table { width: 100%; border-collapse: collapse; margin-top: 24px; }
th { text-align: left; width: 40%; color: #555; font-weight: normal; }
td, th { padding: 8px 4px; border-bottom: 1px solid #eee; }
.status { font-weight: bold; }
.paid { color: #15803d; }
.unpaid { color: #b91c1c; }
footer { margin-top: 32px; font-size: 12px; color: #777; text-align: center; }
@media print { body { margin: 0; } }
</style>
</head>
<body>
<header>
  <div>
    <h1>{{.ProgramName}}</h1>
    <div>Tuition Receipt</div>
  </div>
  <img src="{{.QRCode}}" alt="{{.Number}}" width="120" height="120">
</header>
<table>
  <tr><th>Receipt number</th><td>{{.Number}}</td></tr>
  <tr><th>Issued</th><td>{{.Issued}}</td></tr>
  <tr><th>Student</th><td>{{.StudentName}}</td></tr>
  <tr><th>Registration ID</th><td>{{.RegistrationID}}</td></tr>
  <tr><th>Billing month</th><td>{{.Month}}</td></tr>
  <tr><th>Amount</th><td>{{.AmountText}}</td></tr>
  <tr><th>Amount in words</th><td>{{.AmountWords}}</td></tr>
  <tr><th>Status</th><td class="status {{if .Paid}}paid{{else}}unpaid{{end}}">{{.Status}}</td></tr>
  {{- if .PaidOn}}
  <tr><th>Payment date</th><td>{{.PaidOn}}</td></tr>
  {{- end}}
  {{- if .PaymentMethod}}
  <tr><th>Payment method</th><td>{{.PaymentMethod}}</td></tr>
  {{- end}}
  {{- if .Notes}}
  <tr><th>Notes</th><td>{{.Notes}}</td></tr>
  {{- end}}
</table>
<footer>
  Thank you for being part of {{.ProgramName}}. Keep this receipt for your records.
</footer>
</body>
</html>
`))
