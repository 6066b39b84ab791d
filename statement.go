package nonabank

import (
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// writeStatementPDF renders the account's details and full transaction
// table. Amounts are labelled GHS rather than GH₵ because the core PDF
// fonts are cp1252 and cannot draw the cedi sign.
func writeStatementPDF(w io.Writer, bankName string, acct *Account) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(bankName+" account statement", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, bankName+" Account Statement", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Account holder: "+acct.Holder(), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Account number: "+acct.Number(), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Account type: "+acct.Type(), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Balance: "+pdfCurrency(acct.Balance()), "", 1, "L", false, 0, "")
	if acct.Kind() == FixedDeposit {
		pdf.CellFormat(0, 6, "Maturity date: "+acct.MaturityDate().Format("2006-01-02"), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 6, "Generated: "+time.Now().Format("02-01-2006 15:04:05"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(45, 7, "Date", "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 7, "Description", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, "Amount", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, "Balance", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, t := range acct.TransactionHistory() {
		pdf.CellFormat(45, 7, t.Timestamp().Format("02-01-2006 15:04:05"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, t.Description(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, pdfCurrency(t.Amount()), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, pdfCurrency(t.BalanceAfter()), "1", 1, "R", false, 0, "")
	}

	return pdf.Output(w)
}

func pdfCurrency(v decimal.Decimal) string {
	return "GHS " + v.StringFixed(2)
}
