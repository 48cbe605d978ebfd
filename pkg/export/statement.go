package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// StatementLine is a single invoice row on a statement of account.
type StatementLine struct {
	Description string
	Package     string
	Amount      float64
	Paid        float64
	Balance     float64
}

// Statement aggregates everything printed on a student statement.
type Statement struct {
	StudentName string
	Season      string
	PackageType string
	Lines       []StatementLine
	TotalAmount float64
	TotalDue    float64
}

// StatementPDF renders statements of account into PDF bytes.
type StatementPDF struct{}

// NewStatementPDF constructs the renderer.
func NewStatementPDF() *StatementPDF {
	return &StatementPDF{}
}

// Render produces an A4 statement document.
func (e *StatementPDF) Render(st Statement) ([]byte, error) {
	if st.StudentName == "" {
		return nil, fmt.Errorf("statement requires a student name")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "STATEMENT OF ACCOUNT", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Student: %s", st.StudentName), "", 1, "", false, 0, "")
	if st.Season != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Review Season: %s", st.Season), "", 1, "", false, 0, "")
	}
	if st.PackageType != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Package: %s", st.PackageType), "", 1, "", false, 0, "")
	}
	pdf.Ln(4)

	headers := []string{"Description", "Package", "Amount", "Paid", "Balance"}
	widths := []float64{70, 30, 30, 30, 30}
	pdf.SetFont("Arial", "B", 10)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, line := range st.Lines {
		pdf.CellFormat(widths[0], 7, line.Description, "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[1], 7, line.Package, "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[2], 7, fmt.Sprintf("%.2f", line.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, fmt.Sprintf("%.2f", line.Paid), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 7, fmt.Sprintf("%.2f", line.Balance), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(widths[0]+widths[1], 8, "Total", "1", 0, "", false, 0, "")
	pdf.CellFormat(widths[2], 8, fmt.Sprintf("%.2f", st.TotalAmount), "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 8, fmt.Sprintf("%.2f", st.TotalAmount-st.TotalDue), "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[4], 8, fmt.Sprintf("%.2f", st.TotalDue), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render statement pdf: %w", err)
	}
	return buf.Bytes(), nil
}
