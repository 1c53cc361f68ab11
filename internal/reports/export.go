package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	accounts "smartwaste-cloud/internal/accounts/domain"
	bins "smartwaste-cloud/internal/bins/domain"
)

// BuildBinStatusPDF renders the current bin snapshot as a PDF table.
func BuildBinStatusPDF(records []bins.Bin, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Bin Status Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.Format(bins.TimeLayout)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Bins: %d", len(records)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 6, "Bin", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Level (%)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(55, 6, "Address", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Last Emptied", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, record := range records {
		lastEmpty := record.LastEmpty
		if lastEmpty == "" {
			lastEmpty = "-"
		}
		pdf.CellFormat(30, 6, record.Label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%.0f", record.Level), "1", 0, "R", false, 0, "")
		pdf.CellFormat(55, 6, record.Address, "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 6, lastEmpty, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildTicketsXLSX renders the support ticket backlog as a workbook.
func BuildTicketsXLSX(requests []accounts.SupportRequest) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "tickets"
	f.SetSheetName("Sheet1", sheet)

	_ = f.SetCellValue(sheet, "A1", "CA Number")
	_ = f.SetCellValue(sheet, "B1", "Name")
	_ = f.SetCellValue(sheet, "C1", "Subject")
	for i, request := range requests {
		row := i + 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), request.CANumber)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), request.Name)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), request.Subject)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
