package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shophabesha/shophabesha/pkg/models"
	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{"Date", "Customer", "Amount", "Type", "Paid"}

// ExportFilename is the suggested download name, without extension.
func ExportFilename(now time.Time) string {
	return "sales-report-" + now.Format("2006-01-02")
}

func saleKind(r *models.SaleRecord) string {
	if r.IsCredit {
		return "Credit"
	}
	return "Cash"
}

// WriteCSV writes the filtered records as CSV, one row per sale.
func WriteCSV(w io.Writer, records []*models.SaleRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range records {
		if r == nil {
			continue
		}
		row := []string{
			r.Timestamp.Format("2006-01-02"),
			r.CustomerName,
			r.Amount.String(),
			saleKind(r),
			r.PaidAmount.String(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the filtered records as a single-sheet workbook with
// the same columns as the CSV export.
func WriteXLSX(w io.Writer, records []*models.SaleRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sales"
	f.SetSheetName("Sheet1", sheet)

	for col, name := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to name header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("failed to write header cell: %w", err)
		}
	}

	rowNum := 2
	for _, r := range records {
		if r == nil {
			continue
		}
		amount, _ := r.Amount.Float64()
		paid, _ := r.PaidAmount.Float64()
		values := []interface{}{
			r.Timestamp.Format("2006-01-02"),
			r.CustomerName,
			amount,
			saleKind(r),
			paid,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
			if err != nil {
				return fmt.Errorf("failed to name cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write cell: %w", err)
			}
		}
		rowNum++
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
