package transaction

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	exportSheet       = "Transactions"
	ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeader = []interface{}{"ID", "Student", "Course", "Amount", "Payment method", "Status", "Created at"}

// WriteWorkbook renders the rows as a single-sheet XLSX document.
func WriteWorkbook(w io.Writer, rows []ExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		amount, _ := row.Amount.Float64()
		values := []interface{}{
			row.ID,
			row.StudentEmail,
			row.CourseTitle,
			amount,
			row.PaymentMethod,
			row.Status,
			row.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row.ID, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
