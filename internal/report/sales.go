// Package report renders sales reports as spreadsheets.
package report

import (
	"fmt"
	"io"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/analytics"
	"github.com/xuri/excelize/v2"
)

const (
	SalesSheet  = "Monthly Sales Report"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	Filename    = "sales_report.xlsx"
)

var salesHeader = []any{"Category", "Revenue"}

// WriteSalesReport writes a workbook with a single sheet holding one row per
// category. The uncategorized group gets an empty category cell.
func WriteSalesReport(w io.Writer, rows []analytics.CategoryRevenue) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SalesSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(SalesSheet, "A1", &salesHeader); err != nil {
		return err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		category := ""
		if r.Category != nil {
			category = *r.Category
		}
		revenue, _ := r.Revenue.Float64()
		if err := f.SetSheetRow(SalesSheet, cell, &[]any{category, revenue}); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
