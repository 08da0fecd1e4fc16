// Package report renders estimate responses as Excel workbooks for
// hand-off to clients and field teams.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"jcwest/internal/domain"
)

const (
	summarySheet   = "Summary"
	lineItemsSheet = "Line Items"
)

// WriteWorkbook renders an estimate into a two-sheet workbook: a
// per-trade summary and the full cascaded line items.
func WriteWorkbook(w io.Writer, projectName string, resp *domain.EstimateResponse) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	f.SetSheetName("Sheet1", summarySheet)
	if err := writeSummary(f, projectName, resp); err != nil {
		return err
	}
	if _, err := f.NewSheet(lineItemsSheet); err != nil {
		return fmt.Errorf("adding sheet: %w", err)
	}
	if err := writeLineItems(f, resp); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, projectName string, resp *domain.EstimateResponse) error {
	cells := []struct {
		cell  string
		value any
	}{
		{"A1", "Project"},
		{"B1", projectName},
		{"A2", "Policy"},
		{"B2", resp.PolicyID},
		{"A3", "Region"},
		{"B3", resp.Region},
		{"A5", "Trade"},
		{"B5", "Subtotal"},
	}
	for _, c := range cells {
		if err := f.SetCellValue(summarySheet, c.cell, c.value); err != nil {
			return fmt.Errorf("summary cell %s: %w", c.cell, err)
		}
	}

	row := 6
	for _, t := range resp.Trades {
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), t.Trade); err != nil {
			return err
		}
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), t.Subtotal); err != nil {
			return err
		}
		row++
	}
	row++
	if err := f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "Grand Total"); err != nil {
		return err
	}
	if err := f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), resp.GrandTotal); err != nil {
		return err
	}

	if len(resp.Warnings) > 0 {
		row += 2
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "Warnings"); err != nil {
			return err
		}
		for _, warning := range resp.Warnings {
			row++
			if err := f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), warning); err != nil {
				return err
			}
		}
	}
	return nil
}

var lineItemHeader = []string{
	"Trade", "Code", "Description", "Unit", "Qty", "Unit Cost",
	"Waste Pct", "Extended Base", "With Waste", "Overhead", "Profit",
	"Subtotal", "Tax", "Total", "Source",
}

func writeLineItems(f *excelize.File, resp *domain.EstimateResponse) error {
	if err := f.SetSheetRow(lineItemsSheet, "A1", &lineItemHeader); err != nil {
		return fmt.Errorf("line items header: %w", err)
	}
	for i, li := range resp.LineItems {
		row := []any{
			li.Trade, li.Code, li.Description, li.Unit, li.Qty, li.UnitCost,
			li.WastePct, li.ExtendedBase, li.ExtendedWithWaste,
			li.MarkupOverhead, li.MarkupProfit,
			li.SubtotalBeforeTax, li.Tax, li.Total, li.Source,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(lineItemsSheet, cell, &row); err != nil {
			return fmt.Errorf("line item row %d: %w", i+2, err)
		}
	}
	return nil
}
