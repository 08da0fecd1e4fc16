package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"jcwest/internal/calibration"
	"jcwest/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// estimateColumns is the header row for estimate line-item exports.
var estimateColumns = []string{
	"Trade",
	"Code",
	"Description",
	"Unit",
	"Qty",
	"Unit Cost",
	"Waste Pct",
	"Extended Base",
	"Extended With Waste",
	"Overhead",
	"Profit",
	"Subtotal Before Tax",
	"Tax",
	"Total",
	"Source",
}

// vendorColumns is the canonical vendor-row header.
var vendorColumns = []string{
	"vendor",
	"trade",
	"item",
	"description",
	"unit",
	"qty",
	"unit_cost",
	"line_total",
	"quoted_total",
	"notes",
}

// compareColumns is the header row for estimate-versus-vendor reports.
var compareColumns = []string{
	"Trade",
	"Item",
	"Estimate Total",
	"Vendor Total",
	"Delta",
	"Delta Pct",
	"Multiplier",
}

// Writer wraps csv.Writer for exporting pipeline documents as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteEstimate writes the line items of an estimate response, header
// included.
func (w *Writer) WriteEstimate(resp *domain.EstimateResponse) error {
	if err := w.csv.Write(estimateColumns); err != nil {
		return err
	}
	for i := range resp.LineItems {
		if err := w.csv.Write(estimateLineToRow(&resp.LineItems[i])); err != nil {
			return err
		}
	}
	return nil
}

// WriteVendorRows writes canonical vendor rows, header included.
func (w *Writer) WriteVendorRows(rows []domain.VendorRow) error {
	if err := w.csv.Write(vendorColumns); err != nil {
		return err
	}
	for i := range rows {
		if err := w.csv.Write(vendorRowToRecord(&rows[i])); err != nil {
			return err
		}
	}
	return nil
}

// WriteCompare writes an estimate-versus-vendor report, header included,
// with a trailing totals row.
func (w *Writer) WriteCompare(report *calibration.CompareReport) error {
	if err := w.csv.Write(compareColumns); err != nil {
		return err
	}
	for _, row := range report.Rows {
		rec := []string{
			row.Trade,
			row.Item,
			formatMoney(row.EstimateTotal),
			formatMoney(row.VendorTotal),
			formatMoney(row.Delta),
			formatMoney(row.DeltaPct),
			"",
		}
		if row.Multiplier != 0 {
			rec[6] = strconv.FormatFloat(row.Multiplier, 'f', 3, 64)
		}
		if err := w.csv.Write(rec); err != nil {
			return err
		}
	}
	return w.csv.Write([]string{
		"TOTAL", "",
		formatMoney(report.EstimateTotal),
		formatMoney(report.VendorTotal),
		formatMoney(report.Delta),
		"", "",
	})
}

func estimateLineToRow(li *domain.PricedLineItem) []string {
	return []string{
		li.Trade,
		li.Code,
		li.Description,
		li.Unit,
		formatQty(li.Qty),
		strconv.FormatFloat(li.UnitCost, 'f', 4, 64),
		strconv.FormatFloat(li.WastePct, 'f', 4, 64),
		formatMoney(li.ExtendedBase),
		formatMoney(li.ExtendedWithWaste),
		formatMoney(li.MarkupOverhead),
		formatMoney(li.MarkupProfit),
		formatMoney(li.SubtotalBeforeTax),
		formatMoney(li.Tax),
		formatMoney(li.Total),
		li.Source,
	}
}

func vendorRowToRecord(r *domain.VendorRow) []string {
	return []string{
		r.Vendor,
		r.Trade,
		r.Item,
		r.Description,
		r.Unit,
		formatQty(r.Qty),
		formatMoney(r.UnitCost),
		formatMoney(r.LineTotal),
		formatMoney(r.QuotedTotal),
		r.Notes,
	}
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a project or report name for use in
// Content-Disposition. Replaces non-alphanumeric chars (except - _)
// with _, collapses consecutive underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition.
// Format: {sanitized_name}_{YYYY-MM-DD}.csv
func BuildFilename(name string) string {
	sanitized := SanitizeFilename(name)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.csv", sanitized, date)
}
