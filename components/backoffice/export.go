package backoffice

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// ExportFormat is a supported export encoding.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ParseExportFormat accepts "csv" and "pdf" in any case.
func ParseExportFormat(value string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(value))) {
	case ExportCSV:
		return ExportCSV, nil
	case ExportPDF:
		return ExportPDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, value)
}

// ContentType is the MIME type served for the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportCSV:
		return "text/csv"
	case ExportPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// ExportFilename builds "<table>-<yyyymmdd>.<ext>".
func ExportFilename(table string, format ExportFormat, at time.Time) string {
	return fmt.Sprintf("%s-%s.%s", table, at.UTC().Format("20060102"), format)
}

// ExportDocument is everything an Exporter needs to encode a table.
type ExportDocument struct {
	Title       string
	Columns     []ColumnDescriptor
	Rows        []Row
	GeneratedAt time.Time
}

// ExportInfo describes a completed export.
type ExportInfo struct {
	Table       string       `json:"table"`
	Format      ExportFormat `json:"format"`
	Filename    string       `json:"filename"`
	ContentType string       `json:"content_type"`
	Rows        int          `json:"rows"`
}

// Exporter encodes an ExportDocument. It is the exportRecords collaborator.
type Exporter interface {
	Export(w io.Writer, doc ExportDocument) error
}

// CSVExporter writes RFC 4180 CSV: a header of column labels, then one line per row.
// Values containing commas, quotes or newlines are quoted.
type CSVExporter struct{}

// Export writes doc as CSV.
func (CSVExporter) Export(w io.Writer, doc ExportDocument) error {
	writer := csv.NewWriter(w)
	header := make([]string, len(doc.Columns))
	for i, col := range doc.Columns {
		header[i] = col.Label
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("backoffice: write csv header: %w", err)
	}
	for _, row := range doc.Rows {
		if err := writer.Write(rowValues(row, doc.Columns)); err != nil {
			return fmt.Errorf("backoffice: write csv row %s: %w", row.ID, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("backoffice: flush csv: %w", err)
	}
	return nil
}

const (
	pdfPageWidth = 297.0
	pdfMargin    = 10.0
	pdfRowHeight = 6.0
)

// PDFExporter renders a landscape A4 table.
type PDFExporter struct{}

// Export writes doc as PDF.
func (PDFExporter) Export(w io.Writer, doc ExportDocument) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("recliq backoffice", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	generated := fmt.Sprintf("Generated %s, %d records", doc.GeneratedAt.UTC().Format(DateLayout), len(doc.Rows))
	pdf.CellFormat(0, 6, generated, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if len(doc.Columns) == 0 {
		return pdf.Output(w)
	}
	width := (pdfPageWidth - 2*pdfMargin) / float64(len(doc.Columns))

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(226, 232, 240)
	for _, col := range doc.Columns {
		pdf.CellFormat(width, pdfRowHeight+1, fitText(pdf, tr, col.Label, width), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, row := range doc.Rows {
		for _, value := range rowValues(row, doc.Columns) {
			pdf.CellFormat(width, pdfRowHeight, fitText(pdf, tr, value, width), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("backoffice: render pdf: %w", err)
	}
	return nil
}

// fitText translates s for the PDF font, trimming runes off the UTF-8 source
// until the translated text fits in a cell of the given width.
func fitText(pdf *fpdf.Fpdf, tr func(string) string, s string, width float64) string {
	limit := width - 2
	if out := tr(s); pdf.GetStringWidth(out) <= limit {
		return out
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(tr(string(runes))+"...") > limit {
		runes = runes[:len(runes)-1]
	}
	return tr(string(runes)) + "..."
}

func rowValues(row Row, columns []ColumnDescriptor) []string {
	values := make([]string, len(columns))
	for i, col := range columns {
		if cell, ok := row.Cell(col.Key); ok {
			values[i] = cell.Value
		}
	}
	return values
}

func exporterFor(format ExportFormat, exporters map[ExportFormat]Exporter) (Exporter, error) {
	if exporter, ok := exporters[format]; ok && exporter != nil {
		return exporter, nil
	}
	switch format {
	case ExportCSV:
		return CSVExporter{}, nil
	case ExportPDF:
		return PDFExporter{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}
