package backoffice

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportFixture() ExportDocument {
	columns := []ColumnDescriptor{{Key: "id", Label: "ID"}, {Key: "note", Label: "Note"}}
	return ExportDocument{
		Title:   "Notes",
		Columns: columns,
		Rows: []Row{
			{ID: "1", Cells: []Cell{{Key: "id", Value: "1"}, {Key: "note", Value: "plain"}}},
			{ID: "2", Cells: []Cell{{Key: "id", Value: "2"}, {Key: "note", Value: `Lagos, "Ikeja"`}}},
			{ID: "3", Cells: []Cell{{Key: "id", Value: "3"}, {Key: "note", Value: "line one\nline two"}}},
		},
		GeneratedAt: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestCSVExporterQuotesSpecialValues(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSVExporter{}.Export(&buf, exportFixture()))

	want := "ID,Note\n1,plain\n2,\"Lagos, \"\"Ikeja\"\"\"\n3,\"line one\nline two\"\n"
	assert.Equal(t, want, buf.String())
}

func TestCSVExporterWritesHeaderForEmptyDocument(t *testing.T) {
	doc := exportFixture()
	doc.Rows = nil
	var buf bytes.Buffer
	require.NoError(t, CSVExporter{}.Export(&buf, doc))
	assert.Equal(t, "ID,Note\n", buf.String())
}

func TestPDFExporterProducesDocument(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDFExporter{}.Export(&buf, exportFixture()))
	assert.True(t, strings.HasPrefix(buf.String(), "%PDF-"))
}

func TestFitTextTruncatesBeforeTranslating(t *testing.T) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 8)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	source := strings.Repeat("Adébáyò Àjàyí ", 12)

	got := fitText(pdf, tr, source, 40)

	require.True(t, strings.HasSuffix(got, "..."))
	assert.NotContains(t, got, "\uFFFD")
	assert.Contains(t, got, "\xe9", "cp1252 é should survive truncation")
	assert.True(t, strings.HasPrefix(tr(source), strings.TrimSuffix(got, "...")))
	assert.LessOrEqual(t, pdf.GetStringWidth(got), 38.0)
	assert.Equal(t, tr("Adébáyò"), fitText(pdf, tr, "Adébáyò", 40))
}

func TestParseExportFormat(t *testing.T) {
	format, err := ParseExportFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, ExportPDF, format)

	_, err = ParseExportFormat("xlsx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.True(t, IsValidation(err))
}

func TestExportFilename(t *testing.T) {
	at := time.Date(2024, 12, 9, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "fraud_flags-20241209.pdf", ExportFilename(TableFraudFlags, ExportPDF, at))
	assert.Equal(t, "application/pdf", ExportPDF.ContentType())
}
