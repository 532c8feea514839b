package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets into a printable PDF. When the dataset names
// a GroupBy header the document is split into one section per group value,
// which turns a seating chart into a per-room handout for invigilators.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	if data.GroupBy != "" && containsHeader(data.Headers, data.GroupBy) && len(data.Headers) > 1 {
		e.writeSections(pdf, data)
	} else {
		e.writeTable(pdf, data.Headers, data.Rows)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// writeSections emits one heading plus table per group value, in first-seen
// order, with the grouping column dropped from the table body.
func (e *PDFExporter) writeSections(pdf *gofpdf.Fpdf, data Dataset) {
	headers := make([]string, 0, len(data.Headers)-1)
	for _, h := range data.Headers {
		if h != data.GroupBy {
			headers = append(headers, h)
		}
	}

	order := make([]string, 0)
	sections := make(map[string][]map[string]string)
	for _, row := range data.Rows {
		key := row[data.GroupBy]
		if _, seen := sections[key]; !seen {
			order = append(order, key)
		}
		sections[key] = append(sections[key], row)
	}

	for i, key := range order {
		if i > 0 {
			pdf.Ln(6)
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, fmt.Sprintf("%s %s", data.GroupBy, key), "", 1, "L", false, 0, "")
		e.writeTable(pdf, headers, sections[key])
	}
}

func (e *PDFExporter) writeTable(pdf *gofpdf.Fpdf, headers []string, rows []map[string]string) {
	colWidth := 190.0 / float64(len(headers))

	pdf.SetFont("Arial", "B", 10)
	for _, header := range headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		for _, header := range headers {
			pdf.CellFormat(colWidth, 7, row[header], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func containsHeader(headers []string, name string) bool {
	for _, h := range headers {
		if h == name {
			return true
		}
	}
	return false
}
