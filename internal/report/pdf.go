package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFWriter emits a one-column US Letter PDF: title, URL, score line and the
// full issue list.
type PDFWriter struct{}

func (PDFWriter) Write(out io.Writer, a Analysis) error {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	// Core fonts are cp1252; translate UTF-8 so bullets and dashes survive.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, tr("GEO Analyzer Report"), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	for i, line := range pdfLines(a) {
		if i == 2 {
			pdf.Ln(6)
		}
		pdf.MultiCell(0, 6, tr(line), "", "L", false)
	}
	if strings.TrimSpace(a.Advice) != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, tr("Advice"), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 5, tr(strings.TrimSpace(a.Advice)), "", "L", false)
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	return pdf.Output(out)
}

// pdfLines returns the body lines under the title: URL, score, then one line
// per issue.
func pdfLines(a Analysis) []string {
	r := a.Result
	lines := []string{
		"URL: " + a.URL,
		fmt.Sprintf("Score: %s/100 (%s) – %s", FormatScore(r.FinalScore), r.Grade, r.Priority),
	}
	for _, is := range r.Issues {
		lines = append(lines, fmt.Sprintf("• %s [%s]", is.Description, is.Effort))
	}
	return lines
}
