package values

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"perfeval/internal/domain/stats"
)

// RenderSummaryPDF lays out the cross-value summary as a single table.
func RenderSummaryPDF(summary []stats.ValueSummary, window stats.Window, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Company values summary")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	period := "All evaluations"
	if window.Active() {
		period = fmt.Sprintf("Evaluations from %s to %s", window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"))
	}
	pdf.Cell(0, 7, period)
	pdf.Ln(6)
	pdf.Cell(0, 7, "Generated "+generatedAt.UTC().Format(time.RFC3339))
	pdf.Ln(10)

	widths := []float64{70, 25, 30, 30, 30}
	headers := []string{"Value", "Results", "Average", "High (>=4)", "Low (<3)"}
	pdf.SetFont("Helvetica", "B", 11)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	for _, row := range summary {
		avg := "-"
		if row.AvgScore != nil {
			avg = fmt.Sprintf("%.2f", *row.AvgScore)
		}
		pdf.CellFormat(widths[0], 8, tr(row.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 8, fmt.Sprintf("%d", row.Count), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 8, avg, "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 8, fmt.Sprintf("%d", row.HighPerformers), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 8, fmt.Sprintf("%d", row.LowPerformers), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	if len(summary) == 0 {
		pdf.Cell(0, 8, "No active company values.")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
