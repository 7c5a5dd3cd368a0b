package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jung-kurt/gofpdf"
)

// SavePDF renders the session report into a PDF document. When the session
// carries a capture digest, a QR code of it is placed at the end so the
// printed report stays traceable to the source bytes.
func SavePDF(sess Session, out string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Telemetry Verification Report", false)
	pdf.SetAuthor("radgatectl", false)
	pdf.SetCreator("radgatectl", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	addPDFTitle(pdf, "Telemetry Verification Report")
	addSummarySection(pdf, sess)
	addTypeMatrixSection(pdf, sess.Types)
	addFindingsSection(pdf, sess.Findings)
	addDigestSection(pdf, sess)

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

func addPDFTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

func addSummarySection(pdf *gofpdf.Fpdf, sess Session) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	items := []struct {
		label string
		value string
	}{
		{label: "Source", value: emptyFallback(sess.Source, "-")},
		{label: "Generated", value: sess.GeneratedAt.Format("2006-01-02 15:04:05 UTC")},
		{label: "Frames", value: humanize.Comma(int64(sess.Frames))},
		{label: "Bytes", value: humanize.IBytes(sess.Bytes)},
		{label: "Stream / Datagram", value: fmt.Sprintf("%d / %d", sess.Stream, sess.Datagram)},
		{label: "Decode Errors", value: humanize.Comma(int64(sess.Errors))},
		{label: "Frames w/ Trailing", value: humanize.Comma(int64(sess.Trailing))},
	}
	for _, item := range items {
		pdf.CellFormat(50, 6, item.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, item.value, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func addTypeMatrixSection(pdf *gofpdf.Fpdf, rows []TypeRow) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Message Type Matrix")
	pdf.Ln(9)

	headers := []string{"Message ID", "Name", "Count", "Bytes", "Avg Interval", "Seq Gaps"}
	widths := []float64{28, 58, 22, 26, 28, 18}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	lineHeight := 5.0
	for _, row := range rows {
		values := []string{
			row.MessageID,
			row.MessageName,
			strconv.FormatUint(row.Count, 10),
			humanize.IBytes(row.Bytes),
			fmt.Sprintf("%.1f ms", row.AvgIntervalMs),
			strconv.FormatUint(row.SeqGaps, 10),
		}
		renderTableRow(pdf, widths, values, lineHeight)
	}
	pdf.Ln(4)
}

func addFindingsSection(pdf *gofpdf.Fpdf, findings []Finding) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Findings")
	pdf.Ln(9)

	if len(findings) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, "No rejected frames recorded.", "", "L", false)
		pdf.Ln(2)
		return
	}

	for i, f := range findings {
		pdf.SetFont("Helvetica", "B", 10)
		header := fmt.Sprintf("%d. %s (%s, %d bytes)", i+1, f.Kind, f.Transport, f.SizeBytes)
		pdf.MultiCell(0, 5, header, "", "L", false)

		if msg := strings.TrimSpace(f.Reason); msg != "" {
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, msg, "", "L", false)
		}

		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 4, "At: "+f.Ts.Format("15:04:05.000"), "", "L", false)
		pdf.Ln(2)
	}
}

func addDigestSection(pdf *gofpdf.Fpdf, sess Session) {
	if strings.TrimSpace(sess.Digest) == "" {
		return
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Capture Digest")
	pdf.Ln(9)

	pdf.SetFont("Courier", "", 8)
	pdf.MultiCell(0, 4, "sha256: "+sess.Digest, "", "L", false)
	pdf.Ln(2)

	png, err := DigestQR(sess.Digest, 256)
	if err != nil {
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 4, "QR unavailable: "+err.Error(), "", "L", false)
		return
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("capture-digest-qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("capture-digest-qr", pdf.GetX(), pdf.GetY(), 30, 30, false, opts, 0, "")
	pdf.Ln(34)
}

func renderTableRow(pdf *gofpdf.Fpdf, widths []float64, values []string, lineHeight float64) {
	xStart := pdf.GetX()
	yStart := pdf.GetY()
	maxLines := 1
	splitCols := make([][]string, len(values))
	for i, val := range values {
		text := strings.TrimSpace(val)
		if text == "" {
			text = "-"
		}
		lines := pdf.SplitText(text, widths[i]-2)
		if len(lines) == 0 {
			lines = []string{""}
		}
		splitCols[i] = lines
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	rowHeight := float64(maxLines) * lineHeight
	x := xStart
	for i, lines := range splitCols {
		pdf.SetXY(x, yStart)
		cellText := strings.Join(lines, "\n")
		pdf.MultiCell(widths[i], lineHeight, cellText, "1", "L", false)
		x += widths[i]
	}
	pdf.SetXY(xStart, yStart+rowHeight)
}

func emptyFallback(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}
