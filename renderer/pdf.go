package renderer

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

// PDFRenderer draws a single landscape A4 page.
type PDFRenderer struct {
	Issuer string
}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{Issuer: "LMS"}
}

func (r *PDFRenderer) Render(ctx context.Context, data CertificateData) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(data.StudentName) == "" || strings.TrimSpace(data.CourseName) == "" {
		return nil, fmt.Errorf("render certificate: student and course name are required")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Certificate of Completion", true)
	pdf.SetAuthor(r.Issuer, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	w, h := pdf.GetPageSize()
	pdf.SetLineWidth(1.5)
	pdf.SetDrawColor(30, 64, 120)
	pdf.Rect(10, 10, w-20, h-20, "D")

	pdf.SetY(40)
	pdf.SetFont("Helvetica", "B", 30)
	pdf.CellFormat(0, 16, tr("Certificate of Completion"), "", 1, "C", false, 0, "")

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 10, tr("This certifies that"), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 14, tr(data.StudentName), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 10, tr("has successfully completed the course"), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 20)
	pdf.MultiCell(0, 12, tr(data.CourseName), "", "C", false)

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, tr("Completed on "+data.CompletionDate.Format("January 2, 2006")), "", 1, "C", false, 0, "")
	if data.CertificateNumber != "" {
		pdf.CellFormat(0, 8, tr("Certificate No. "+data.CertificateNumber), "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return buf.Bytes(), nil
}
