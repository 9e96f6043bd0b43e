package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PDFOptions configures the PDF layout.
type PDFOptions struct {
	Title          string
	FontFamily     string
	FontSize       float64
	HeaderColor    [3]int
	AlternateColor [3]int
	Margin         float64
	Now            func() time.Time
}

func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		Title:          "Loan amortization schedule",
		FontFamily:     "Arial",
		FontSize:       8,
		HeaderColor:    [3]int{68, 114, 196},
		AlternateColor: [3]int{242, 242, 242},
		Margin:         15,
		Now:            time.Now,
	}
}

// WritePDF renders the summary and the schedule table on A4 pages,
// repeating the table header on every page.
func WritePDF(w io.Writer, s Schedule, opts PDFOptions) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(opts.Margin, opts.Margin, opts.Margin)
	pdf.SetAutoPageBreak(false, opts.Margin)
	pdf.SetTitle(opts.Title, true)
	pdf.SetCreator("loansim", true)

	// Core fonts are cp1252; the translator maps the euro sign.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageWidth, pageHeight := pdf.GetPageSize()
	usable := pageWidth - 2*opts.Margin
	widths := []float64{usable * 0.10}
	for range Columns[1:] {
		widths = append(widths, usable*0.18)
	}

	pdf.AddPage()
	pdf.SetFont(opts.FontFamily, "B", 16)
	pdf.CellFormat(0, 10, tr(opts.Title), "", 1, "C", false, 0, "")

	pdf.SetFont(opts.FontFamily, "", 9)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 6, "Generated: "+opts.Now().Format("2006-01-02 15:04"), "", 1, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(2)

	p := s.Parameters
	summary := [][2]string{
		{"Principal", cents(p.Principal) + " €"},
		{"Annual rate", fmt.Sprintf("%.2f %%", p.AnnualInterestRatePercent)},
		{"Duration", fmt.Sprintf("%d years (%d months)", p.DurationYears, p.TotalMonths())},
		{"Monthly payment", cents(s.Result.MonthlyPayment) + " €"},
		{"Total interest cost", cents(s.Result.TotalInterestCost) + " €"},
		{"Total repaid", cents(p.Principal+s.Result.TotalInterestCost) + " €"},
	}
	pdf.SetFont(opts.FontFamily, "", 10)
	for _, kv := range summary {
		pdf.SetFont(opts.FontFamily, "B", 10)
		pdf.CellFormat(50, 6, tr(kv[0]), "", 0, "L", false, 0, "")
		pdf.SetFont(opts.FontFamily, "", 10)
		pdf.CellFormat(0, 6, tr(kv[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	header := func() {
		pdf.SetFont(opts.FontFamily, "B", opts.FontSize)
		pdf.SetFillColor(opts.HeaderColor[0], opts.HeaderColor[1], opts.HeaderColor[2])
		pdf.SetTextColor(255, 255, 255)
		for i, label := range Columns {
			pdf.CellFormat(widths[i], 7, tr(label), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(opts.FontFamily, "", opts.FontSize)
		pdf.SetTextColor(0, 0, 0)
	}
	header()

	const rowHeight = 5.5
	for i, row := range s.Result.Schedule {
		if pdf.GetY()+rowHeight > pageHeight-opts.Margin {
			pdf.AddPage()
			header()
		}
		if i%2 == 1 {
			pdf.SetFillColor(opts.AlternateColor[0], opts.AlternateColor[1], opts.AlternateColor[2])
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.CellFormat(widths[0], rowHeight, fmt.Sprint(row.Month), "1", 0, "C", true, 0, "")
		for j, v := range rowValues(row) {
			pdf.CellFormat(widths[j+1], rowHeight, cents(v), "1", 0, "R", true, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return pdf.Output(w)
}
