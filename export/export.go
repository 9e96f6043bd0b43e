// Package export writes amortization schedules to files for download.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"loan-simulator/domain"
	"loan-simulator/metrics"
)

// ErrUnknownFormat is returned for a format name that has no exporter.
var ErrUnknownFormat = errors.New("unknown export format")

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
	FormatJSON Format = "json"
)

// ParseFormat accepts a format name, case-insensitively.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatCSV, FormatXLSX, FormatPDF, FormatJSON:
		return f, nil
	case "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/json"
}

func (f Format) Extension() string {
	return "." + string(f)
}

// Schedule is what gets exported: the loan parameters and the engine output.
type Schedule struct {
	Parameters domain.LoanParameters     `json:"parameters"`
	Result     domain.AmortizationResult `json:"result"`
}

// Filename suggests a download name such as "schedule-250000-1.50-20y.pdf".
func (s Schedule) Filename(f Format) string {
	return fmt.Sprintf("schedule-%.0f-%.2f-%dy%s",
		s.Parameters.Principal, s.Parameters.AnnualInterestRatePercent, s.Parameters.DurationYears, f.Extension())
}

// Columns are the schedule column headers, in export order.
var Columns = []string{
	"Month",
	"Interest",
	"Principal",
	"Remaining principal",
	"Cumulative principal",
	"Cumulative interest",
}

func rowValues(r domain.ScheduleRow) []float64 {
	return []float64{
		r.InterestForMonth,
		r.PrincipalForMonth,
		r.RemainingPrincipal,
		r.CumulativePrincipalPaid,
		r.CumulativeInterestPaid,
	}
}

// Write encodes s in format f.
func Write(w io.Writer, f Format, s Schedule) error {
	var err error
	switch f {
	case FormatCSV:
		err = WriteCSV(w, s)
	case FormatXLSX:
		err = WriteXLSX(w, s)
	case FormatPDF:
		err = WritePDF(w, s, DefaultPDFOptions())
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(s)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err == nil {
		metrics.Exports.WithLabelValues(string(f)).Inc()
	}
	return err
}

// cents renders an amount with exactly two decimals.
func cents(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
