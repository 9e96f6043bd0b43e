package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	scheduleSheet = "Schedule"
	summarySheet  = "Summary"

	// Built-in number format "#,##0.00".
	amountNumFmt = 4
)

// WriteXLSX writes a workbook with a summary sheet and the full schedule.
func WriteXLSX(w io.Writer, s Schedule) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", scheduleSheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: amountNumFmt})
	if err != nil {
		return fmt.Errorf("failed to create amount style: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(scheduleSheet, "A1", &header); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(Columns))
	if err := f.SetCellStyle(scheduleSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	for i, row := range s.Result.Schedule {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{row.Month}
		for _, v := range rowValues(row) {
			values = append(values, v)
		}
		if err := f.SetSheetRow(scheduleSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write month %d: %w", row.Month, err)
		}
	}

	if n := len(s.Result.Schedule); n > 0 {
		last, _ := excelize.CoordinatesToCellName(len(Columns), n+1)
		if err := f.SetCellStyle(scheduleSheet, "B2", last, amountStyle); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(scheduleSheet, "A", "A", 8); err != nil {
		return err
	}
	if err := f.SetColWidth(scheduleSheet, "B", lastCol, 22); err != nil {
		return err
	}
	if err := f.SetPanes(scheduleSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	if err := writeSummarySheet(f, s, amountStyle); err != nil {
		return err
	}

	return f.Write(w)
}

func writeSummarySheet(f *excelize.File, s Schedule, amountStyle int) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	p := s.Parameters
	rows := [][]interface{}{
		{"Principal", p.Principal},
		{"Annual rate (%)", p.AnnualInterestRatePercent},
		{"Duration (years)", p.DurationYears},
		{"Monthly payment", s.Result.MonthlyPayment},
		{"Total interest cost", s.Result.TotalInterestCost},
		{"Total repaid", p.Principal + s.Result.TotalInterestCost},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &r); err != nil {
			return err
		}
	}
	for _, cell := range []string{"B1", "B4", "B5", "B6"} {
		if err := f.SetCellStyle(summarySheet, cell, cell, amountStyle); err != nil {
			return err
		}
	}
	return f.SetColWidth(summarySheet, "A", "B", 22)
}
