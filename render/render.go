package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"loan-simulator/domain"
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(60).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table with headers and rows. The first
// column is left-aligned, the others right-aligned. A row holding the single
// cell "---" draws a separator.
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			widths[i] = max(widths[i], lipgloss.Width(h))
		}
		for _, row := range t.Rows {
			for i, cell := range row {
				if i < numCols {
					widths[i] = max(widths[i], lipgloss.Width(cell))
				}
			}
		}
	}

	line := func(left, mid, right string) string {
		var b strings.Builder
		b.WriteString(left)
		for i, w := range widths {
			b.WriteString(strings.Repeat("─", w+2))
			if i < numCols-1 {
				b.WriteString(mid)
			}
		}
		b.WriteString(right)
		return dimStyle.Render(b.String()) + "\n"
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}

	b.WriteString(line("╭", "┬", "╮"))

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(fmt.Sprintf(" %-*s ", widths[i], h)))
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
		b.WriteString(line("├", "┼", "┤"))
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			b.WriteString(line("├", "┼", "┤"))
			continue
		}

		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			var padded string
			if i == 0 {
				padded = fmt.Sprintf(" %-*s ", widths[i], cell)
			} else {
				padded = fmt.Sprintf(" %*s ", widths[i], cell)
			}
			b.WriteString(valueStyle.Render(padded))
			b.WriteString(dimStyle.Render("│"))
		}
		b.WriteString("\n")
	}

	b.WriteString(line("╰", "┴", "╯"))
	return b.String()
}

// MetricCard renders a small card with a label and a value.
func MetricCard(label, value string, outerWidth int) string {
	contentWidth := max(outerWidth-2, 10)

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(contentWidth).
		Padding(0, 1)

	return card.Render(mutedStyle.Render(label) + "\n" + valueStyle.Bold(true).Render(value))
}

// RenderSummary renders the three headline figures of a loan side by side.
func RenderSummary(p domain.LoanParameters, r domain.AmortizationResult, symbol string, width int) string {
	cardWidth := max(width/3, 20)
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		MetricCard("Monthly payment", FormatCurrency(r.MonthlyPayment, symbol), cardWidth),
		MetricCard("Total interest cost", FormatCurrency(r.TotalInterestCost, symbol), cardWidth),
		MetricCard("Total repaid", FormatCurrency(p.Principal+r.TotalInterestCost, symbol), cardWidth),
	)

	params := mutedStyle.Render(fmt.Sprintf("%s at %s over %s",
		FormatCurrency(p.Principal, symbol),
		FormatPercent(p.AnnualInterestRatePercent),
		FormatDuration(p.DurationYears)))

	return params + "\n" + cards
}

// RenderSchedule renders the amortization table. With step > 1 only every
// step-th month is shown; the last month is always shown.
func RenderSchedule(rows []domain.ScheduleRow, symbol string, step int) string {
	if step < 1 {
		step = 1
	}
	t := Table{
		Title: "Amortization schedule",
		Headers: []string{
			"Month", "Interest", "Principal", "Remaining", "Cum. principal", "Cum. interest",
		},
	}
	for i, r := range rows {
		if (i+1)%step != 0 && i != len(rows)-1 && i != 0 {
			continue
		}
		t.Rows = append(t.Rows, []string{
			fmt.Sprint(r.Month),
			FormatCurrency(r.InterestForMonth, symbol),
			FormatCurrency(r.PrincipalForMonth, symbol),
			FormatCurrency(r.RemainingPrincipal, symbol),
			FormatCurrency(r.CumulativePrincipalPaid, symbol),
			FormatCurrency(r.CumulativeInterestPaid, symbol),
		})
	}
	return RenderTable(t)
}

// RenderComparison renders a duration comparison, marking the cheapest
// option and the one with the lowest payment.
func RenderComparison(c domain.CompareResult, symbol string) string {
	t := Table{
		Title:   "Durations for " + FormatCurrency(c.Principal, symbol),
		Headers: []string{"Duration", "Rate", "Monthly payment", "Total interest", "Total repaid", ""},
	}
	for _, o := range c.Options {
		var marks []string
		if o.CheapestTotal {
			marks = append(marks, "cheapest")
		}
		if o.LowestPayment {
			marks = append(marks, "lowest payment")
		}
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d years", o.DurationYears),
			FormatPercent(o.AnnualRate),
			FormatCurrency(o.MonthlyPayment, symbol),
			FormatCurrency(o.TotalInterestCost, symbol),
			FormatCurrency(o.TotalRepaid, symbol),
			strings.Join(marks, ", "),
		})
	}
	return RenderTable(t)
}

// RenderRateBoard renders scraped rates per source, then source errors.
func RenderRateBoard(board domain.RateBoard) string {
	t := Table{
		Title:   "Published mortgage rates",
		Headers: []string{"Source", "Duration", "Rate"},
	}
	for _, source := range sortedKeys(board.Quotes) {
		for _, q := range board.Quotes[source] {
			t.Rows = append(t.Rows, []string{source, q.DurationLabel, FormatPercent(q.RatePercent)})
		}
	}

	var b strings.Builder
	if len(t.Rows) > 0 {
		b.WriteString(RenderTable(t))
	} else {
		b.WriteString(mutedStyle.Render("  No rate available.") + "\n")
	}
	for _, source := range sortedKeys(board.Errors) {
		b.WriteString(warnStyle.Render(fmt.Sprintf("  %s unavailable: %s", source, board.Errors[source])) + "\n")
	}
	if !board.FetchedAt.IsZero() {
		b.WriteString(dimStyle.Render("  Fetched "+board.FetchedAt.Local().Format("2006-01-02 15:04")) + "\n")
	}
	return b.String()
}

// RenderHistory renders past simulations, newest first.
func RenderHistory(sims []domain.LoanSimulation, symbol string) string {
	if len(sims) == 0 {
		return mutedStyle.Render("  No simulation yet.") + "\n"
	}
	t := Table{
		Title:   "Recent simulations",
		Headers: []string{"Date", "Principal", "Rate", "Years", "Monthly payment", "Total interest", "ID"},
	}
	for _, s := range sims {
		t.Rows = append(t.Rows, []string{
			s.CreatedAt.Local().Format("2006-01-02 15:04"),
			FormatCurrency(s.Parameters.Principal, symbol),
			FormatPercent(s.Parameters.AnnualInterestRatePercent),
			fmt.Sprint(s.Parameters.DurationYears),
			FormatCurrency(s.MonthlyPayment, symbol),
			FormatCurrency(s.TotalInterestCost, symbol),
			s.ID,
		})
	}
	return RenderTable(t)
}

// Highlight renders s in the accent used for best options.
func Highlight(s string) string {
	return highlightStyle.Render(s)
}
