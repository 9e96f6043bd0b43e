package render

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"loan-simulator/domain"
)

const (
	blockFull     = "█"
	blockShade    = "▓"
	markRemaining = "•"
)

// sample picks width evenly spaced rows, always including the last one.
func sample(rows []domain.ScheduleRow, width int) []domain.ScheduleRow {
	if width <= 0 || len(rows) <= width {
		return rows
	}
	if width == 1 {
		return rows[len(rows)-1:]
	}
	out := make([]domain.ScheduleRow, width)
	for i := range out {
		idx := int(math.Round(float64(i) * float64(len(rows)-1) / float64(width-1)))
		out[i] = rows[idx]
	}
	return out
}

// CumulativeChart draws principal repaid and interest paid stacked over
// time, with the remaining principal as a line of dots.
func CumulativeChart(rows []domain.ScheduleRow, symbol string, width, height int) string {
	if len(rows) == 0 || height < 2 {
		return ""
	}
	cols := sample(rows, width)

	peak := 0.0
	for _, r := range cols {
		peak = math.Max(peak, r.CumulativePrincipalPaid+r.CumulativeInterestPaid)
		peak = math.Max(peak, r.RemainingPrincipal)
	}
	if peak == 0 {
		peak = 1
	}

	principal := lipgloss.NewStyle().Foreground(ColorPrincipal)
	interest := lipgloss.NewStyle().Foreground(ColorInterest)
	remaining := lipgloss.NewStyle().Foreground(ColorRemaining).Bold(true)

	grid := make([][]string, height)
	for y := range grid {
		grid[y] = make([]string, len(cols))
	}
	for x, r := range cols {
		remainingRow := int(math.Round(r.RemainingPrincipal / peak * float64(height-1)))
		for y := 0; y < height; y++ {
			level := (float64(y) + 0.5) / float64(height) * peak
			cell := " "
			switch {
			case y == remainingRow:
				cell = remaining.Render(markRemaining)
			case level <= r.CumulativePrincipalPaid:
				cell = principal.Render(blockFull)
			case level <= r.CumulativePrincipalPaid+r.CumulativeInterestPaid:
				cell = interest.Render(blockShade)
			}
			grid[height-1-y][x] = cell
		}
	}

	legend := strings.Join([]string{
		remaining.Render(markRemaining) + " remaining principal",
		principal.Render(blockFull) + " principal repaid",
		interest.Render(blockShade) + " interest paid",
	}, "   ")

	return drawChart("Remaining principal, principal repaid and interest", grid, peak, symbol, cols, legend)
}

// CompositionChart draws, for each month, the split of the installment
// between interest (bottom) and principal (top).
func CompositionChart(rows []domain.ScheduleRow, symbol string, width, height int) string {
	if len(rows) == 0 || height < 2 {
		return ""
	}
	cols := sample(rows, width)

	peak := 0.0
	for _, r := range cols {
		peak = math.Max(peak, r.InterestForMonth+r.PrincipalForMonth)
	}
	if peak == 0 {
		peak = 1
	}

	principal := lipgloss.NewStyle().Foreground(ColorGreen)
	interest := lipgloss.NewStyle().Foreground(ColorRed)

	grid := make([][]string, height)
	for y := range grid {
		grid[y] = make([]string, len(cols))
	}
	for x, r := range cols {
		for y := 0; y < height; y++ {
			level := (float64(y) + 0.5) / float64(height) * peak
			cell := " "
			switch {
			case level <= r.InterestForMonth:
				cell = interest.Render(blockFull)
			case level <= r.InterestForMonth+r.PrincipalForMonth:
				cell = principal.Render(blockShade)
			}
			grid[height-1-y][x] = cell
		}
	}

	legend := interest.Render(blockFull) + " interest of the month   " +
		principal.Render(blockShade) + " principal of the month"

	return drawChart("Monthly installment composition", grid, peak, symbol, cols, legend)
}

func drawChart(title string, grid [][]string, peak float64, symbol string, cols []domain.ScheduleRow, legend string) string {
	top := FormatCurrency(peak, symbol)
	labelW := lipgloss.Width(top)

	var b strings.Builder
	b.WriteString("  " + headerStyle.Render(title) + "\n")
	for y, row := range grid {
		label := ""
		switch y {
		case 0:
			label = top
		case len(grid) - 1:
			label = "0"
		}
		b.WriteString(dimStyle.Render(fmt.Sprintf("%*s ┤", labelW, label)))
		b.WriteString(strings.Join(row, ""))
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render(strings.Repeat(" ", labelW+1) + "└" + strings.Repeat("─", len(cols))))
	b.WriteString("\n")

	first := fmt.Sprintf("month %d", cols[0].Month)
	last := fmt.Sprintf("month %d", cols[len(cols)-1].Month)
	gap := max(len(cols)-len(first)-len(last), 1)
	b.WriteString(dimStyle.Render(strings.Repeat(" ", labelW+2) + first + strings.Repeat(" ", gap) + last))
	b.WriteString("\n  " + legend + "\n")
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
