// Package tui provides the interactive Bubble Tea dashboard for loansim.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"loan-simulator/config"
	"loan-simulator/domain"
	"loan-simulator/render"
	"loan-simulator/service"
)

// SimulationMsg carries the outcome of a loan calculation.
type SimulationMsg struct {
	Simulation domain.LoanSimulation
	Err        error
}

// RatesMsg carries the outcome of a rate board fetch.
type RatesMsg struct {
	Board domain.RateBoard
	Err   error
}

const (
	tabSummary = iota
	tabCharts
	tabSchedule
	tabRates
)

var tabNames = []string{"Summary", "Charts", "Schedule", "Rates"}

const (
	minTerminalWidth = 70
	scrollOverhead   = 8 // tab bar, schedule title and status bar
	requestTimeout   = 30 * time.Second
)

// App is the root Bubble Tea model.
type App struct {
	loans   *service.LoanService
	rates   *service.RateService
	display config.DisplayConfig

	params     domain.LoanParameters
	simulation domain.LoanSimulation
	calcErr    error
	calculated bool

	board        domain.RateBoard
	ratesErr     error
	ratesLoading bool

	// Parameter form (huh)
	form     *huh.Form
	formVals *formValues

	spinner   spinner.Model
	width     int
	height    int
	activeTab int
	scroll    int
}

// NewApp creates the dashboard, starting from params.
func NewApp(loans *service.LoanService, rates *service.RateService, display config.DisplayConfig, params domain.LoanParameters) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(render.ColorAccent)

	return App{
		loans:        loans,
		rates:        rates,
		display:      display,
		params:       params,
		spinner:      sp,
		ratesLoading: rates != nil,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{calculateCmd(a.loans, a.params)}
	if a.rates != nil {
		cmds = append(cmds, fetchRatesCmd(a.rates, false), a.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.form != nil {
		if ws, ok := msg.(tea.WindowSizeMsg); ok {
			a.width, a.height = ws.Width, ws.Height
		}
		return a.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil

	case SimulationMsg:
		a.calculated = true
		a.calcErr = msg.Err
		if msg.Err == nil {
			a.simulation = msg.Simulation
			a.params = msg.Simulation.Parameters
			a.scroll = 0
		}
		return a, nil

	case RatesMsg:
		a.ratesLoading = false
		a.ratesErr = msg.Err
		if msg.Err == nil {
			a.board = msg.Board
		}
		return a, nil

	case spinner.TickMsg:
		if !a.ratesLoading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return a, tea.Quit

	case "tab", "right", "l":
		a.activeTab = (a.activeTab + 1) % len(tabNames)
	case "shift+tab", "left", "h":
		a.activeTab = (a.activeTab + len(tabNames) - 1) % len(tabNames)
	case "1", "2", "3", "4":
		a.activeTab = int(msg.String()[0] - '1')

	case "j", "down":
		if a.activeTab == tabSchedule && a.scroll < a.maxScroll() {
			a.scroll++
		}
	case "k", "up":
		if a.activeTab == tabSchedule && a.scroll > 0 {
			a.scroll--
		}
	case "pgdown", "d":
		if a.activeTab == tabSchedule {
			a.scroll = min(a.scroll+a.pageSize(), a.maxScroll())
		}
	case "pgup", "u":
		if a.activeTab == tabSchedule {
			a.scroll = max(a.scroll-a.pageSize(), 0)
		}

	case "e", "enter":
		a.formVals = newFormValues(a.params)
		a.form = newParamsForm(a.formVals, a.loans.Limits())
		if a.width > 0 {
			a.form = a.form.WithWidth(min(a.width, 80))
		}
		return a, a.form.Init()

	case "r":
		if a.rates != nil && !a.ratesLoading {
			a.ratesLoading = true
			return a, tea.Batch(fetchRatesCmd(a.rates, true), a.spinner.Tick)
		}
	}
	return a, nil
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+c" {
		return a, tea.Quit
	}

	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		params, err := a.formVals.parameters()
		a.form, a.formVals = nil, nil
		if err != nil {
			a.calcErr = err
			return a, nil
		}
		a.activeTab = tabSummary
		return a, calculateCmd(a.loans, params)
	case huh.StateAborted:
		a.form, a.formVals = nil, nil
		return a, nil
	}
	return a, cmd
}

func (a App) pageSize() int {
	return max(a.height-scrollOverhead-6, 1)
}

func (a App) maxScroll() int {
	return max(len(a.simulation.Schedule)-a.pageSize(), 0)
}

func (a App) chartWidth() int {
	w := a.display.ChartWidth
	if a.width > 0 {
		w = min(max(a.width-20, 20), 120)
	}
	return w
}

// View implements tea.Model.
func (a App) View() string {
	if a.width > 0 && a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d columns, need %d).\n", a.width, minTerminalWidth)
	}
	if a.form != nil {
		return "\n" + render.RenderTitle("Loan parameters") + "\n\n" + a.form.View()
	}

	var b strings.Builder
	b.WriteString(renderTabBar(a.activeTab))
	b.WriteString("\n\n")

	switch a.activeTab {
	case tabSummary:
		b.WriteString(a.viewSummary())
	case tabCharts:
		b.WriteString(a.viewCharts())
	case tabSchedule:
		b.WriteString(a.viewSchedule())
	case tabRates:
		b.WriteString(a.viewRates())
	}

	b.WriteString("\n")
	b.WriteString(statusStyle.Render("  tab switch · e edit · r refresh rates · j/k scroll · q quit"))
	return b.String()
}

func (a App) viewSummary() string {
	if a.calcErr != nil {
		return errorStyle.Render("  "+a.calcErr.Error()) + "\n"
	}
	if !a.calculated {
		return mutedStyle.Render("  Calculating...") + "\n"
	}
	r := a.result()
	width := a.width
	if width == 0 {
		width = 90
	}
	return render.RenderSummary(a.params, r, a.display.CurrencySymbol, min(width-4, 96)) + "\n"
}

func (a App) viewCharts() string {
	if !a.calculated || a.calcErr != nil {
		return a.viewSummary()
	}
	rows := a.simulation.Schedule
	sym := a.display.CurrencySymbol
	return render.CumulativeChart(rows, sym, a.chartWidth(), a.display.ChartHeight) + "\n" +
		render.CompositionChart(rows, sym, a.chartWidth(), max(a.display.ChartHeight/2, 4))
}

func (a App) viewSchedule() string {
	if !a.calculated || a.calcErr != nil {
		return a.viewSummary()
	}
	rows := a.simulation.Schedule
	end := len(rows)
	if a.height > 0 {
		end = min(a.scroll+a.pageSize(), len(rows))
	}
	return render.RenderSchedule(rows[a.scroll:end], a.display.CurrencySymbol, 1)
}

func (a App) viewRates() string {
	if a.rates == nil {
		return mutedStyle.Render("  Rate sources are disabled.") + "\n"
	}
	if a.ratesLoading {
		return "  " + a.spinner.View() + " Fetching published rates...\n"
	}
	if a.ratesErr != nil {
		return errorStyle.Render("  "+a.ratesErr.Error()) + "\n"
	}
	return render.RenderRateBoard(a.board)
}

func (a App) result() domain.AmortizationResult {
	return domain.AmortizationResult{
		MonthlyPayment:    a.simulation.MonthlyPayment,
		TotalInterestCost: a.simulation.TotalInterestCost,
		Schedule:          a.simulation.Schedule,
	}
}

func calculateCmd(loans *service.LoanService, params domain.LoanParameters) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		sim, err := loans.CalculateLoan(ctx, domain.LoanInput{LoanParameters: params, IncludeSchedule: true})
		return SimulationMsg{Simulation: sim, Err: err}
	}
}

func fetchRatesCmd(rates *service.RateService, force bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		var (
			board domain.RateBoard
			err   error
		)
		if force {
			board, err = rates.Refresh(ctx)
		} else {
			board, err = rates.Board(ctx)
		}
		return RatesMsg{Board: board, Err: err}
	}
}
