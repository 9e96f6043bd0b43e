package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"loan-simulator/config"
	"loan-simulator/domain"
	"loan-simulator/repository"
	"loan-simulator/service"
)

func testApp(t *testing.T) App {
	t.Helper()
	cfg := config.DefaultConfig()
	loans := service.NewLoanService(repository.NewLoanRepositoryMemory(), nil, cfg.Limits, time.Hour, zap.NewNop())
	return NewApp(loans, nil, cfg.Display, domain.LoanParameters{
		Principal: 250_000, AnnualInterestRatePercent: 1.5, DurationYears: 20,
	})
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := a.Update(msg)
	app, ok := m.(App)
	require.True(t, ok)
	return app, cmd
}

func calculated(t *testing.T) App {
	t.Helper()
	a := testApp(t)
	a, _ = update(t, a, tea.WindowSizeMsg{Width: 120, Height: 40})

	msg := calculateCmd(a.loans, a.params)()
	a, _ = update(t, a, msg)
	require.NoError(t, a.calcErr)
	return a
}

func TestSummaryAfterCalculation(t *testing.T) {
	a := calculated(t)
	view := a.View()
	assert.Contains(t, view, "1,206.36 €")
	assert.Contains(t, view, "39,527.25 €")
	assert.Contains(t, view, "1 Summary")
}

func TestTabNavigation(t *testing.T) {
	a := calculated(t)

	a, _ = update(t, a, key("tab"))
	assert.Equal(t, tabCharts, a.activeTab)
	assert.Contains(t, a.View(), "Monthly installment composition")

	a, _ = update(t, a, key("3"))
	assert.Equal(t, tabSchedule, a.activeTab)
	assert.Contains(t, a.View(), "Amortization schedule")

	a, _ = update(t, a, key("h"))
	assert.Equal(t, tabCharts, a.activeTab)

	a, _ = update(t, a, key("4"))
	assert.Contains(t, a.View(), "Rate sources are disabled")
}

func TestScheduleScroll(t *testing.T) {
	a := calculated(t)
	a, _ = update(t, a, key("3"))

	a, _ = update(t, a, key("k"))
	assert.Equal(t, 0, a.scroll)

	a, _ = update(t, a, key("j"))
	a, _ = update(t, a, key("j"))
	assert.Equal(t, 2, a.scroll)

	for i := 0; i < 100; i++ {
		a, _ = update(t, a, key("d"))
	}
	assert.Equal(t, a.maxScroll(), a.scroll)
	assert.Contains(t, a.View(), "│ 240 ")
}

func TestQuit(t *testing.T) {
	a := calculated(t)
	_, cmd := update(t, a, key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestCalculationError(t *testing.T) {
	a := testApp(t)
	a, _ = update(t, a, SimulationMsg{Err: errors.New("principal must be between 10000 and 10000000")})
	assert.Contains(t, a.View(), "principal must be between")
}

func TestRatesTab(t *testing.T) {
	a := calculated(t)
	a.rates = service.NewRateService(nil, repository.NewRateRepositoryMemory(), nil, time.Hour, time.Second, zap.NewNop())
	a.ratesLoading = true
	a, _ = update(t, a, key("4"))
	assert.Contains(t, a.View(), "Fetching published rates")

	a, _ = update(t, a, RatesMsg{Board: domain.RateBoard{Quotes: map[string][]domain.RateQuote{
		"empruntis": {{Source: "empruntis", DurationLabel: "20 ans", DurationYears: 20, RatePercent: 3.2}},
	}}})
	assert.Contains(t, a.View(), "20 ans")
	assert.Contains(t, a.View(), "3.20 %")
}

func TestEditOpensForm(t *testing.T) {
	a := calculated(t)
	a, _ = update(t, a, key("e"))
	require.NotNil(t, a.form)
	assert.Equal(t, "250000", a.formVals.principal)
	assert.Equal(t, 20, a.formVals.years)
	assert.Contains(t, a.View(), "Principal borrowed")
}

func TestFormValuesParameters(t *testing.T) {
	v := &formValues{principal: "300 000", rate: "3,25", years: 25}
	p, err := v.parameters()
	require.NoError(t, err)
	assert.Equal(t, 300_000.0, p.Principal)
	assert.Equal(t, 3.25, p.AnnualInterestRatePercent)
	assert.Equal(t, 25, p.DurationYears)

	v.rate = "abc"
	_, err = v.parameters()
	assert.ErrorIs(t, err, service.ErrInvalidArgument)
}

func TestFetchRatesCmd(t *testing.T) {
	rates := service.NewRateService(nil, repository.NewRateRepositoryMemory(), nil, time.Hour, time.Second, zap.NewNop())
	msg := fetchRatesCmd(rates, true)()
	rm, ok := msg.(RatesMsg)
	require.True(t, ok)
	assert.NoError(t, rm.Err)
	assert.Empty(t, rm.Board.Quotes)

}
