package http

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"loan-simulator/config"
	"loan-simulator/domain"
	"loan-simulator/repository"
	"loan-simulator/scraper"
	"loan-simulator/service"
)

type fixedSource struct {
	name   string
	quotes []domain.RateQuote
	err    error
}

func (f fixedSource) Name() string { return f.name }

func (f fixedSource) Fetch(context.Context) ([]domain.RateQuote, error) {
	return f.quotes, f.err
}

type testEnv struct {
	handler http.Handler
	loans   *repository.LoanRepositoryMemory
	limiter *RateLimiter
}

func newTestEnv(t *testing.T, capacity int) testEnv {
	t.Helper()
	logger := zap.NewNop()
	cfg := config.DefaultConfig()

	loanRepo := repository.NewLoanRepositoryMemory()
	loans := service.NewLoanService(loanRepo, nil, cfg.Limits, time.Hour, logger)
	sources := []scraper.Source{
		fixedSource{name: "empruntis", quotes: []domain.RateQuote{
			{Source: "empruntis", DurationLabel: "15 ans", DurationYears: 15, RatePercent: 3.05},
		}},
		fixedSource{name: "meilleurtaux", err: scraper.ErrStructureChanged},
	}
	limiter := NewRateLimiter(capacity, time.Minute)
	t.Cleanup(limiter.Stop)

	srv := NewServer(Options{
		Loans:    loans,
		Compare:  service.NewDurationComparisonService(loans, logger),
		Rates:    service.NewRateService(sources, repository.NewRateRepositoryMemory(), nil, time.Hour, time.Second, logger),
		Sessions: service.NewSessionService(repository.NewSessionRepositoryMemory(), logger),
		Limiter:  limiter,
		Metrics:  true,
		Logger:   logger,
	})
	return testEnv{handler: srv.Handler(), loans: loanRepo, limiter: limiter}
}

func (e testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func TestCalculateLoanHandler_OK(t *testing.T) {
	env := newTestEnv(t, 100)

	w := env.do(t, http.MethodPost, "/loan/calculate",
		`{"principal": 250000, "annual_rate": 1.5, "duration_years": 20, "include_schedule": true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var sim domain.LoanSimulation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sim))
	assert.Equal(t, 1206.36, sim.MonthlyPayment)
	assert.Equal(t, 39527.25, sim.TotalInterestCost)
	assert.Len(t, sim.Schedule, 240)
	assert.Equal(t, 0.0, sim.Schedule[239].RemainingPrincipal)
}

func TestCalculateLoanHandler_MethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, 100)
	w := env.do(t, http.MethodGet, "/loan/calculate", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestCalculateLoanHandler_BadRequest(t *testing.T) {
	env := newTestEnv(t, 100)

	w := env.do(t, http.MethodPost, "/loan/calculate", `{invalid-json}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/loan/calculate", `{"principal": 250000, "annual_rate": 1.5, "duration_years": 0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid argument")

	w = env.do(t, http.MethodPost, "/loan/calculate", `{"principal": 250000, "annual_rate": -1, "duration_years": 20}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandler_Formats(t *testing.T) {
	env := newTestEnv(t, 100)
	base := "/loan/schedule?principal=250000&annual_rate=1.5&duration_years=20"

	w := env.do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Result domain.AmortizationResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Result.Schedule, 240)

	w = env.do(t, http.MethodGet, base+"&format=csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="schedule-250000-1.50-20y.csv"`, w.Header().Get("Content-Disposition"))
	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 241)

	w = env.do(t, http.MethodGet, base+"&format=pdf", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))

	w = env.do(t, http.MethodGet, base+"&format=xlsx", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

func TestScheduleHandler_BadQuery(t *testing.T) {
	env := newTestEnv(t, 100)

	for _, target := range []string{
		"/loan/schedule?principal=abc&annual_rate=1.5&duration_years=20",
		"/loan/schedule?principal=250000&annual_rate=1.5",
		"/loan/schedule?principal=250000&annual_rate=1.5&duration_years=20&format=docx",
		"/loan/schedule?principal=250000&annual_rate=1.5&duration_years=45",
	} {
		w := env.do(t, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestCompareDurationsHandler(t *testing.T) {
	env := newTestEnv(t, 100)

	w := env.do(t, http.MethodPost, "/loan/compare-durations",
		`{"principal": 250000, "rates": {"25": 3.4, "15": 3.05, "20": 3.2}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result domain.CompareResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Options, 3)
	assert.Equal(t, 15, result.Options[0].DurationYears)
	assert.True(t, result.Options[0].CheapestTotal)
	assert.True(t, result.Options[2].LowestPayment)
}

func TestCompareDurationsHandler_ContentType(t *testing.T) {
	env := newTestEnv(t, 100)
	req := httptest.NewRequest(http.MethodPost, "/loan/compare-durations", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	w = env.do(t, http.MethodPost, "/loan/compare-durations", `{"principal": 250000, "rates": {}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryHandlers(t *testing.T) {
	env := newTestEnv(t, 100)

	w := env.do(t, http.MethodGet, "/loan/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = env.do(t, http.MethodPost, "/loan/calculate", `{"principal": 100000, "annual_rate": 2, "duration_years": 10}`)
	require.Equal(t, http.StatusOK, w.Code)
	var sim domain.LoanSimulation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sim))

	w = env.do(t, http.MethodGet, "/loan/history?limit=5", "")
	var history []domain.LoanSimulation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, sim.ID, history[0].ID)

	w = env.do(t, http.MethodGet, "/loan/history/"+sim.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got domain.LoanSimulation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got.Schedule, 120)

	w = env.do(t, http.MethodGet, "/loan/history/unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRatesHandlers(t *testing.T) {
	env := newTestEnv(t, 100)

	w := env.do(t, http.MethodGet, "/rates", "")
	require.Equal(t, http.StatusOK, w.Code)
	var board domain.RateBoard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	assert.Len(t, board.Quotes["empruntis"], 1)
	assert.Contains(t, board.Errors["meilleurtaux"], "page structure changed")

	w = env.do(t, http.MethodPost, "/rates/refresh", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/rates/history?limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	var quotes []domain.RateQuote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quotes))
	assert.Len(t, quotes, 2)
}

func TestRateLimiting(t *testing.T) {
	env := newTestEnv(t, 2)
	body := `{"principal": 100000, "annual_rate": 2, "duration_years": 10}`

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/loan/calculate", body).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/loan/calculate", body).Code)

	w := env.do(t, http.MethodPost, "/loan/calculate", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// History is not rate limited.
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/loan/history", "").Code)
}

func TestSessionCookie(t *testing.T) {
	env := newTestEnv(t, 100)

	w := env.do(t, http.MethodGet, "/loan/history", "")
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookie, cookies[0].Name)

	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Result().Cookies())

	var sessions []domain.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, 2, sessions[0].RequestCount)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, 100)

	w := env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	env.do(t, http.MethodPost, "/loan/calculate", `{"principal": 100000, "annual_rate": 2, "duration_years": 10}`)
	w = env.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "loansim_loan_calculations_total")
	assert.Contains(t, w.Body.String(), `route="/loan/calculate"`)
	assert.Contains(t, w.Body.String(), "# TYPE loansim_http_sessions_started_total counter")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(fmt.Errorf("x: %w", service.ErrInvalidArgument)))
	assert.Equal(t, http.StatusNotFound, statusFor(repository.ErrNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("db down")))
}
