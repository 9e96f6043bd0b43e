package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"loan-simulator/domain"
	"loan-simulator/export"
	"loan-simulator/service"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

type LoanHandler struct {
	service *service.LoanService
	logger  *zap.Logger
}

func NewLoanHandler(service *service.LoanService, logger *zap.Logger) *LoanHandler {
	return &LoanHandler{service: service, logger: logger}
}

func (h *LoanHandler) CalculateLoan(w http.ResponseWriter, r *http.Request) {
	var input domain.LoanInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	sim, err := h.service.CalculateLoan(r.Context(), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, sim)
}

// Schedule computes a schedule from query parameters and returns it in the
// requested format (json by default, or csv, xlsx, pdf as a download).
func (h *LoanHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	params, err := parametersFromQuery(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	format := export.FormatJSON
	if name := r.URL.Query().Get("format"); name != "" {
		if format, err = export.ParseFormat(name); err != nil {
			writeError(w, h.logger, err)
			return
		}
	}

	result, err := h.service.Schedule(params)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	schedule := export.Schedule{Parameters: params, Result: result}
	var buf bytes.Buffer
	if err := export.Write(&buf, format, schedule); err != nil {
		writeError(w, h.logger, fmt.Errorf("exporting schedule: %w", err))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	if format != export.FormatJSON {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", schedule.Filename(format)))
	}
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("writing schedule", zap.Error(err))
	}
}

func (h *LoanHandler) History(w http.ResponseWriter, r *http.Request) {
	sims, err := h.service.History(r.Context(), service.ClampLimit(limitParam(r)))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if sims == nil {
		sims = []domain.LoanSimulation{}
	}
	writeJSON(w, h.logger, http.StatusOK, sims)
}

func (h *LoanHandler) Simulation(w http.ResponseWriter, r *http.Request) {
	sim, err := h.service.Simulation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, sim)
}

func parametersFromQuery(r *http.Request) (domain.LoanParameters, error) {
	q := r.URL.Query()

	principal, err := strconv.ParseFloat(q.Get("principal"), 64)
	if err != nil {
		return domain.LoanParameters{}, fmt.Errorf("%w: principal %q is not a number", service.ErrInvalidArgument, q.Get("principal"))
	}
	rate, err := strconv.ParseFloat(q.Get("annual_rate"), 64)
	if err != nil {
		return domain.LoanParameters{}, fmt.Errorf("%w: annual_rate %q is not a number", service.ErrInvalidArgument, q.Get("annual_rate"))
	}
	years, err := strconv.Atoi(q.Get("duration_years"))
	if err != nil {
		return domain.LoanParameters{}, fmt.Errorf("%w: duration_years %q is not an integer", service.ErrInvalidArgument, q.Get("duration_years"))
	}

	return domain.LoanParameters{
		Principal:                 principal,
		AnnualInterestRatePercent: rate,
		DurationYears:             years,
	}, nil
}
