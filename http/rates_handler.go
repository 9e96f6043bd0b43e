package http

import (
	"net/http"

	"go.uber.org/zap"

	"loan-simulator/domain"
	"loan-simulator/service"
)

type RatesHandler struct {
	service *service.RateService
	logger  *zap.Logger
}

func NewRatesHandler(service *service.RateService, logger *zap.Logger) *RatesHandler {
	return &RatesHandler{service: service, logger: logger}
}

// Board returns the cached rate board. Failed sources appear under "errors"
// and do not change the status code.
func (h *RatesHandler) Board(w http.ResponseWriter, r *http.Request) {
	board, err := h.service.Board(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, board)
}

func (h *RatesHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	board, err := h.service.Refresh(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, board)
}

func (h *RatesHandler) History(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.service.LatestSnapshots(r.Context(), limitParam(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if quotes == nil {
		quotes = []domain.RateQuote{}
	}
	writeJSON(w, h.logger, http.StatusOK, quotes)
}
