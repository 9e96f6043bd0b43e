package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"loan-simulator/domain"
	"loan-simulator/service"
)

type CompareHandler struct {
	service *service.DurationComparisonService
	logger  *zap.Logger
}

func NewCompareHandler(service *service.DurationComparisonService, logger *zap.Logger) *CompareHandler {
	return &CompareHandler{service: service, logger: logger}
}

func (h *CompareHandler) CompareDurations(w http.ResponseWriter, r *http.Request) {
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
		return
	}

	var input domain.CompareInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input); err != nil {
		h.logger.Debug("decoding compare request", zap.Error(err))
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.Compare(r.Context(), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, result)
}
