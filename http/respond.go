package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"loan-simulator/export"
	"loan-simulator/repository"
	"loan-simulator/service"
)

// writeJSON encodes into a buffer first so a failed encoding does not leave
// a half-written 200 response.
func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.Error("encoding response", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Warn("writing response", zap.Error(err))
	}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidArgument), errors.Is(err, export.ErrUnknownFormat):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
		http.Error(w, "internal server error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

// limitParam reads the "limit" query parameter; absent or invalid gives 0.
func limitParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return n
}
