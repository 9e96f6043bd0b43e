package http

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"loan-simulator/domain"
	"loan-simulator/service"
)

const (
	sessionCookie    = "loan_session"
	sessionCookieTTL = 30 * 24 * time.Hour
)

// SessionMiddleware tracks visitors through the loan_session cookie.
// Tracking failures are logged and never block the request.
func SessionMiddleware(sessions *service.SessionService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var current string
			if c, err := r.Cookie(sessionCookie); err == nil {
				current = c.Value
			}

			id, err := sessions.Track(r.Context(), current, clientIP(r), r.UserAgent())
			if err != nil {
				logger.Warn("tracking session", zap.Error(err))
			} else if id != current {
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int(sessionCookieTTL.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r)
		})
	}
}

type SessionHandler struct {
	service *service.SessionService
	logger  *zap.Logger
}

func NewSessionHandler(service *service.SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{service: service, logger: logger}
}

func (h *SessionHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.service.Sessions(r.Context(), limitParam(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if sessions == nil {
		sessions = []domain.Session{}
	}
	writeJSON(w, h.logger, http.StatusOK, sessions)
}
