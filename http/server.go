// Package http exposes the loan simulator over a JSON API.
package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"loan-simulator/metrics"
	"loan-simulator/service"
)

// Options wires the services behind the API. Rates, Sessions and Limiter
// are optional; their routes or middleware are skipped when nil.
type Options struct {
	Loans    *service.LoanService
	Compare  *service.DurationComparisonService
	Rates    *service.RateService
	Sessions *service.SessionService
	Limiter  *RateLimiter
	Metrics  bool
	Timeout  time.Duration
	Logger   *zap.Logger
}

// Server is the loan simulator HTTP API.
type Server struct {
	opts    Options
	logger  *zap.Logger
	loans   *LoanHandler
	compare *CompareHandler
	rates   *RatesHandler
	session *SessionHandler
}

func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		opts:    opts,
		logger:  logger,
		loans:   NewLoanHandler(opts.Loans, logger),
		compare: NewCompareHandler(opts.Compare, logger),
	}
	if opts.Rates != nil {
		s.rates = NewRatesHandler(opts.Rates, logger)
	}
	if opts.Sessions != nil {
		s.session = NewSessionHandler(opts.Sessions, logger)
	}
	return s
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	if s.opts.Timeout > 0 {
		r.Use(middleware.Timeout(s.opts.Timeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ok"})
	})

	if s.opts.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Group(func(r chi.Router) {
		if s.opts.Sessions != nil {
			r.Use(SessionMiddleware(s.opts.Sessions, s.logger))
		}

		r.Route("/loan", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if s.opts.Limiter != nil {
					r.Use(RateLimitMiddleware(s.opts.Limiter))
				}
				r.Post("/calculate", s.loans.CalculateLoan)
				r.Get("/schedule", s.loans.Schedule)
				r.Post("/compare-durations", s.compare.CompareDurations)
			})
			r.Get("/history", s.loans.History)
			r.Get("/history/{id}", s.loans.Simulation)
		})

		if s.rates != nil {
			r.Route("/rates", func(r chi.Router) {
				r.Get("/", s.rates.Board)
				r.Post("/refresh", s.rates.Refresh)
				r.Get("/history", s.rates.History)
			})
		}

		if s.session != nil {
			r.Get("/sessions", s.session.Sessions)
		}
	})

	return r
}

// observe logs each request and counts it by route pattern and status.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()

		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}
