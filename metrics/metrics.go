// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Loan engine ────────────────────────────────────────────────────────────

// Calculations counts loan simulations by outcome (computed, cached, invalid).
var Calculations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "loansim",
	Subsystem: "loan",
	Name:      "calculations_total",
	Help:      "Total loan simulations by outcome.",
}, []string{"outcome"})

// CalculationDuration observes the time spent computing a schedule.
var CalculationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "loansim",
	Subsystem: "loan",
	Name:      "calculation_seconds",
	Help:      "Time spent computing an amortization schedule.",
	Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
})

// ScheduleMonths observes the length of computed schedules.
var ScheduleMonths = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "loansim",
	Subsystem: "loan",
	Name:      "schedule_months",
	Help:      "Number of monthly rows in computed schedules.",
	Buckets:   []float64{12, 60, 120, 180, 240, 300, 360},
})

// Exports counts schedule exports by format.
var Exports = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "loansim",
	Subsystem: "loan",
	Name:      "exports_total",
	Help:      "Total schedule exports by format.",
}, []string{"format"})

// ─── Rate scraping ──────────────────────────────────────────────────────────

// Scrapes counts scraper runs by source and result (ok, error).
var Scrapes = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "loansim",
	Subsystem: "rates",
	Name:      "scrapes_total",
	Help:      "Total scraper runs by source and result.",
}, []string{"source", "result"})

// ScrapeDuration observes scraper latency per source.
var ScrapeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "loansim",
	Subsystem: "rates",
	Name:      "scrape_seconds",
	Help:      "Scraper latency by source.",
	Buckets:   prometheus.DefBuckets,
}, []string{"source"})

// PublishedRate exposes the last scraped rate per source and duration.
var PublishedRate = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "loansim",
	Subsystem: "rates",
	Name:      "published_percent",
	Help:      "Last published mortgage rate by source and duration.",
}, []string{"source", "duration"})

// ─── HTTP ───────────────────────────────────────────────────────────────────

// HTTPRequests counts API requests by route and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "loansim",
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "Total HTTP requests by route and status.",
}, []string{"route", "status"})

// RateLimited counts requests rejected by the per-client rate limiter.
var RateLimited = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "loansim",
	Subsystem: "http",
	Name:      "rate_limited_total",
	Help:      "Total requests rejected by the rate limiter.",
})

// SessionsStarted counts new visitor sessions.
var SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "loansim",
	Subsystem: "http",
	Name:      "sessions_started_total",
	Help:      "Total visitor sessions started.",
})
