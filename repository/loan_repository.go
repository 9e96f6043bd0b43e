package repository

import (
	"context"
	"errors"
	"time"

	"loan-simulator/domain"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// LoanRepository keeps the history of computed simulations. Schedules are
// not stored; they are recomputed from the parameters on demand.
type LoanRepository interface {
	Save(ctx context.Context, sim domain.LoanSimulation) error
	Get(ctx context.Context, id string) (domain.LoanSimulation, error)
	List(ctx context.Context, limit int) ([]domain.LoanSimulation, error)
}

// RateRepository keeps snapshots of scraped rates.
type RateRepository interface {
	SaveQuotes(ctx context.Context, quotes []domain.RateQuote) error
	RecentQuotes(ctx context.Context, limit int) ([]domain.RateQuote, error)
}

// SessionRepository keeps API visitor sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, s domain.Session) error
	TouchSession(ctx context.Context, id string, at time.Time) error
	ListSessions(ctx context.Context, limit int) ([]domain.Session, error)
}
