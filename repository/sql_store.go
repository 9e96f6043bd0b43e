package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // register postgres driver
	_ "modernc.org/sqlite" // register sqlite driver

	"loan-simulator/domain"
)

// Timestamps are stored as fixed-width UTC text so they sort lexically on
// both SQLite and PostgreSQL.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// SQLStore implements LoanRepository, RateRepository and SessionRepository
// on SQLite or PostgreSQL.
type SQLStore struct {
	db *sqlx.DB
}

type simulationRow struct {
	ID                string  `db:"id"`
	Principal         float64 `db:"principal"`
	AnnualRate        float64 `db:"annual_rate"`
	DurationYears     int     `db:"duration_years"`
	MonthlyPayment    float64 `db:"monthly_payment"`
	TotalInterestCost float64 `db:"total_interest_cost"`
	TotalRepaid       float64 `db:"total_repaid"`
	CreatedAt         string  `db:"created_at"`
}

type rateQuoteRow struct {
	ID            string  `db:"id"`
	Source        string  `db:"source"`
	DurationLabel string  `db:"duration_label"`
	DurationYears int     `db:"duration_years"`
	RatePercent   float64 `db:"rate_percent"`
	FetchedAt     string  `db:"fetched_at"`
}

type sessionRow struct {
	ID           string `db:"id"`
	IP           string `db:"ip"`
	UserAgent    string `db:"user_agent"`
	StartedAt    string `db:"started_at"`
	LastSeenAt   string `db:"last_seen_at"`
	RequestCount int    `db:"request_count"`
}

// OpenSQLStore opens (and migrates) a store. driver is "sqlite" or
// "postgres"; for sqlite dsn is a file path.
func OpenSQLStore(driver, dsn string) (*SQLStore, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch driver {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(dsn), 0o750); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
		db, err = sqlx.Open("sqlite", dsn+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
		if err == nil {
			db.SetMaxOpenConns(1)
		}
	case "postgres":
		db, err = sqlx.Open("postgres", dsn)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", driver, err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLStore{db: db}, nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Save stores the simulation summary.
func (s *SQLStore) Save(ctx context.Context, sim domain.LoanSimulation) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO simulations
		(id, principal, annual_rate, duration_years, monthly_payment,
		 total_interest_cost, total_repaid, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		sim.ID, sim.Parameters.Principal, sim.Parameters.AnnualInterestRatePercent,
		sim.Parameters.DurationYears, sim.MonthlyPayment, sim.TotalInterestCost,
		sim.TotalRepaid, formatTime(sim.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("saving simulation: %w", err)
	}
	return nil
}

// Get returns the simulation with the given id.
func (s *SQLStore) Get(ctx context.Context, id string) (domain.LoanSimulation, error) {
	var row simulationRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT * FROM simulations WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.LoanSimulation{}, ErrNotFound
	}
	if err != nil {
		return domain.LoanSimulation{}, fmt.Errorf("loading simulation: %w", err)
	}
	return row.toDomain(), nil
}

// List returns up to limit simulations, newest first.
func (s *SQLStore) List(ctx context.Context, limit int) ([]domain.LoanSimulation, error) {
	var rows []simulationRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(
		`SELECT * FROM simulations ORDER BY created_at DESC LIMIT ?`), normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("listing simulations: %w", err)
	}

	out := make([]domain.LoanSimulation, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// SaveQuotes stores a batch of scraped quotes in one transaction.
func (s *SQLStore) SaveQuotes(ctx context.Context, quotes []domain.RateQuote) error {
	if len(quotes) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	query := tx.Rebind(`INSERT INTO rate_quotes
		(id, source, duration_label, duration_years, rate_percent, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	for _, q := range quotes {
		_, err := tx.ExecContext(ctx, query,
			uuid.NewString(), q.Source, q.DurationLabel, q.DurationYears, q.RatePercent, formatTime(q.FetchedAt))
		if err != nil {
			return fmt.Errorf("saving quote: %w", err)
		}
	}
	return tx.Commit()
}

// RecentQuotes returns up to limit quotes, newest first.
func (s *SQLStore) RecentQuotes(ctx context.Context, limit int) ([]domain.RateQuote, error) {
	var rows []rateQuoteRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(
		`SELECT * FROM rate_quotes ORDER BY fetched_at DESC, source, duration_years LIMIT ?`), normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("listing quotes: %w", err)
	}

	out := make([]domain.RateQuote, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.RateQuote{
			Source:        r.Source,
			DurationLabel: r.DurationLabel,
			DurationYears: r.DurationYears,
			RatePercent:   r.RatePercent,
			FetchedAt:     parseTime(r.FetchedAt),
		})
	}
	return out, nil
}

func (s *SQLStore) CreateSession(ctx context.Context, sess domain.Session) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO sessions
		(id, ip, user_agent, started_at, last_seen_at, request_count)
		VALUES (?, ?, ?, ?, ?, ?)`),
		sess.ID, sess.IP, sess.UserAgent, formatTime(sess.StartedAt), formatTime(sess.LastSeenAt), sess.RequestCount,
	)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (s *SQLStore) TouchSession(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(
		`UPDATE sessions SET last_seen_at = ?, request_count = request_count + 1 WHERE id = ?`),
		formatTime(at), id)
	if err != nil {
		return fmt.Errorf("touching session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSessions returns up to limit sessions, most recently seen first.
func (s *SQLStore) ListSessions(ctx context.Context, limit int) ([]domain.Session, error) {
	var rows []sessionRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(
		`SELECT * FROM sessions ORDER BY last_seen_at DESC LIMIT ?`), normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	out := make([]domain.Session, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Session{
			ID:           r.ID,
			IP:           r.IP,
			UserAgent:    r.UserAgent,
			StartedAt:    parseTime(r.StartedAt),
			LastSeenAt:   parseTime(r.LastSeenAt),
			RequestCount: r.RequestCount,
		})
	}
	return out, nil
}

func (r simulationRow) toDomain() domain.LoanSimulation {
	return domain.LoanSimulation{
		ID: r.ID,
		Parameters: domain.LoanParameters{
			Principal:                 r.Principal,
			AnnualInterestRatePercent: r.AnnualRate,
			DurationYears:             r.DurationYears,
		},
		MonthlyPayment:    r.MonthlyPayment,
		TotalInterestCost: r.TotalInterestCost,
		TotalRepaid:       r.TotalRepaid,
		CreatedAt:         parseTime(r.CreatedAt),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

const maxListLimit = 1000

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
