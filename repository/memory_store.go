package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"loan-simulator/domain"
)

// RateRepositoryMemory keeps rate snapshots in memory.
type RateRepositoryMemory struct {
	mu     sync.RWMutex
	quotes []domain.RateQuote
}

// NewRateRepositoryMemory creates an empty in-memory rate repository.
func NewRateRepositoryMemory() *RateRepositoryMemory {
	return &RateRepositoryMemory{}
}

func (r *RateRepositoryMemory) SaveQuotes(_ context.Context, quotes []domain.RateQuote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quotes = append(r.quotes, quotes...)
	return nil
}

// RecentQuotes returns up to limit quotes, newest first.
func (r *RateRepositoryMemory) RecentQuotes(_ context.Context, limit int) ([]domain.RateQuote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.RateQuote, 0, len(r.quotes))
	for i := len(r.quotes) - 1; i >= 0; i-- {
		out = append(out, r.quotes[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FetchedAt.After(out[j].FetchedAt)
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// SessionRepositoryMemory keeps sessions in memory.
type SessionRepositoryMemory struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewSessionRepositoryMemory creates an empty in-memory session repository.
func NewSessionRepositoryMemory() *SessionRepositoryMemory {
	return &SessionRepositoryMemory{sessions: make(map[string]*domain.Session)}
}

func (r *SessionRepositoryMemory) CreateSession(_ context.Context, s domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = &s
	return nil
}

func (r *SessionRepositoryMemory) TouchSession(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.LastSeenAt = at
	s.RequestCount++
	return nil
}

// ListSessions returns up to limit sessions, most recently seen first.
func (r *SessionRepositoryMemory) ListSessions(_ context.Context, limit int) ([]domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastSeenAt.After(out[j].LastSeenAt)
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
