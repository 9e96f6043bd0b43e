package repository

import (
	"context"
	"sync"

	"loan-simulator/domain"
)

// LoanRepositoryMemory is an in-memory implementation of LoanRepository.
type LoanRepositoryMemory struct {
	mu   sync.RWMutex
	data []domain.LoanSimulation
}

// NewLoanRepositoryMemory creates a new in-memory loan repository.
func NewLoanRepositoryMemory() *LoanRepositoryMemory {
	return &LoanRepositoryMemory{
		data: []domain.LoanSimulation{},
	}
}

// Save stores the simulation summary in memory.
func (r *LoanRepositoryMemory) Save(_ context.Context, sim domain.LoanSimulation) error {
	sim.Schedule = nil

	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append(r.data, sim)
	return nil
}

// Get returns the simulation with the given id.
func (r *LoanRepositoryMemory) Get(_ context.Context, id string) (domain.LoanSimulation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, sim := range r.data {
		if sim.ID == id {
			return sim, nil
		}
	}
	return domain.LoanSimulation{}, ErrNotFound
}

// List returns up to limit simulations, newest first.
func (r *LoanRepositoryMemory) List(_ context.Context, limit int) ([]domain.LoanSimulation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.data)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.LoanSimulation, 0, n)
	for i := len(r.data) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, r.data[i])
	}
	return out, nil
}
