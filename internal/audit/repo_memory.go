package audit

import (
	"context"
	"sync"
)

// MemoryRepo keeps runs in memory. Used when no database is configured and in
// tests.
type MemoryRepo struct {
	mu   sync.Mutex
	runs []*Run
}

// NewMemoryRepo builds an empty repository.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

// Save implements Repository.
func (r *MemoryRepo) Save(_ context.Context, run *Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	return nil
}

// Runs returns the saved runs in save order.
func (r *MemoryRepo) Runs() []*Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Run, len(r.runs))
	copy(out, r.runs)
	return out
}
