package snapshot

import (
	"context"
	"sync"

	"github.com/maildeck/server/internal/models"
)

// Repository persists the full mailbox snapshot. Load returns (nil, nil)
// when no snapshot has ever been saved; the store treats that as a fresh
// install and writes its seed.
type Repository interface {
	Load(ctx context.Context) (*models.Snapshot, error)
	Save(ctx context.Context, snap *models.Snapshot) error
}

// MemoryRepository keeps the last saved snapshot in memory. It backs
// tests and ephemeral runs; production uses PostgresRepository.
type MemoryRepository struct {
	mu    sync.Mutex
	snap  *models.Snapshot
	saves int
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Load returns the last saved snapshot, or (nil, nil) if none.
func (r *MemoryRepository) Load(_ context.Context) (*models.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap, nil
}

// Save stores the snapshot, replacing any previous one.
func (r *MemoryRepository) Save(_ context.Context, snap *models.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap = snap
	r.saves++
	return nil
}

// SaveCount returns how many times Save has been called. Tests use it to
// check the write-through contract.
func (r *MemoryRepository) SaveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}
