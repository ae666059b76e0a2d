package leads

import (
	"context"
	"sync"
)

// Repository defines the persistence contract for accepted leads. Insert
// writes exactly one record; there is no update or delete path.
type Repository interface {
	Insert(ctx context.Context, lead *Lead) error
	List(ctx context.Context) ([]*Lead, error)
}

// InMemoryRepository stores leads in memory, newest first on List.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads []*Lead
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Insert appends the lead.
func (r *InMemoryRepository) Insert(_ context.Context, lead *Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leads = append(r.leads, lead)
	return nil
}

// List returns all leads, newest first.
func (r *InMemoryRepository) List(_ context.Context) ([]*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Lead, 0, len(r.leads))
	for i := len(r.leads) - 1; i >= 0; i-- {
		out = append(out, r.leads[i])
	}
	return out, nil
}
