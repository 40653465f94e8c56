package snapshot

import (
	"context"
	"slices"
	"sync"
)

// MemoryRepository keeps snapshots in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]*Snapshot
	order []string // insertion order, oldest first
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]*Snapshot)}
}

func (r *MemoryRepository) Save(_ context.Context, s *Snapshot) error {
	if err := validate(s); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[s.ID]; !ok {
		r.order = append(r.order, s.ID)
	}
	cp := *s
	r.byID[s.ID] = &cp
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, notFound(id)
	}
	cp := *s
	return &cp, nil
}

func (r *MemoryRepository) Latest(ctx context.Context, kbID string) (*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range slices.Backward(r.order) {
		if s := r.byID[id]; s.KnowledgeID == kbID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, notFound("for " + kbID)
}

func (r *MemoryRepository) List(_ context.Context, kbID string, limit int) ([]*Snapshot, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Snapshot
	for _, id := range slices.Backward(r.order) {
		s := r.byID[id]
		if kbID != "" && s.KnowledgeID != kbID {
			continue
		}
		cp := *s
		cp.Graph = nil
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return notFound(id)
	}
	delete(r.byID, id)
	r.order = slices.DeleteFunc(r.order, func(v string) bool { return v == id })
	return nil
}

func (r *MemoryRepository) Close(context.Context) error { return nil }

var _ Repository = (*MemoryRepository)(nil)
