package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"goaltick/internal/model"
)

// MemoryRepo is an in-memory GroupRepo used by tests and the -once dry-run
// mode.
type MemoryRepo struct {
	mu     sync.RWMutex
	groups map[string]*model.DayGroup
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{groups: map[string]*model.DayGroup{}}
}

func (r *MemoryRepo) FindByName(_ context.Context, name string) (*model.DayGroup, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[name]
	return g, ok, nil
}

func (r *MemoryRepo) Add(_ context.Context, g *model.DayGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[g.Name]; ok {
		return fmt.Errorf("%w: %s", ErrExists, g.Name)
	}
	r.groups[g.Name] = g
	return nil
}

func (r *MemoryRepo) AddOrUpdate(_ context.Context, g *model.DayGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[g.Name] = g
	return nil
}

func (r *MemoryRepo) List(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.groups))
	for name := range r.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
