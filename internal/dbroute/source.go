package dbroute

import (
	"context"
	"fmt"
	"sync"
)

// FinderFunc returns every entity of one type.
type FinderFunc func(ctx context.Context) ([]Entity, error)

// EntityRegistry maps entity types to their finders and implements
// EntitySource for the Loader.
type EntityRegistry struct {
	mu sync.RWMutex
	m  map[string]FinderFunc
}

// NewEntityRegistry returns an empty registry.
func NewEntityRegistry() *EntityRegistry {
	return &EntityRegistry{m: map[string]FinderFunc{}}
}

// Register binds entityType to fn, replacing any previous finder.
func (r *EntityRegistry) Register(entityType string, fn FinderFunc) {
	r.mu.Lock()
	r.m[entityType] = fn
	r.mu.Unlock()
}

// FindAll runs the finder for entityType.
func (r *EntityRegistry) FindAll(ctx context.Context, entityType string) ([]Entity, error) {
	r.mu.RLock()
	fn, ok := r.m[entityType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoEntitySource, entityType)
	}
	return fn(ctx)
}
