// Package memory provides in-process adapters: a latest-scene store and a
// subject-backed input source with a scripted autopilot.
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/flock/pkg/domain"
)

// Store implements ports.SceneStore in memory.
// Safe for concurrent use.
type Store struct {
	latest    domain.Scene
	published uint64
	mu        sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{}
}

// Publish keeps a copy of scene as the latest one.
func (s *Store) Publish(ctx context.Context, scene domain.Scene) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := scene.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = copied
	s.published++
	return nil
}

// Latest returns a copy of the most recently published scene.
func (s *Store) Latest(ctx context.Context) (domain.Scene, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.published == 0 {
		return domain.Scene{}, domain.ErrNoScene
	}
	return s.latest.Clone(), nil
}

// Published returns how many scenes were published.
func (s *Store) Published() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.published
}
