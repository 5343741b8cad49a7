// Package store provides backends for the remote location collection.
// Every backend answers "children of this parent at this level".
package store

import (
	"context"
	"sync"

	"crmdir/internal/location/models"
)

// InMemory is a map-backed store used in development and tests.
type InMemory struct {
	mu       sync.RWMutex
	children map[models.Level]map[string][]models.Entity
}

func NewInMemory() *InMemory {
	return &InMemory{children: make(map[models.Level]map[string][]models.Entity)}
}

func (s *InMemory) ChildrenOf(_ context.Context, level models.Level, parentID string) ([]models.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Entity(nil), s.children[level][parentID]...), nil
}

// Upsert stores entities at level, replacing any with the same id under the same parent.
func (s *InMemory) Upsert(_ context.Context, level models.Level, entities ...models.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byParent, ok := s.children[level]
	if !ok {
		byParent = make(map[string][]models.Entity)
		s.children[level] = byParent
	}
	for _, e := range entities {
		list := byParent[e.ParentID]
		replaced := false
		for i := range list {
			if list[i].ID == e.ID {
				list[i] = e
				replaced = true
				break
			}
		}
		if !replaced {
			list = append(list, e)
		}
		byParent[e.ParentID] = list
	}
	return nil
}
