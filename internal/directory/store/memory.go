// Package store holds tenant-scoped client document stores.
package store

import (
	"context"
	"slices"
	"sync"

	"crmdir/internal/directory/models"
	id "crmdir/pkg/domain"
	"crmdir/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	clients map[id.TenantID]map[id.ClientID]models.ClientRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{clients: make(map[id.TenantID]map[id.ClientID]models.ClientRecord)}
}

func (s *InMemoryStore) Save(_ context.Context, record models.ClientRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID, ok := s.clients[record.TenantID]
	if !ok {
		byID = make(map[id.ClientID]models.ClientRecord)
		s.clients[record.TenantID] = byID
	}
	record.Tags = slices.Clone(record.Tags)
	byID[record.ID] = record
	return nil
}

// ListByTenant returns every client of tenantID ordered by creation time.
func (s *InMemoryStore) ListByTenant(_ context.Context, tenantID id.TenantID) ([]models.ClientRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ClientRecord, 0, len(s.clients[tenantID]))
	for _, r := range s.clients[tenantID] {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b models.ClientRecord) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
	return out, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, tenantID id.TenantID, clientID id.ClientID) (models.ClientRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.clients[tenantID][clientID]; ok {
		return r, nil
	}
	return models.ClientRecord{}, sentinel.ErrNotFound
}
