// Package store holds the six timeline record sets per tenant and client.
package store

import (
	"context"
	"slices"
	"sync"

	"crmdir/internal/timeline"
	id "crmdir/pkg/domain"
)

type owner struct {
	tenant id.TenantID
	client id.ClientID
}

// InMemoryStore keeps each client's records in insertion order.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[owner]*timeline.Sources
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[owner]*timeline.Sources)}
}

// Add appends items to the client's record sets, routing each by its kind.
func (s *InMemoryStore) Add(_ context.Context, tenantID id.TenantID, clientID id.ClientID, items ...timeline.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := owner{tenant: tenantID, client: clientID}
	src, ok := s.records[key]
	if !ok {
		src = &timeline.Sources{}
		s.records[key] = src
	}
	for _, it := range items {
		switch v := it.(type) {
		case timeline.Interaction:
			src.Interactions = append(src.Interactions, v)
		case timeline.Transaction:
			src.Transactions = append(src.Transactions, v)
		case timeline.Project:
			src.Projects = append(src.Projects, v)
		case timeline.Quote:
			src.Quotes = append(src.Quotes, v)
		case timeline.Meeting:
			src.Meetings = append(src.Meetings, v)
		case timeline.Task:
			src.Tasks = append(src.Tasks, v)
		}
	}
	return nil
}

func (s *InMemoryStore) sources(tenantID id.TenantID, clientID id.ClientID) timeline.Sources {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if src, ok := s.records[owner{tenant: tenantID, client: clientID}]; ok {
		return *src
	}
	return timeline.Sources{}
}

func (s *InMemoryStore) Interactions(_ context.Context, tenantID id.TenantID, clientID id.ClientID) ([]timeline.Interaction, error) {
	return slices.Clone(s.sources(tenantID, clientID).Interactions), nil
}

func (s *InMemoryStore) Transactions(_ context.Context, tenantID id.TenantID, clientID id.ClientID) ([]timeline.Transaction, error) {
	return slices.Clone(s.sources(tenantID, clientID).Transactions), nil
}

func (s *InMemoryStore) Projects(_ context.Context, tenantID id.TenantID, clientID id.ClientID) ([]timeline.Project, error) {
	return slices.Clone(s.sources(tenantID, clientID).Projects), nil
}

func (s *InMemoryStore) Quotes(_ context.Context, tenantID id.TenantID, clientID id.ClientID) ([]timeline.Quote, error) {
	return slices.Clone(s.sources(tenantID, clientID).Quotes), nil
}

func (s *InMemoryStore) Meetings(_ context.Context, tenantID id.TenantID, clientID id.ClientID) ([]timeline.Meeting, error) {
	return slices.Clone(s.sources(tenantID, clientID).Meetings), nil
}

func (s *InMemoryStore) Tasks(_ context.Context, tenantID id.TenantID, clientID id.ClientID) ([]timeline.Task, error) {
	return slices.Clone(s.sources(tenantID, clientID).Tasks), nil
}
