package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"crmdir/internal/timeline"
	id "crmdir/pkg/domain"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store  *InMemoryStore
	tenant id.TenantID
	client id.ClientID
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.tenant = id.TenantID(uuid.New())
	s.client = id.ClientID(uuid.New())
}

func (s *InMemoryStoreSuite) TestAddRoutesByKind() {
	ctx := context.Background()
	s.Require().NoError(s.store.Add(ctx, s.tenant, s.client,
		timeline.Interaction{ID: id.RecordID(uuid.New()), Summary: "first call"},
		timeline.Task{ID: id.RecordID(uuid.New()), Title: "send quote"},
		timeline.Interaction{ID: id.RecordID(uuid.New()), Summary: "follow up"},
	))

	interactions, err := s.store.Interactions(ctx, s.tenant, s.client)
	s.Require().NoError(err)
	s.Require().Len(interactions, 2)
	s.Equal("first call", interactions[0].Summary)
	s.Equal("follow up", interactions[1].Summary)

	tasks, err := s.store.Tasks(ctx, s.tenant, s.client)
	s.Require().NoError(err)
	s.Len(tasks, 1)

	quotes, err := s.store.Quotes(ctx, s.tenant, s.client)
	s.Require().NoError(err)
	s.Empty(quotes)
}

func (s *InMemoryStoreSuite) TestScopedByTenantAndClient() {
	ctx := context.Background()
	s.Require().NoError(s.store.Add(ctx, s.tenant, s.client,
		timeline.Meeting{ID: id.RecordID(uuid.New()), Title: "kickoff"}))

	other, err := s.store.Meetings(ctx, id.TenantID(uuid.New()), s.client)
	s.Require().NoError(err)
	s.Empty(other)

	otherClient, err := s.store.Meetings(ctx, s.tenant, id.ClientID(uuid.New()))
	s.Require().NoError(err)
	s.Empty(otherClient)
}
