package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	dirmodels "crmdir/internal/directory/models"
	dirstore "crmdir/internal/directory/store"
	"crmdir/internal/timeline"
	"crmdir/internal/timeline/metrics"
	"crmdir/internal/timeline/store"
	id "crmdir/pkg/domain"
	dErrors "crmdir/pkg/domain-errors"
	"crmdir/pkg/platform/sentinel"
)

type failingQuotes struct {
	*store.InMemoryStore
	err error
}

func (f failingQuotes) Quotes(context.Context, id.TenantID, id.ClientID) ([]timeline.Quote, error) {
	return nil, f.err
}

type ServiceSuite struct {
	suite.Suite
	records *store.InMemoryStore
	clients *dirstore.InMemoryStore
	metrics *metrics.Metrics
	logger  *slog.Logger
	tenant  id.TenantID
	client  id.ClientID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	ctx := context.Background()
	s.records = store.NewInMemoryStore()
	s.clients = dirstore.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	s.tenant = id.TenantID(uuid.New())
	s.client = id.ClientID(uuid.New())

	s.Require().NoError(s.clients.Save(ctx, dirmodels.ClientRecord{
		ID: s.client, TenantID: s.tenant, Name: "Acme", CreatedAt: time.Now(),
	}))

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	items := make([]timeline.Item, 0, 25)
	for i := range 20 {
		at := base.AddDate(0, 0, -i)
		items = append(items, timeline.Interaction{ID: id.RecordID(uuid.New()), ClientID: s.client, Summary: fmt.Sprintf("call %d", i), Date: &at})
	}
	for i := range 5 {
		due := base.AddDate(0, 1, i)
		items = append(items, timeline.Task{ID: id.RecordID(uuid.New()), ClientID: s.client, Title: fmt.Sprintf("task %d", i), DueDate: &due})
	}
	s.Require().NoError(s.records.Add(ctx, s.tenant, s.client, items...))
}

func (s *ServiceSuite) newService(records RecordStore, opts ...Option) *Service {
	opts = append([]Option{WithLogger(s.logger), WithMetrics(s.metrics)}, opts...)
	return New(records, s.clients, opts...)
}

func (s *ServiceSuite) TestTimeline() {
	ctx := context.Background()
	svc := s.newService(s.records)

	s.Run("default window is one step", func() {
		res, err := svc.Timeline(ctx, s.tenant, s.client, Query{})
		s.Require().NoError(err)
		s.Len(res.Items, timeline.DefaultStep)
		s.Equal(25, res.TotalCount)
		s.True(res.HasMore)
		s.Equal(20, res.NextLimit)
		s.Equal(timeline.KindTask, res.Items[0].Kind(), "future-dated tasks sort first")
	})

	s.Run("load more until everything is visible", func() {
		res, err := svc.Timeline(ctx, s.tenant, s.client, Query{Limit: 30})
		s.Require().NoError(err)
		s.Len(res.Items, 25)
		s.False(res.HasMore)
	})

	s.Run("kind view windows the filtered feed", func() {
		res, err := svc.Timeline(ctx, s.tenant, s.client, Query{Kind: timeline.KindTask})
		s.Require().NoError(err)
		s.Len(res.Items, 5)
		s.Equal(5, res.TotalCount)
		s.False(res.HasMore)
		s.Equal(20, res.Counts[timeline.KindInteraction], "counts cover the whole feed")
	})

	s.Run("custom step", func() {
		res, err := s.newService(s.records, WithStep(4)).Timeline(ctx, s.tenant, s.client, Query{})
		s.Require().NoError(err)
		s.Len(res.Items, 4)
		s.Equal(8, res.NextLimit)
	})
}

func (s *ServiceSuite) TestTimelineErrors() {
	ctx := context.Background()

	s.Run("unknown client", func() {
		_, err := s.newService(s.records).Timeline(ctx, s.tenant, id.ClientID(uuid.New()), Query{})
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})

	s.Run("client of another tenant", func() {
		_, err := s.newService(s.records).Timeline(ctx, id.TenantID(uuid.New()), s.client, Query{})
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})

	s.Run("negative limit", func() {
		_, err := s.newService(s.records).Timeline(ctx, s.tenant, s.client, Query{Limit: -1})
		s.True(dErrors.Is(err, dErrors.CodeValidation))
	})

	s.Run("unknown kind", func() {
		_, err := s.newService(s.records).Timeline(ctx, s.tenant, s.client, Query{Kind: "invoice"})
		s.True(dErrors.Is(err, dErrors.CodeValidation))
	})

	s.Run("one failing record set fails the load", func() {
		failing := failingQuotes{InMemoryStore: s.records, err: fmt.Errorf("timeout: %w", sentinel.ErrUnavailable)}
		_, err := s.newService(failing).Timeline(ctx, s.tenant, s.client, Query{})
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeUnavailable))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.LoadErrors.WithLabelValues(string(timeline.KindQuote))))
	})

	s.Run("missing tenant", func() {
		_, err := s.newService(s.records).Timeline(ctx, id.TenantID(uuid.Nil), s.client, Query{})
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
	})
}
