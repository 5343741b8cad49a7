// Package service loads a client's record sets and builds the timeline.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	dirmodels "crmdir/internal/directory/models"
	"crmdir/internal/timeline"
	"crmdir/internal/timeline/metrics"
	id "crmdir/pkg/domain"
	dErrors "crmdir/pkg/domain-errors"
	"crmdir/pkg/platform/sentinel"
	"crmdir/pkg/requestcontext"
)

// RecordStore serves the six record sets of one client.
type RecordStore interface {
	Interactions(ctx context.Context, tenantID id.TenantID, clientID id.ClientID) ([]timeline.Interaction, error)
	Transactions(ctx context.Context, tenantID id.TenantID, clientID id.ClientID) ([]timeline.Transaction, error)
	Projects(ctx context.Context, tenantID id.TenantID, clientID id.ClientID) ([]timeline.Project, error)
	Quotes(ctx context.Context, tenantID id.TenantID, clientID id.ClientID) ([]timeline.Quote, error)
	Meetings(ctx context.Context, tenantID id.TenantID, clientID id.ClientID) ([]timeline.Meeting, error)
	Tasks(ctx context.Context, tenantID id.TenantID, clientID id.ClientID) ([]timeline.Task, error)
}

// ClientLookup confirms the client exists within the tenant.
type ClientLookup interface {
	FindByID(ctx context.Context, tenantID id.TenantID, clientID id.ClientID) (dirmodels.ClientRecord, error)
}

// Query selects the visible part of a timeline. A zero Limit means the
// service's step; a negative one is rejected. An empty Kind means all kinds.
type Query struct {
	Limit int
	Kind  timeline.Kind
}

// Result is a windowed timeline plus per-kind totals of the whole feed.
type Result struct {
	timeline.Page
	Counts map[timeline.Kind]int
}

type Service struct {
	records RecordStore
	clients ClientLookup
	logger  *slog.Logger
	metrics *metrics.Metrics
	step    int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithStep sets both the initial window and the "load more" increment.
func WithStep(step int) Option {
	return func(s *Service) {
		if step > 0 {
			s.step = step
		}
	}
}

// New constructs a Service. clients may be nil, in which case unknown clients
// simply have empty timelines.
func New(records RecordStore, clients ClientLookup, opts ...Option) *Service {
	s := &Service{records: records, clients: clients, step: timeline.DefaultStep}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// Timeline loads the client's six record sets concurrently, merges them and
// returns the window selected by q.
func (s *Service) Timeline(ctx context.Context, tenantID id.TenantID, clientID id.ClientID, q Query) (*Result, error) {
	start := time.Now()
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "tenant is required")
	}
	if q.Limit < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "limit must not be negative")
	}
	if q.Kind != "" && !q.Kind.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid kind: "+string(q.Kind))
	}
	if q.Limit == 0 {
		q.Limit = s.step
	}

	if s.clients != nil {
		if _, err := s.clients.FindByID(ctx, tenantID, clientID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeNotFound, "client not found")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load client")
		}
	}

	src, err := s.load(ctx, tenantID, clientID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load timeline",
			"request_id", requestcontext.RequestID(ctx),
			"tenant_id", tenantID,
			"client_id", clientID,
			"error", err,
		)
		return nil, err
	}

	items := timeline.Aggregate(src)
	counts := timeline.CountByKind(items)
	if q.Kind != "" {
		items = timeline.OfKind(items, q.Kind)
	}
	page := timeline.Window(items, q.Limit, s.step)

	if s.metrics != nil {
		s.metrics.ObserveLoad(start)
		s.metrics.ObserveFeedSize(src.Len())
	}
	s.logger.DebugContext(ctx, "timeline built",
		"request_id", requestcontext.RequestID(ctx),
		"tenant_id", tenantID,
		"client_id", clientID,
		"total", page.TotalCount,
		"visible", len(page.Items),
	)
	return &Result{Page: page, Counts: counts}, nil
}

func (s *Service) load(ctx context.Context, tenantID id.TenantID, clientID id.ClientID) (timeline.Sources, error) {
	var src timeline.Sources
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		src.Interactions, err = s.records.Interactions(gctx, tenantID, clientID)
		return s.loadErr(timeline.KindInteraction, err)
	})
	g.Go(func() (err error) {
		src.Transactions, err = s.records.Transactions(gctx, tenantID, clientID)
		return s.loadErr(timeline.KindTransaction, err)
	})
	g.Go(func() (err error) {
		src.Projects, err = s.records.Projects(gctx, tenantID, clientID)
		return s.loadErr(timeline.KindProject, err)
	})
	g.Go(func() (err error) {
		src.Quotes, err = s.records.Quotes(gctx, tenantID, clientID)
		return s.loadErr(timeline.KindQuote, err)
	})
	g.Go(func() (err error) {
		src.Meetings, err = s.records.Meetings(gctx, tenantID, clientID)
		return s.loadErr(timeline.KindMeeting, err)
	})
	g.Go(func() (err error) {
		src.Tasks, err = s.records.Tasks(gctx, tenantID, clientID)
		return s.loadErr(timeline.KindTask, err)
	})
	if err := g.Wait(); err != nil {
		return timeline.Sources{}, err
	}
	return src, nil
}

func (s *Service) loadErr(kind timeline.Kind, err error) error {
	if err == nil {
		return nil
	}
	if s.metrics != nil {
		s.metrics.RecordLoadError(string(kind))
	}
	code := dErrors.CodeInternal
	if errors.Is(err, sentinel.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		code = dErrors.CodeUnavailable
	}
	return dErrors.Wrap(err, code, fmt.Sprintf("failed to load %s records", kind))
}
