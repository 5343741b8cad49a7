// Package service runs directory searches over a tenant's client set.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"crmdir/internal/directory/export"
	"crmdir/internal/directory/metrics"
	"crmdir/internal/directory/models"
	"crmdir/internal/directory/search"
	locmodels "crmdir/internal/location/models"
	id "crmdir/pkg/domain"
	dErrors "crmdir/pkg/domain-errors"
	"crmdir/pkg/platform/sentinel"
	"crmdir/pkg/requestcontext"
)

type ClientStore interface {
	ListByTenant(ctx context.Context, tenantID id.TenantID) ([]models.ClientRecord, error)
}

// AddressFormatter renders a client address for exports.
type AddressFormatter interface {
	FormatAddress(ctx context.Context, addr locmodels.Address) string
}

// Service loads a tenant's clients and runs the search engine over them.
type Service struct {
	clients   ClientStore
	addresses AddressFormatter
	logger    *slog.Logger
	metrics   *metrics.Metrics
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

// WithAddressFormatter renders addresses in exports. Without one, exports
// carry the street only.
func WithAddressFormatter(f AddressFormatter) Option {
	return func(s *Service) {
		s.addresses = f
	}
}

func New(clients ClientStore, opts ...Option) *Service {
	s := &Service{clients: clients}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// Search returns one page of the tenant's clients matching params.
func (s *Service) Search(ctx context.Context, tenantID id.TenantID, params models.SearchParams) (models.SearchResult, error) {
	start := time.Now()
	defer s.observeSearch(start)

	if tenantID.IsNil() {
		return models.SearchResult{Clients: []models.ClientRecord{}}, dErrors.New(dErrors.CodeUnauthorized, "tenant is required")
	}

	records, err := s.clients.ListByTenant(ctx, tenantID)
	if err != nil {
		err = translateStoreError(err)
		s.recordError(err)
		s.logger.ErrorContext(ctx, "failed to load clients",
			"request_id", requestcontext.RequestID(ctx),
			"tenant_id", tenantID,
			"error", err,
		)
		return models.SearchResult{Clients: []models.ClientRecord{}}, err
	}

	result, err := search.Search(records, params)
	if err != nil {
		s.recordError(err)
		return result, err
	}
	if s.metrics != nil {
		s.metrics.ObserveMatches(result.TotalCount)
	}

	s.logger.DebugContext(ctx, "directory search",
		"request_id", requestcontext.RequestID(ctx),
		"tenant_id", tenantID,
		"candidates", len(records),
		"total_count", result.TotalCount,
		"returned", len(result.Clients),
	)
	return result, nil
}

// Export writes the requested search page to w as an XLSX workbook.
func (s *Service) Export(ctx context.Context, tenantID id.TenantID, params models.SearchParams, w io.Writer) error {
	result, err := s.Search(ctx, tenantID, params)
	if err != nil {
		return err
	}

	rows := make([]export.Row, len(result.Clients))
	for i, r := range result.Clients {
		rows[i] = export.Row{Record: r, Address: r.Address.Street}
		if s.addresses != nil {
			rows[i].Address = s.addresses.FormatAddress(ctx, r.Address)
		}
	}
	if err := export.WriteXLSX(w, rows); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to export clients")
	}

	if s.metrics != nil {
		s.metrics.IncrementExports()
	}
	s.logger.InfoContext(ctx, "directory exported",
		"request_id", requestcontext.RequestID(ctx),
		"tenant_id", tenantID,
		"rows", len(rows),
	)
	return nil
}

func translateStoreError(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "client store unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load clients")
	}
}

func (s *Service) observeSearch(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveSearch(start)
	}
}

func (s *Service) recordError(err error) {
	if s.metrics != nil {
		s.metrics.RecordSearchError(string(dErrors.CodeOf(err)))
	}
}
