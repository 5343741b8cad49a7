// Package resolver turns location ids into display names.
//
// Resolution degrades through four steps and never fails:
//
//  1. the shared append-only cache
//  2. a fetch of every child of the parent from the remote store, merged into the cache
//  3. the bundled master dataset, filtered by parent
//  4. the id itself
//
// Concurrent resolutions that need the same (level, parent) group share one fetch.
package resolver

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"crmdir/internal/location/cache"
	"crmdir/internal/location/masterdata"
	"crmdir/internal/location/metrics"
	"crmdir/internal/location/models"
	"crmdir/pkg/requestcontext"
)

const defaultFetchTimeout = 5 * time.Second

// Store is the remote location collection.
type Store interface {
	ChildrenOf(ctx context.Context, level models.Level, parentID string) ([]models.Entity, error)
}

// Resolution sources, used as metric labels and in debug logs.
const (
	SourceCache      = "cache"
	SourceRemote     = "remote"
	SourceMasterData = "masterdata"
	SourceIdentity   = "identity"
)

// Resolver resolves location names against a cache, a store and the master dataset.
type Resolver struct {
	cache        *cache.Cache
	store        Store
	master       *masterdata.Dataset
	logger       *slog.Logger
	metrics      *metrics.Metrics
	breaker      *circuitBreaker
	fetchTimeout time.Duration
	group        singleflight.Group
}

type Option func(*Resolver)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// WithFetchTimeout bounds each remote fetch. The fetch is detached from the
// caller's cancellation, so this is the only limit on its lifetime.
func WithFetchTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.fetchTimeout = d
		}
	}
}

// WithCircuitBreaker configures how many consecutive store failures open the
// circuit, how many successful probes close it, and how long to wait before probing.
func WithCircuitBreaker(failures, successes int, cooldown time.Duration) Option {
	return func(r *Resolver) {
		r.breaker = newCircuitBreaker(failures, successes, cooldown)
	}
}

// New constructs a Resolver. cache is required; store and master may be nil.
func New(c *cache.Cache, store Store, master *masterdata.Dataset, opts ...Option) *Resolver {
	r := &Resolver{
		cache:        c,
		store:        store,
		master:       master,
		fetchTimeout: defaultFetchTimeout,
		breaker:      newCircuitBreaker(5, 3, 30*time.Second),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	return r
}

// ResolveName returns the display name for id at level. parentID scopes the
// remote fetch and the master-dataset fallback; countries need no parent.
func (r *Resolver) ResolveName(ctx context.Context, level models.Level, id, parentID string) string {
	name, _ := r.resolve(ctx, level, strings.TrimSpace(id), strings.TrimSpace(parentID))
	return name
}

// Resolve is ResolveName that also reports which step produced the name.
func (r *Resolver) Resolve(ctx context.Context, level models.Level, id, parentID string) (string, string) {
	return r.resolve(ctx, level, strings.TrimSpace(id), strings.TrimSpace(parentID))
}

func (r *Resolver) resolve(ctx context.Context, level models.Level, id, parentID string) (string, string) {
	if id == "" || !level.IsValid() {
		return r.done(level, id, SourceIdentity)
	}

	if e, ok := r.cache.Find(level, id); ok {
		return r.done(level, e.Name, SourceCache)
	}

	if parentID != "" || level == models.LevelCountry {
		if r.fetchIntoCache(ctx, level, parentID) {
			if e, ok := r.cache.Find(level, id); ok {
				return r.done(level, e.Name, SourceRemote)
			}
		}
	}

	for _, e := range r.master.ChildrenOf(level, parentID) {
		if e.Matches(level, id) {
			return r.done(level, e.Name, SourceMasterData)
		}
	}

	r.logger.DebugContext(ctx, "location unresolved, returning id",
		"request_id", requestcontext.RequestID(ctx),
		"level", level,
		"id", id,
		"parent_id", parentID,
	)
	return r.done(level, id, SourceIdentity)
}

func (r *Resolver) done(level models.Level, name, source string) (string, string) {
	if r.metrics != nil {
		r.metrics.RecordResolution(string(level), source)
	}
	return name, source
}

// fetchIntoCache loads the children of parentID at level and merges them into the
// cache. It reports whether the store returned any entities. Store errors are
// logged and reported as "nothing found".
func (r *Resolver) fetchIntoCache(ctx context.Context, level models.Level, parentID string) bool {
	if r.store == nil {
		return false
	}
	if !r.breaker.Allow() {
		r.recordFetchError(level, "circuit_open")
		return false
	}

	key := string(level) + "|" + parentID
	ch := r.group.DoChan(key, func() (any, error) {
		return r.fetch(context.WithoutCancel(ctx), level, parentID)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			r.logger.WarnContext(ctx, "location fetch failed, falling back to master dataset",
				"request_id", requestcontext.RequestID(ctx),
				"level", level,
				"parent_id", parentID,
				"shared", res.Shared,
				"error", res.Err,
			)
			return false
		}
		return res.Val.(int) > 0
	case <-ctx.Done():
		// The shared fetch keeps running and still lands in the cache.
		return false
	}
}

// fetch runs once per in-flight (level, parent) group and returns the number of
// entities the store produced.
func (r *Resolver) fetch(ctx context.Context, level models.Level, parentID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	start := time.Now()
	entities, err := r.store.ChildrenOf(ctx, level, parentID)
	if r.metrics != nil {
		r.metrics.ObserveFetch(string(level), start)
	}
	if err != nil {
		r.breaker.RecordFailure()
		r.recordFetchError(level, "store_error")
		return 0, err
	}
	r.breaker.RecordSuccess()

	added := r.cache.Append(level, entities...)
	if r.metrics != nil {
		r.metrics.SetCacheSize(string(level), r.cache.Len(level))
	}
	r.logger.DebugContext(ctx, "location children fetched",
		"level", level,
		"parent_id", parentID,
		"returned", len(entities),
		"added", added,
	)
	return len(entities), nil
}

func (r *Resolver) recordFetchError(level models.Level, reason string) {
	if r.metrics != nil {
		r.metrics.RecordFetchError(string(level), reason)
	}
}

// WarmFromMasterData copies the master-dataset children of parentID at level into
// the cache and returns how many were new. ResolveName never does this on its own.
func (r *Resolver) WarmFromMasterData(level models.Level, parentID string) int {
	added := r.cache.Append(level, r.master.ChildrenOf(level, parentID)...)
	if r.metrics != nil {
		r.metrics.SetCacheSize(string(level), r.cache.Len(level))
	}
	return added
}

// Children lists the entities at level under parentID, for address pickers.
// It reads the cache, then fetches the group into the cache, then falls back to
// the master dataset. The result is never nil.
func (r *Resolver) Children(ctx context.Context, level models.Level, parentID string) []models.Entity {
	parentID = strings.TrimSpace(parentID)
	if !level.IsValid() {
		return []models.Entity{}
	}
	if out := r.cache.Children(level, parentID); len(out) > 0 {
		return out
	}
	if parentID != "" || level == models.LevelCountry {
		if r.fetchIntoCache(ctx, level, parentID) {
			if out := r.cache.Children(level, parentID); len(out) > 0 {
				return out
			}
		}
	}
	return append([]models.Entity{}, r.master.ChildrenOf(level, parentID)...)
}

// FormatAddress renders an address as "street, district, municipality,
// department, country", resolving each location id against its parent and
// skipping empty parts.
func (r *Resolver) FormatAddress(ctx context.Context, addr models.Address) string {
	parts := make([]string, 0, 6)
	if s := strings.TrimSpace(addr.Street); s != "" {
		parts = append(parts, s)
	}
	if addr.District != "" {
		parts = append(parts, r.ResolveName(ctx, models.LevelDistrict, addr.District, addr.City))
	}
	if addr.City != "" {
		parts = append(parts, r.ResolveName(ctx, models.LevelMunicipality, addr.City, addr.State))
	}
	if addr.State != "" {
		parts = append(parts, r.ResolveName(ctx, models.LevelDepartment, addr.State, addr.Country))
	}
	if addr.Country != "" {
		parts = append(parts, r.ResolveName(ctx, models.LevelCountry, addr.Country, ""))
	}
	if pc := strings.TrimSpace(addr.PostalCode); pc != "" {
		parts = append(parts, pc)
	}
	return strings.Join(parts, ", ")
}
