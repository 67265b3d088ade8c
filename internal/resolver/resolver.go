// Package resolver produces the visible category set for a viewer, caching
// both the raw admin fetch and the per-viewer filtered result so profession
// or country switches stay near-zero latency.
package resolver

import (
	"context"
	"time"

	"github.com/allmytab/startpage/internal/cache"
	"github.com/allmytab/startpage/internal/domain"
	"github.com/allmytab/startpage/internal/logger"
)

const rawCacheKey = "admin"

// CategoryStore is the slice of the document store the resolver reads.
type CategoryStore interface {
	GetAdminCategories(ctx context.Context) ([]*domain.Category, error)
	GetUserCategories(ctx context.Context, viewerID string) ([]*domain.Category, error)
}

// Resolver fetches and filters categories. It owns the category caches:
// no other component touches their entries.
type Resolver struct {
	store     CategoryStore
	log       logger.Logger
	filterTTL time.Duration // filtered result per (viewer, profession, country)
	rawTTL    time.Duration // raw admin category fetch

	raw      *cache.Cache[[]*domain.Category]
	users    *cache.Cache[[]*domain.Category]
	filtered *cache.Cache[[]*domain.Category]
}

func New(store CategoryStore, log logger.Logger, filterTTL, rawTTL time.Duration) *Resolver {
	return &Resolver{
		store:     store,
		log:       log,
		filterTTL: filterTTL,
		rawTTL:    rawTTL,
		raw:       cache.New[[]*domain.Category]("categories:raw"),
		users:     cache.New[[]*domain.Category]("categories:user"),
		filtered:  cache.New[[]*domain.Category]("categories:filtered"),
	}
}

// SetClock replaces the cache time source, for tests.
func (r *Resolver) SetClock(now func() time.Time) {
	r.raw.SetClock(now)
	r.users.SetClock(now)
	r.filtered.SetClock(now)
}

func filterKey(v domain.Viewer) string {
	return v.ID + "|" + v.Profession + "|" + v.Country
}

// Resolve returns the viewer's visible categories, serving the filtered
// cache when fresh. Store read failures surface as an empty set plus the
// error; the resolver never retries (category lists are cheap to refetch
// wholesale).
func (r *Resolver) Resolve(ctx context.Context, v domain.Viewer) ([]*domain.Category, error) {
	if visible, ok := r.filtered.Fresh(filterKey(v), r.filterTTL); ok {
		return visible, nil
	}

	admin, ok := r.raw.Fresh(rawCacheKey, r.rawTTL)
	if !ok {
		var err error
		admin, err = r.store.GetAdminCategories(ctx)
		if err != nil {
			r.log.Warn("failed to fetch admin categories", logger.Error(err))
			return nil, err
		}
		r.raw.Set(rawCacheKey, admin)
	}

	user, err := r.store.GetUserCategories(ctx, v.ID)
	if err != nil {
		r.log.Warn("failed to fetch user categories",
			logger.String("viewer_id", v.ID),
			logger.Error(err))
		return nil, err
	}
	r.users.Set(v.ID, user)

	return r.filter(v, user, admin), nil
}

// Refilter recomputes the visible set synchronously from the last full
// fetches, ignoring TTLs. Called on profession or country change so the
// switch never waits for a store round-trip; falls back to Resolve when no
// prior fetch exists.
func (r *Resolver) Refilter(ctx context.Context, v domain.Viewer) ([]*domain.Category, error) {
	r.filtered.Invalidate(filterKey(v))

	adminEntry, haveAdmin := r.raw.Get(rawCacheKey)
	userEntry, haveUser := r.users.Get(v.ID)
	if !haveAdmin || !haveUser {
		return r.Resolve(ctx, v)
	}
	return r.filter(v, userEntry.Value, adminEntry.Value), nil
}

func (r *Resolver) filter(v domain.Viewer, user, admin []*domain.Category) []*domain.Category {
	all := make([]*domain.Category, 0, len(user)+len(admin))
	all = append(all, user...)
	all = append(all, admin...)

	visible := domain.VisibleCategories(v, all)
	r.filtered.Set(filterKey(v), visible)
	return visible
}

// InvalidateViewer drops every cached result for one viewer. Called when
// the viewer's own categories change (create, delete, favorites creation).
func (r *Resolver) InvalidateViewer(v domain.Viewer) {
	r.users.Invalidate(v.ID)
	r.filtered.Invalidate(filterKey(v))
}

// InvalidateAdmin drops the raw admin fetch, forcing the next resolve to
// hit the store. Called after a seed reload.
func (r *Resolver) InvalidateAdmin() {
	r.raw.Invalidate(rawCacheKey)
	r.filtered.InvalidateAll()
}

// Prune drops entries older than age from all owned caches and returns how
// many were removed.
func (r *Resolver) Prune(age time.Duration) int {
	return r.raw.PruneOlderThan(age) +
		r.users.PruneOlderThan(age) +
		r.filtered.PruneOlderThan(age)
}
