// Package aggregator assembles the visible bookmark set of a category:
// the viewer's own bookmarks merged with operator-curated ones,
// deduplicated by normalized URL (the viewer's version wins), filtered by
// the viewer's hidden set and sorted by explicit order. Fetches are
// coalesced per category, cached with a TTL, and retried with exponential
// backoff on transient store failures.
package aggregator

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/allmytab/startpage/internal/apperror"
	"github.com/allmytab/startpage/internal/cache"
	"github.com/allmytab/startpage/internal/domain"
	"github.com/allmytab/startpage/internal/logger"
)

// State of a per-category fetch.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Result is the snapshot a consumer renders for one category.
type Result struct {
	State     State              `json:"state"`
	Bookmarks []*domain.Bookmark `json:"bookmarks,omitempty"`
	Err       string             `json:"error,omitempty"`
}

// Store is the slice of the document store the aggregator talks to.
type Store interface {
	GetAdminBookmarks(ctx context.Context, categoryID string) ([]*domain.Bookmark, error)
	GetUserBookmarks(ctx context.Context, viewerID, categoryID string) ([]*domain.Bookmark, error)
	GetUserBookmark(ctx context.Context, viewerID, id string) (*domain.Bookmark, error)
	SaveUserBookmark(ctx context.Context, viewerID string, b *domain.Bookmark) error
	DeleteUserBookmark(ctx context.Context, viewerID string, b *domain.Bookmark) error
	DeleteUserBookmarksByCategory(ctx context.Context, viewerID, categoryID string) error
	DeleteUserCategory(ctx context.Context, viewerID, id string) error
	GetProfile(ctx context.Context, viewerID string) (*domain.Profile, error)
	SaveProfile(ctx context.Context, p *domain.Profile) error
}

// Options tune the fetch behavior. Zero values fall back to the reference
// defaults.
type Options struct {
	TTL         time.Duration // Ready entry lifetime (default 5m)
	Retries     int           // retry budget after the first attempt (default 3)
	BackoffBase time.Duration // first backoff, doubled per retry (default 1s)
	FetchDelay  time.Duration // pause between user and admin fetch (default 100ms)
	StaggerStep time.Duration // per-category launch delay in FetchMany (default 500ms)
}

func (o *Options) withDefaults() {
	if o.TTL == 0 {
		o.TTL = 5 * time.Minute
	}
	if o.Retries == 0 {
		o.Retries = 3
	}
	if o.BackoffBase == 0 {
		o.BackoffBase = time.Second
	}
	if o.FetchDelay == 0 {
		o.FetchDelay = 100 * time.Millisecond
	}
	if o.StaggerStep == 0 {
		o.StaggerStep = 500 * time.Millisecond
	}
}

type entry struct {
	state     State
	bookmarks []*domain.Bookmark
	errMsg    string
}

// Aggregator owns the per-category bookmark cache: no other component
// touches its entries.
type Aggregator struct {
	store Store
	log   logger.Logger
	opts  Options

	entries *cache.Cache[*entry]
	flights singleflight.Group
	sleep   func(ctx context.Context, d time.Duration) error
}

func New(store Store, log logger.Logger, opts Options) *Aggregator {
	opts.withDefaults()
	return &Aggregator{
		store:   store,
		log:     log,
		opts:    opts,
		entries: cache.New[*entry]("bookmarks:bycat"),
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func entryKey(viewerID, categoryID string) string {
	return viewerID + "|" + categoryID
}

// Fetch returns the bookmark set for one category, serving the cache when
// fresh. Concurrent callers for the same category share a single in-flight
// fetch. A terminal Error entry is served as-is until Refetch.
func (a *Aggregator) Fetch(ctx context.Context, v domain.Viewer, categoryID string) Result {
	key := entryKey(v.ID, categoryID)

	if e, ok := a.entries.Fresh(key, a.opts.TTL); ok {
		switch e.state {
		case StateReady:
			return Result{State: StateReady, Bookmarks: e.bookmarks}
		case StateError:
			// no automatic retries after budget exhaustion
			return Result{State: StateError, Err: e.errMsg}
		}
	} else if e, ok := a.entries.Get(key); ok && e.Value.state == StateError {
		// error entries do not expire with the TTL; only an explicit
		// Refetch clears them
		return Result{State: StateError, Err: e.Value.errMsg}
	}

	res, _, _ := a.flights.Do(key, func() (interface{}, error) {
		return a.fetchWithRetry(ctx, v, categoryID), nil
	})
	return res.(Result)
}

// State reports the current fetch state without triggering a fetch.
func (a *Aggregator) State(v domain.Viewer, categoryID string) Result {
	e, ok := a.entries.Get(entryKey(v.ID, categoryID))
	if !ok {
		return Result{State: StateIdle}
	}
	return Result{State: e.Value.state, Bookmarks: e.Value.bookmarks, Err: e.Value.errMsg}
}

// Refetch drops any cached entry (including a terminal error) and fetches
// again. This is the consumer's explicit re-request.
func (a *Aggregator) Refetch(ctx context.Context, v domain.Viewer, categoryID string) Result {
	a.entries.Invalidate(entryKey(v.ID, categoryID))
	return a.Fetch(ctx, v, categoryID)
}

// FetchMany loads several categories, staggering launches by an
// index-proportional delay to bound concurrent store load when a whole
// page of categories opens at once.
func (a *Aggregator) FetchMany(ctx context.Context, v domain.Viewer, categoryIDs []string) map[string]Result {
	results := make(map[string]Result, len(categoryIDs))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for i, id := range categoryIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_ = a.sleep(ctx, time.Duration(i)*a.opts.StaggerStep)
			res := a.Fetch(ctx, v, id)
			mu.Lock()
			results[id] = res
			mu.Unlock()
		}(i, id)
	}

	wg.Wait()
	return results
}

// fetchWithRetry runs the two-phase fetch with the configured retry budget.
// Permission denials are terminal immediately; transient failures back off
// exponentially (base, 2x, 4x, ...).
func (a *Aggregator) fetchWithRetry(ctx context.Context, v domain.Viewer, categoryID string) Result {
	key := entryKey(v.ID, categoryID)
	a.entries.Set(key, &entry{state: StateLoading})

	var lastErr error
	backoff := a.opts.BackoffBase

	for attempt := 0; attempt <= a.opts.Retries; attempt++ {
		if attempt > 0 {
			a.log.Debug("retrying bookmark fetch",
				logger.String("category_id", categoryID),
				logger.Int("attempt", attempt),
				logger.Duration("backoff", backoff))
			if err := a.sleep(ctx, backoff); err != nil {
				lastErr = err
				break
			}
			backoff *= 2
		}

		bookmarks, err := a.fetchOnce(ctx, v, categoryID)
		if err == nil {
			a.entries.Set(key, &entry{state: StateReady, bookmarks: bookmarks})
			return Result{State: StateReady, Bookmarks: bookmarks}
		}
		lastErr = err

		if errors.Is(err, apperror.ErrPermission) {
			a.log.Warn("bookmark fetch permission denied",
				logger.String("category_id", categoryID),
				logger.Error(err))
			break
		}
		if !apperror.Retryable(err) {
			break
		}
	}

	a.log.Error("bookmark fetch failed",
		logger.String("category_id", categoryID),
		logger.String("viewer_id", v.ID),
		logger.Error(lastErr))
	a.entries.Set(key, &entry{state: StateError, errMsg: lastErr.Error()})
	return Result{State: StateError, Err: lastErr.Error()}
}

// fetchOnce performs one two-phase fetch and merge. The viewer's own
// bookmarks always come first and always fresh; the admin fetch follows a
// short system-wide delay to bound the request rate.
func (a *Aggregator) fetchOnce(ctx context.Context, v domain.Viewer, categoryID string) ([]*domain.Bookmark, error) {
	user, err := a.store.GetUserBookmarks(ctx, v.ID, categoryID)
	if err != nil {
		return nil, err
	}

	if err := a.sleep(ctx, a.opts.FetchDelay); err != nil {
		return nil, err
	}

	admin, err := a.store.GetAdminBookmarks(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	profile, err := a.store.GetProfile(ctx, v.ID)
	if err != nil {
		return nil, err
	}

	return Merge(user, admin, profile.HiddenBookmarkIDs), nil
}

// Merge combines viewer-owned and admin bookmarks into the visible set:
// admin bookmarks whose normalized URL collides with a viewer bookmark are
// shadowed (not hidden globally), hidden ids are excluded, and the result
// is sorted by explicit order.
func Merge(user, admin []*domain.Bookmark, hiddenIDs []string) []*domain.Bookmark {
	hidden := make(map[string]bool, len(hiddenIDs))
	for _, id := range hiddenIDs {
		hidden[id] = true
	}

	userURLs := make(map[string]bool, len(user))
	for _, b := range user {
		userURLs[dedupKey(b.URL)] = true
	}

	merged := make([]*domain.Bookmark, 0, len(user)+len(admin))
	merged = append(merged, user...)
	for _, b := range admin {
		if hidden[b.ID] {
			continue
		}
		if userURLs[dedupKey(b.URL)] {
			continue
		}
		merged = append(merged, b)
	}

	domain.SortBookmarks(merged)
	return merged
}

// dedupKey is the canonical comparison form of a bookmark URL. Unparsable
// URLs fall back to the raw string so a bad admin entry never collides
// with anything.
func dedupKey(raw string) string {
	normalized, err := domain.NormalizeURL(raw)
	if err != nil {
		return raw
	}
	return normalized
}

// Prune drops cache entries older than age, returning how many were
// removed. A pruned error entry means the next fetch starts over with a
// fresh retry budget.
func (a *Aggregator) Prune(age time.Duration) int {
	return a.entries.PruneOlderThan(age)
}

// SetClock replaces the cache time source, for tests.
func (a *Aggregator) SetClock(now func() time.Time) {
	a.entries.SetClock(now)
}

// SetSleep replaces the sleep function, for tests with mock timers.
func (a *Aggregator) SetSleep(sleep func(ctx context.Context, d time.Duration) error) {
	a.sleep = sleep
}
