package aggregator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/allmytab/startpage/internal/apperror"
	"github.com/allmytab/startpage/internal/domain"
	"github.com/allmytab/startpage/internal/logger"
)

// fakeStore serves in-memory bookmark documents with injectable failures.
type fakeStore struct {
	mu sync.Mutex

	userBookmarks  map[string][]*domain.Bookmark // viewerID|categoryID
	adminBookmarks map[string][]*domain.Bookmark // categoryID
	profiles       map[string]*domain.Profile

	adminErr error
	userErr  error
	saveErr  error

	userCalls  int
	adminCalls int

	deletedCategories []string
	batchDeletes      []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		userBookmarks:  make(map[string][]*domain.Bookmark),
		adminBookmarks: make(map[string][]*domain.Bookmark),
		profiles:       make(map[string]*domain.Profile),
	}
}

func (f *fakeStore) key(viewerID, categoryID string) string { return viewerID + "|" + categoryID }

func (f *fakeStore) GetUserBookmarks(ctx context.Context, viewerID, categoryID string) ([]*domain.Bookmark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls++
	if f.userErr != nil {
		return nil, f.userErr
	}
	return append([]*domain.Bookmark(nil), f.userBookmarks[f.key(viewerID, categoryID)]...), nil
}

func (f *fakeStore) GetAdminBookmarks(ctx context.Context, categoryID string) ([]*domain.Bookmark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adminCalls++
	if f.adminErr != nil {
		return nil, f.adminErr
	}
	return append([]*domain.Bookmark(nil), f.adminBookmarks[categoryID]...), nil
}

func (f *fakeStore) GetUserBookmark(ctx context.Context, viewerID, id string) (*domain.Bookmark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, list := range f.userBookmarks {
		for _, b := range list {
			if b.ID == id && b.CreatedBy == viewerID {
				return b, nil
			}
		}
	}
	return nil, apperror.NotFound("bookmark", id)
}

func (f *fakeStore) SaveUserBookmark(ctx context.Context, viewerID string, b *domain.Bookmark) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	k := f.key(viewerID, b.CategoryID)
	for i, existing := range f.userBookmarks[k] {
		if existing.ID == b.ID {
			f.userBookmarks[k][i] = b
			return nil
		}
	}
	f.userBookmarks[k] = append(f.userBookmarks[k], b)
	return nil
}

func (f *fakeStore) DeleteUserBookmark(ctx context.Context, viewerID string, b *domain.Bookmark) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := f.key(viewerID, b.CategoryID)
	for i, existing := range f.userBookmarks[k] {
		if existing.ID == b.ID {
			f.userBookmarks[k] = append(f.userBookmarks[k][:i], f.userBookmarks[k][i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("bookmark", b.ID)
}

func (f *fakeStore) DeleteUserBookmarksByCategory(ctx context.Context, viewerID, categoryID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchDeletes = append(f.batchDeletes, categoryID)
	delete(f.userBookmarks, f.key(viewerID, categoryID))
	return nil
}

func (f *fakeStore) DeleteUserCategory(ctx context.Context, viewerID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedCategories = append(f.deletedCategories, id)
	return nil
}

func (f *fakeStore) GetProfile(ctx context.Context, viewerID string) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.profiles[viewerID]; ok {
		return p, nil
	}
	p := &domain.Profile{ViewerID: viewerID, Layout: domain.NewLayout(4)}
	f.profiles[viewerID] = p
	return p, nil
}

func (f *fakeStore) SaveProfile(ctx context.Context, p *domain.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.ViewerID] = p
	return nil
}

// sleepRecorder captures every requested sleep without waiting.
type sleepRecorder struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.sleeps = append(s.sleeps, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *sleepRecorder) atLeast(min time.Duration) []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []time.Duration
	for _, d := range s.sleeps {
		if d >= min {
			out = append(out, d)
		}
	}
	return out
}

func bm(id, url string, order int) *domain.Bookmark {
	return &domain.Bookmark{ID: id, Title: id, URL: url, Order: order, Owner: domain.OwnerAdmin}
}

func userBm(id, url, viewerID, categoryID string, order int) *domain.Bookmark {
	return &domain.Bookmark{
		ID: id, Title: id, URL: url, Order: order,
		Owner: domain.OwnerUser, CreatedBy: viewerID, CategoryID: categoryID,
	}
}

func testAggregator(store *fakeStore) (*Aggregator, *sleepRecorder) {
	rec := &sleepRecorder{}
	a := New(store, logger.New("error", false), Options{
		TTL:         5 * time.Minute,
		Retries:     3,
		BackoffBase: time.Second,
		FetchDelay:  time.Millisecond,
		StaggerStep: 500 * time.Millisecond,
	})
	a.SetSleep(rec.sleep)
	return a, rec
}

var testViewer = domain.Viewer{ID: "v1", Profession: "all", Country: "global"}

func TestMergeDeduplicatesByNormalizedURL(t *testing.T) {
	user := []*domain.Bookmark{
		userBm("u1", "Example.com", "v1", "cat", 2),
	}
	admin := []*domain.Bookmark{
		bm("a1", "http://example.com", 1), // same canonical URL, shadowed
		bm("a2", "https://other.com", 3),
	}

	merged := Merge(user, admin, nil)
	if len(merged) != 2 {
		t.Fatalf("Merge() returned %d bookmarks, want 2", len(merged))
	}
	if merged[0].ID != "u1" {
		t.Errorf("first bookmark = %s, want u1 (viewer version wins and order sorts)", merged[0].ID)
	}
	if merged[1].ID != "a2" {
		t.Errorf("second bookmark = %s, want a2", merged[1].ID)
	}
}

func TestMergeExcludesHidden(t *testing.T) {
	admin := []*domain.Bookmark{
		bm("a1", "https://one.com", 1),
		bm("a2", "https://two.com", 2),
	}

	merged := Merge(nil, admin, []string{"a1"})
	if len(merged) != 1 || merged[0].ID != "a2" {
		t.Errorf("Merge() with hidden a1 = %v, want [a2]", bookmarkIDs(merged))
	}
}

func TestMergeUnparsableURLNeverCollides(t *testing.T) {
	user := []*domain.Bookmark{userBm("u1", ":::", "v1", "cat", 1)}
	admin := []*domain.Bookmark{bm("a1", ":::garbage", 2)}

	merged := Merge(user, admin, nil)
	if len(merged) != 2 {
		t.Errorf("Merge() = %v, want both entries kept", bookmarkIDs(merged))
	}
}

func TestFetchCachesUntilTTL(t *testing.T) {
	store := newFakeStore()
	store.adminBookmarks["cat"] = []*domain.Bookmark{bm("a1", "https://one.com", 1)}
	a, _ := testAggregator(store)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a.SetClock(func() time.Time { return now })

	res := a.Fetch(context.Background(), testViewer, "cat")
	if res.State != StateReady || len(res.Bookmarks) != 1 {
		t.Fatalf("Fetch() = %+v, want ready with 1 bookmark", res)
	}
	if store.adminCalls != 1 {
		t.Fatalf("adminCalls = %d, want 1", store.adminCalls)
	}

	// Within TTL: served from cache.
	now = now.Add(4 * time.Minute)
	a.Fetch(context.Background(), testViewer, "cat")
	if store.adminCalls != 1 {
		t.Errorf("adminCalls = %d after cached fetch, want 1", store.adminCalls)
	}

	// Past TTL: refetched.
	now = now.Add(2 * time.Minute)
	a.Fetch(context.Background(), testViewer, "cat")
	if store.adminCalls != 2 {
		t.Errorf("adminCalls = %d after TTL expiry, want 2", store.adminCalls)
	}
}

func TestFetchRetriesWithExponentialBackoff(t *testing.T) {
	store := newFakeStore()
	store.adminErr = apperror.Transient("get admin bookmarks", errors.New("connection reset"))
	a, rec := testAggregator(store)

	res := a.Fetch(context.Background(), testViewer, "cat")
	if res.State != StateError {
		t.Fatalf("Fetch() state = %s, want error", res.State)
	}

	// Initial attempt plus three retries.
	if store.adminCalls != 4 {
		t.Errorf("adminCalls = %d, want 4", store.adminCalls)
	}

	backoffs := rec.atLeast(time.Second)
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	if len(backoffs) != len(want) {
		t.Fatalf("backoff sleeps = %v, want %v", backoffs, want)
	}
	for i, d := range want {
		if backoffs[i] != d {
			t.Errorf("backoff %d = %v, want %v", i, backoffs[i], d)
		}
	}
}

func TestFetchPermissionErrorIsTerminal(t *testing.T) {
	store := newFakeStore()
	store.adminErr = apperror.Permission("get admin bookmarks")
	a, rec := testAggregator(store)

	res := a.Fetch(context.Background(), testViewer, "cat")
	if res.State != StateError {
		t.Fatalf("Fetch() state = %s, want error", res.State)
	}
	if store.adminCalls != 1 {
		t.Errorf("adminCalls = %d, want 1 (no retries on permission denial)", store.adminCalls)
	}
	if backoffs := rec.atLeast(time.Second); len(backoffs) != 0 {
		t.Errorf("backoff sleeps = %v, want none", backoffs)
	}
}

func TestErrorServedUntilExplicitRefetch(t *testing.T) {
	store := newFakeStore()
	store.adminErr = apperror.Transient("get admin bookmarks", errors.New("down"))
	a, _ := testAggregator(store)

	a.Fetch(context.Background(), testViewer, "cat")
	callsAfterFailure := store.adminCalls

	// Plain Fetch serves the error without touching the store again.
	res := a.Fetch(context.Background(), testViewer, "cat")
	if res.State != StateError {
		t.Fatalf("Fetch() state = %s, want error", res.State)
	}
	if store.adminCalls != callsAfterFailure {
		t.Errorf("adminCalls = %d, want %d (no automatic retry)", store.adminCalls, callsAfterFailure)
	}

	// Refetch clears the entry and tries again; the store recovered.
	store.mu.Lock()
	store.adminErr = nil
	store.adminBookmarks["cat"] = []*domain.Bookmark{bm("a1", "https://one.com", 1)}
	store.mu.Unlock()

	res = a.Refetch(context.Background(), testViewer, "cat")
	if res.State != StateReady || len(res.Bookmarks) != 1 {
		t.Errorf("Refetch() = %+v, want ready with 1 bookmark", res)
	}
}

func TestFetchManyStaggersLaunches(t *testing.T) {
	store := newFakeStore()
	store.adminBookmarks["a"] = []*domain.Bookmark{bm("x", "https://x.com", 1)}
	a, rec := testAggregator(store)

	results := a.FetchMany(context.Background(), testViewer, []string{"a", "b", "c"})
	if len(results) != 3 {
		t.Fatalf("FetchMany() returned %d results, want 3", len(results))
	}
	for id, res := range results {
		if res.State != StateReady {
			t.Errorf("category %s state = %s, want ready", id, res.State)
		}
	}

	// One launch delay per index: 0, 500ms, 1s.
	launches := map[time.Duration]bool{}
	for _, d := range rec.atLeast(500 * time.Millisecond) {
		if d%(500*time.Millisecond) == 0 {
			launches[d] = true
		}
	}
	if !launches[500*time.Millisecond] || !launches[time.Second] {
		t.Errorf("stagger sleeps missing: got %v", rec.atLeast(500*time.Millisecond))
	}
}

func TestStateDoesNotFetch(t *testing.T) {
	store := newFakeStore()
	a, _ := testAggregator(store)

	res := a.State(testViewer, "cat")
	if res.State != StateIdle {
		t.Errorf("State() = %s before any fetch, want idle", res.State)
	}
	if store.adminCalls != 0 {
		t.Errorf("State() touched the store: adminCalls = %d", store.adminCalls)
	}
}

func bookmarkIDs(bs []*domain.Bookmark) []string {
	out := make([]string, 0, len(bs))
	for _, b := range bs {
		out = append(out, b.ID)
	}
	return out
}
