package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/allmytab/startpage/internal/domain"
	"github.com/allmytab/startpage/internal/logger"
)

type fakeStore struct {
	admin []*domain.Category
	user  map[string][]*domain.Category

	adminErr error

	adminCalls int
	userCalls  int
}

func (f *fakeStore) GetAdminCategories(ctx context.Context) ([]*domain.Category, error) {
	f.adminCalls++
	if f.adminErr != nil {
		return nil, f.adminErr
	}
	return f.admin, nil
}

func (f *fakeStore) GetUserCategories(ctx context.Context, viewerID string) ([]*domain.Category, error) {
	f.userCalls++
	return f.user[viewerID], nil
}

func adminCat(id string, countries, professions []string) *domain.Category {
	return &domain.Category{
		ID: id, DisplayName: id, Owner: domain.OwnerAdmin,
		Countries: countries, Professions: professions,
	}
}

func testResolver(store *fakeStore) *Resolver {
	return New(store, logger.New("error", false), 60*time.Second, time.Minute)
}

var viewer = domain.Viewer{ID: "v1", Profession: "bpo", Country: "ph"}

func TestResolveFiltersAndCaches(t *testing.T) {
	store := &fakeStore{
		admin: []*domain.Category{
			adminCat("global", []string{"global"}, []string{"all"}),
			adminCat("us-only", []string{"us"}, []string{"all"}),
		},
		user: map[string][]*domain.Category{
			"v1": {{ID: "mine", DisplayName: "mine", Owner: domain.OwnerUser}},
		},
	}
	r := testResolver(store)

	visible, err := r.Resolve(context.Background(), viewer)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	ids := categoryIDs(visible)
	if !contains(ids, "global") || !contains(ids, "mine") {
		t.Errorf("visible = %v, want global and mine included", ids)
	}
	if contains(ids, "us-only") {
		t.Errorf("visible = %v, us-only must be filtered out for a ph viewer", ids)
	}

	// Second resolve within the filter TTL: no store traffic at all.
	r.Resolve(context.Background(), viewer)
	if store.adminCalls != 1 || store.userCalls != 1 {
		t.Errorf("store calls = %d/%d after cached resolve, want 1/1", store.adminCalls, store.userCalls)
	}
}

func TestResolveFilterTTLExpiry(t *testing.T) {
	store := &fakeStore{admin: []*domain.Category{adminCat("global", []string{"global"}, []string{"all"})}}
	r := testResolver(store)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r.SetClock(func() time.Time { return now })

	r.Resolve(context.Background(), viewer)

	// 61s later: filtered entry stale, raw entry stale too (1m TTL), so
	// the admin fetch repeats.
	now = now.Add(61 * time.Second)
	r.Resolve(context.Background(), viewer)
	if store.adminCalls != 2 {
		t.Errorf("adminCalls = %d after both TTLs expired, want 2", store.adminCalls)
	}
}

func TestResolveReusesRawWithinItsTTL(t *testing.T) {
	store := &fakeStore{admin: []*domain.Category{adminCat("global", []string{"global"}, []string{"all"})}}
	r := New(store, logger.New("error", false), 10*time.Second, time.Minute)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r.SetClock(func() time.Time { return now })

	r.Resolve(context.Background(), viewer)

	// Filtered entry expired, raw still fresh: refilter hits the user
	// fetch but not the admin fetch.
	now = now.Add(30 * time.Second)
	r.Resolve(context.Background(), viewer)
	if store.adminCalls != 1 {
		t.Errorf("adminCalls = %d, want 1 (raw cache still fresh)", store.adminCalls)
	}
	if store.userCalls != 2 {
		t.Errorf("userCalls = %d, want 2", store.userCalls)
	}
}

func TestResolveSurfacesStoreError(t *testing.T) {
	store := &fakeStore{adminErr: errors.New("redis down")}
	r := testResolver(store)

	if _, err := r.Resolve(context.Background(), viewer); err == nil {
		t.Error("Resolve() error = nil, want store error surfaced")
	}
}

func TestRefilterSkipsStore(t *testing.T) {
	store := &fakeStore{
		admin: []*domain.Category{
			adminCat("global", []string{"global"}, []string{"all"}),
			adminCat("bpo-tools", []string{"global"}, []string{"bpo"}),
		},
	}
	r := testResolver(store)

	r.Resolve(context.Background(), viewer)
	adminCalls, userCalls := store.adminCalls, store.userCalls

	// Same viewer switches profession: recompute from cached fetches.
	switched := domain.Viewer{ID: "v1", Profession: "nurse", Country: "ph"}
	visible, err := r.Refilter(context.Background(), switched)
	if err != nil {
		t.Fatalf("Refilter() error = %v", err)
	}
	if store.adminCalls != adminCalls || store.userCalls != userCalls {
		t.Errorf("Refilter() touched the store: %d/%d calls", store.adminCalls, store.userCalls)
	}
	if ids := categoryIDs(visible); contains(ids, "bpo-tools") {
		t.Errorf("visible = %v, bpo-tools must drop for a nurse", ids)
	}
}

func TestRefilterFallsBackWithoutPriorFetch(t *testing.T) {
	store := &fakeStore{admin: []*domain.Category{adminCat("global", []string{"global"}, []string{"all"})}}
	r := testResolver(store)

	visible, err := r.Refilter(context.Background(), viewer)
	if err != nil {
		t.Fatalf("Refilter() error = %v", err)
	}
	if len(visible) != 1 {
		t.Errorf("visible = %v, want the full resolve fallback", categoryIDs(visible))
	}
	if store.adminCalls != 1 {
		t.Errorf("adminCalls = %d, want 1", store.adminCalls)
	}
}

func TestInvalidateViewer(t *testing.T) {
	store := &fakeStore{
		admin: []*domain.Category{adminCat("global", []string{"global"}, []string{"all"})},
		user:  map[string][]*domain.Category{"v1": nil},
	}
	r := testResolver(store)

	r.Resolve(context.Background(), viewer)
	r.InvalidateViewer(viewer)
	r.Resolve(context.Background(), viewer)

	if store.userCalls != 2 {
		t.Errorf("userCalls = %d after InvalidateViewer, want 2", store.userCalls)
	}
	// Raw admin entry survives viewer invalidation.
	if store.adminCalls != 1 {
		t.Errorf("adminCalls = %d, want 1", store.adminCalls)
	}
}

func TestInvalidateAdmin(t *testing.T) {
	store := &fakeStore{admin: []*domain.Category{adminCat("global", []string{"global"}, []string{"all"})}}
	r := testResolver(store)

	r.Resolve(context.Background(), viewer)
	r.InvalidateAdmin()
	r.Resolve(context.Background(), viewer)

	if store.adminCalls != 2 {
		t.Errorf("adminCalls = %d after InvalidateAdmin, want 2", store.adminCalls)
	}
}

func TestPrune(t *testing.T) {
	store := &fakeStore{admin: []*domain.Category{adminCat("global", []string{"global"}, []string{"all"})}}
	r := testResolver(store)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r.SetClock(func() time.Time { return now })

	r.Resolve(context.Background(), viewer)

	now = now.Add(time.Hour)
	if pruned := r.Prune(30 * time.Minute); pruned == 0 {
		t.Error("Prune() = 0, want stale entries dropped")
	}
}

func categoryIDs(cats []*domain.Category) []string {
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		out = append(out, c.ID)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
