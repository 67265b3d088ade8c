package layout

import (
	"context"
	"errors"
	"testing"

	"github.com/allmytab/startpage/internal/domain"
	"github.com/allmytab/startpage/internal/logger"
)

// fakeStore keeps one profile in memory and can be told to fail writes.
type fakeStore struct {
	profile   *domain.Profile
	failSave  bool
	saveCalls int
}

func (f *fakeStore) GetProfile(ctx context.Context, viewerID string) (*domain.Profile, error) {
	cp := *f.profile
	cp.Layout = f.profile.Layout.Clone()
	return &cp, nil
}

func (f *fakeStore) SaveProfile(ctx context.Context, p *domain.Profile) error {
	f.saveCalls++
	if f.failSave {
		return errors.New("write refused")
	}
	f.profile = p
	return nil
}

func newFakeStore(columns ...[]string) *fakeStore {
	l := domain.NewLayout(len(columns))
	for i, col := range columns {
		l.Columns[i] = col
	}
	return &fakeStore{profile: &domain.Profile{ViewerID: "v1", Layout: l}}
}

func testManager(store *fakeStore) *Manager {
	return NewManager(store, logger.New("error", false))
}

func TestManagerEnsurePlacementPersistsOnlyChanges(t *testing.T) {
	store := newFakeStore([]string{"a"}, []string{"b"})
	m := testManager(store)

	// Already reconciled: no write.
	if _, err := m.EnsurePlacement(context.Background(), "v1", []string{"a", "b"}); err != nil {
		t.Fatalf("EnsurePlacement() error = %v", err)
	}
	if store.saveCalls != 0 {
		t.Errorf("saveCalls = %d after no-op reconcile, want 0", store.saveCalls)
	}

	// New category: one write.
	l, err := m.EnsurePlacement(context.Background(), "v1", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("EnsurePlacement() error = %v", err)
	}
	if store.saveCalls != 1 {
		t.Errorf("saveCalls = %d after placement, want 1", store.saveCalls)
	}
	if _, _, ok := l.Position("c"); !ok {
		t.Error("returned layout is missing the newly placed id")
	}
}

func TestManagerReorderRevertsOnPersistFailure(t *testing.T) {
	store := newFakeStore([]string{"a", "b"}, []string{"c"})
	store.failSave = true
	m := testManager(store)

	l, err := m.Reorder(context.Background(), "v1", 0, 0, 1, 0)
	if err == nil {
		t.Fatal("Reorder() expected error when persistence fails")
	}

	// The returned layout must be the committed one, not the moved one.
	if col, idx, ok := l.Position("a"); !ok || col != 0 || idx != 0 {
		t.Errorf("Position(a) = (%d, %d, %v) after failed reorder, want (0, 0, true)", col, idx, ok)
	}
	if col, _, _ := store.profile.Layout.Position("a"); col != 0 {
		t.Error("stored layout changed despite failed save")
	}
}

func TestManagerReorderCommits(t *testing.T) {
	store := newFakeStore([]string{"a", "b"}, []string{"c"})
	m := testManager(store)

	l, err := m.Reorder(context.Background(), "v1", 0, 0, 1, 1)
	if err != nil {
		t.Fatalf("Reorder() error = %v", err)
	}
	if col, idx, ok := l.Position("a"); !ok || col != 1 || idx != 1 {
		t.Errorf("Position(a) = (%d, %d, %v), want (1, 1, true)", col, idx, ok)
	}
	if l.LastUpdated.IsZero() {
		t.Error("LastUpdated not stamped on committed reorder")
	}
}

func TestManagerPreviewDoesNotPersist(t *testing.T) {
	store := newFakeStore([]string{"a", "b", "c"})
	m := testManager(store)

	l, err := m.PreviewColumnCount(context.Background(), "v1", 3)
	if err != nil {
		t.Fatalf("PreviewColumnCount() error = %v", err)
	}
	if l.ColumnCount != 3 {
		t.Errorf("preview ColumnCount = %d, want 3", l.ColumnCount)
	}
	if store.saveCalls != 0 {
		t.Errorf("saveCalls = %d after preview, want 0", store.saveCalls)
	}
	if store.profile.Layout.ColumnCount != 1 {
		t.Errorf("stored ColumnCount = %d after preview, want 1", store.profile.Layout.ColumnCount)
	}
}

func TestManagerApplyColumnCountPersists(t *testing.T) {
	store := newFakeStore([]string{"a", "b", "c", "d"})
	m := testManager(store)

	l, err := m.ApplyColumnCount(context.Background(), "v1", 2)
	if err != nil {
		t.Fatalf("ApplyColumnCount() error = %v", err)
	}
	if l.ColumnCount != 2 {
		t.Errorf("ColumnCount = %d, want 2", l.ColumnCount)
	}
	if store.profile.Layout.ColumnCount != 2 {
		t.Errorf("stored ColumnCount = %d, want 2", store.profile.Layout.ColumnCount)
	}
	if got := len(store.profile.Layout.CategoryIDs()); got != 4 {
		t.Errorf("stored layout holds %d ids after redistribute, want 4", got)
	}
}

func TestManagerPlace(t *testing.T) {
	store := newFakeStore([]string{"a"}, []string{})
	m := testManager(store)

	l, err := m.Place(context.Background(), "v1", "fav")
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	if col, _, ok := l.Position("fav"); !ok || col != 1 {
		t.Errorf("Place() put fav in column %d (ok=%v), want column 1", col, ok)
	}
}
