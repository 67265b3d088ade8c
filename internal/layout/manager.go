package layout

import (
	"context"
	"time"

	"github.com/allmytab/startpage/internal/domain"
	"github.com/allmytab/startpage/internal/logger"
)

// ProfileStore is the slice of the document store the manager persists
// layouts through.
type ProfileStore interface {
	GetProfile(ctx context.Context, viewerID string) (*domain.Profile, error)
	SaveProfile(ctx context.Context, p *domain.Profile) error
}

// Manager loads, reconciles and persists per-viewer layouts.
type Manager struct {
	store ProfileStore
	log   logger.Logger
	now   func() time.Time
}

func NewManager(store ProfileStore, log logger.Logger) *Manager {
	return &Manager{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// EnsurePlacement reconciles the stored layout with the visible category
// ids and persists only when the result structurally differs. The returned
// layout is always the reconciled one, even when persisting fails (the
// caller surfaces the error; the next load reconciles again).
func (m *Manager) EnsurePlacement(ctx context.Context, viewerID string, visibleIDs []string) (domain.Layout, error) {
	p, err := m.store.GetProfile(ctx, viewerID)
	if err != nil {
		return domain.NewLayout(0), err
	}

	updated, changed := EnsurePlacement(p.Layout, visibleIDs)
	if !changed {
		return p.Layout, nil
	}

	updated.LastUpdated = m.now()
	p.Layout = updated
	if err := m.store.SaveProfile(ctx, p); err != nil {
		m.log.Warn("failed to persist layout placement",
			logger.String("viewer_id", viewerID),
			logger.Error(err))
		return updated, err
	}
	return updated, nil
}

// Reorder moves one category between positions and persists the result.
// On persistence failure the last committed layout is returned with the
// error so the caller can revert its optimistic state.
func (m *Manager) Reorder(ctx context.Context, viewerID string, srcCol, srcIdx, dstCol, dstIdx int) (domain.Layout, error) {
	p, err := m.store.GetProfile(ctx, viewerID)
	if err != nil {
		return domain.NewLayout(0), err
	}
	committed := p.Layout

	updated, err := Reorder(p.Layout, srcCol, srcIdx, dstCol, dstIdx)
	if err != nil {
		return committed, err
	}

	updated.LastUpdated = m.now()
	p.Layout = updated
	if err := m.store.SaveProfile(ctx, p); err != nil {
		m.log.Warn("reorder persistence failed, reverting",
			logger.String("viewer_id", viewerID),
			logger.Error(err))
		return committed, err
	}
	return updated, nil
}

// PreviewColumnCount computes the n-column redistribution without writing
// anything. The committed layout is untouched until ApplyColumnCount.
func (m *Manager) PreviewColumnCount(ctx context.Context, viewerID string, n int) (domain.Layout, error) {
	p, err := m.store.GetProfile(ctx, viewerID)
	if err != nil {
		return domain.NewLayout(0), err
	}
	return Redistribute(p.Layout, n), nil
}

// ApplyColumnCount persists the n-column redistribution. This is the
// explicit "apply" confirmation of the layout-editing mode.
func (m *Manager) ApplyColumnCount(ctx context.Context, viewerID string, n int) (domain.Layout, error) {
	p, err := m.store.GetProfile(ctx, viewerID)
	if err != nil {
		return domain.NewLayout(0), err
	}
	committed := p.Layout

	updated := Redistribute(p.Layout, n)
	updated.LastUpdated = m.now()
	p.Layout = updated
	if err := m.store.SaveProfile(ctx, p); err != nil {
		return committed, err
	}
	return updated, nil
}

// Place auto-inserts a single category into the layout if absent, going
// through EnsurePlacement so column membership has exactly one writer.
func (m *Manager) Place(ctx context.Context, viewerID, categoryID string) (domain.Layout, error) {
	p, err := m.store.GetProfile(ctx, viewerID)
	if err != nil {
		return domain.NewLayout(0), err
	}
	ids := append(p.Layout.CategoryIDs(), categoryID)
	return m.EnsurePlacement(ctx, viewerID, ids)
}
