// Package engagement tracks per-viewer favorite and like signals.
// Favorites mirror bookmarks into a dedicated category; likes are a
// shared counter document keyed by bookmark id. The two signals are
// independent: liking never favorites and favoriting never likes.
package engagement

import (
	"context"
	"time"

	"github.com/rs/xid"
	"golang.org/x/sync/errgroup"

	"github.com/allmytab/startpage/internal/domain"
	"github.com/allmytab/startpage/internal/logger"
)

// FavoritesCategoryName is the display name of the synthetic category
// that holds favorite mirrors.
const FavoritesCategoryName = "Favorites"

// Store is the persistence surface the tracker needs.
type Store interface {
	GetProfile(ctx context.Context, viewerID string) (*domain.Profile, error)
	SaveProfile(ctx context.Context, p *domain.Profile) error
	GetUserCategories(ctx context.Context, viewerID string) ([]*domain.Category, error)
	SaveUserCategory(ctx context.Context, viewerID string, c *domain.Category) error
	GetUserBookmarks(ctx context.Context, viewerID, categoryID string) ([]*domain.Bookmark, error)
	SaveUserBookmark(ctx context.Context, viewerID string, b *domain.Bookmark) error
	DeleteUserBookmark(ctx context.Context, viewerID string, b *domain.Bookmark) error
	GetLikeRecord(ctx context.Context, bookmarkID string) (*domain.LikeRecord, error)
	SaveLikeRecord(ctx context.Context, bookmarkID string, rec *domain.LikeRecord) error
}

// Invalidator drops viewer-scoped caches after the category set changes.
type Invalidator interface {
	InvalidateViewer(v domain.Viewer)
}

// Placer auto-places a newly created category into the viewer's layout.
type Placer interface {
	Place(ctx context.Context, viewerID, categoryID string) (domain.Layout, error)
}

type Tracker struct {
	store    Store
	resolver Invalidator
	layout   Placer
	log      logger.Logger
}

func New(store Store, resolver Invalidator, layout Placer, log logger.Logger) *Tracker {
	return &Tracker{store: store, resolver: resolver, layout: layout, log: log}
}

// ToggleFavorite flips the favorite flag on a bookmark. Favoriting mirrors
// the bookmark into the viewer's Favorites category, creating that category
// on first use; unfavoriting removes the mirror. The favorite set on the
// profile is the source of truth for the flag itself.
func (t *Tracker) ToggleFavorite(ctx context.Context, v domain.Viewer, b *domain.Bookmark) (bool, error) {
	profile, err := t.store.GetProfile(ctx, v.ID)
	if err != nil {
		return false, err
	}

	if profile.IsFavorite(b.ID) {
		if err := t.removeMirror(ctx, v, profile, b.ID); err != nil {
			return true, err
		}
		profile.FavoriteBookmarkIDs = domain.RemoveString(profile.FavoriteBookmarkIDs, b.ID)
		if err := t.store.SaveProfile(ctx, profile); err != nil {
			return true, err
		}
		return false, nil
	}

	cat, err := t.ensureFavoritesCategory(ctx, v)
	if err != nil {
		return false, err
	}

	now := time.Now()
	mirror := &domain.Bookmark{
		ID:                 xid.New().String(),
		Title:              b.Title,
		URL:                b.URL,
		Favicon:            b.Favicon,
		CategoryID:         cat.ID,
		Owner:              domain.OwnerUser,
		Order:              t.nextMirrorOrder(ctx, v, cat.ID),
		OriginalBookmarkID: b.ID,
		CreatedBy:          v.ID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := t.store.SaveUserBookmark(ctx, v.ID, mirror); err != nil {
		return false, err
	}

	profile.FavoriteBookmarkIDs = domain.AddString(profile.FavoriteBookmarkIDs, b.ID)
	if err := t.store.SaveProfile(ctx, profile); err != nil {
		return false, err
	}
	return true, nil
}

// ensureFavoritesCategory returns the viewer's Favorites category, creating
// and auto-placing it on first favorite.
func (t *Tracker) ensureFavoritesCategory(ctx context.Context, v domain.Viewer) (*domain.Category, error) {
	cats, err := t.store.GetUserCategories(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		if c.IsFavorites {
			return c, nil
		}
	}

	now := time.Now()
	cat := &domain.Category{
		ID:          xid.New().String(),
		DisplayName: FavoritesCategoryName,
		Owner:       domain.OwnerUser,
		IsFavorites: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.store.SaveUserCategory(ctx, v.ID, cat); err != nil {
		return nil, err
	}
	t.resolver.InvalidateViewer(v)

	if _, err := t.layout.Place(ctx, v.ID, cat.ID); err != nil {
		// category exists and will be auto-placed on the next layout read
		t.log.Warn("favorites category placement failed",
			logger.String("viewer_id", v.ID),
			logger.String("category_id", cat.ID),
			logger.Error(err))
	}

	t.log.Info("favorites category created",
		logger.String("viewer_id", v.ID),
		logger.String("category_id", cat.ID))
	return cat, nil
}

// removeMirror deletes the mirror bookmark that points at originalID.
func (t *Tracker) removeMirror(ctx context.Context, v domain.Viewer, profile *domain.Profile, originalID string) error {
	cats, err := t.store.GetUserCategories(ctx, v.ID)
	if err != nil {
		return err
	}
	for _, c := range cats {
		if !c.IsFavorites {
			continue
		}
		mirrors, err := t.store.GetUserBookmarks(ctx, v.ID, c.ID)
		if err != nil {
			return err
		}
		for _, m := range mirrors {
			if m.OriginalBookmarkID == originalID {
				return t.store.DeleteUserBookmark(ctx, v.ID, m)
			}
		}
	}
	// mirror already gone, nothing to do
	return nil
}

func (t *Tracker) nextMirrorOrder(ctx context.Context, v domain.Viewer, categoryID string) int {
	mirrors, err := t.store.GetUserBookmarks(ctx, v.ID, categoryID)
	if err != nil {
		return 1
	}
	max := 0
	for _, m := range mirrors {
		if m.Order > max {
			max = m.Order
		}
	}
	return max + 1
}

// ToggleLike flips the viewer's like on a bookmark and returns the updated
// record. The shared record is read, toggled and written back whole; the
// count is always re-derived from the voter set so it cannot drift.
func (t *Tracker) ToggleLike(ctx context.Context, v domain.Viewer, bookmarkID string) (*domain.LikeRecord, error) {
	rec, err := t.store.GetLikeRecord(ctx, bookmarkID)
	if err != nil {
		return nil, err
	}
	liked := rec.Toggle(v.ID)
	if err := t.store.SaveLikeRecord(ctx, bookmarkID, rec); err != nil {
		return nil, err
	}

	profile, err := t.store.GetProfile(ctx, v.ID)
	if err == nil {
		if liked {
			profile.LikedBookmarks = domain.AddString(profile.LikedBookmarks, bookmarkID)
		} else {
			profile.LikedBookmarks = domain.RemoveString(profile.LikedBookmarks, bookmarkID)
		}
		if err := t.store.SaveProfile(ctx, profile); err != nil {
			t.log.Warn("liked set not persisted",
				logger.String("viewer_id", v.ID),
				logger.Error(err))
		}
	}
	return rec, nil
}

// BatchLikes loads like records for a set of bookmarks concurrently.
// Missing records come back as zero counts, never as errors.
func (t *Tracker) BatchLikes(ctx context.Context, bookmarkIDs []string) (map[string]*domain.LikeRecord, error) {
	out := make(map[string]*domain.LikeRecord, len(bookmarkIDs))
	if len(bookmarkIDs) == 0 {
		return out, nil
	}

	recs := make([]*domain.LikeRecord, len(bookmarkIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, id := range bookmarkIDs {
		i, id := i, id
		g.Go(func() error {
			rec, err := t.store.GetLikeRecord(gctx, id)
			if err != nil {
				return err
			}
			recs[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, id := range bookmarkIDs {
		recs[i].Likes = len(recs[i].LikedBy)
		out[id] = recs[i]
	}
	return out, nil
}
