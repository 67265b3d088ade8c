package aggregator

import (
	"context"
	"errors"
	"time"

	"github.com/rs/xid"

	"github.com/allmytab/startpage/internal/apperror"
	"github.com/allmytab/startpage/internal/domain"
	"github.com/allmytab/startpage/internal/logger"
)

// Update carries the editable fields of a bookmark.
type Update struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Favicon string `json:"favicon,omitempty"`
	Order   int    `json:"order"`
}

// AddBookmark creates a viewer-owned bookmark in the category. The cached
// category state is updated optimistically before the store write; on
// persistence failure the entry is invalidated so the next fetch
// reconciles, and the error is surfaced.
func (a *Aggregator) AddBookmark(ctx context.Context, v domain.Viewer, categoryID string, upd Update) (*domain.Bookmark, error) {
	if _, err := domain.NormalizeURL(upd.URL); err != nil {
		return nil, err
	}

	now := time.Now()
	b := &domain.Bookmark{
		ID:         xid.New().String(),
		Title:      upd.Title,
		URL:        upd.URL,
		Favicon:    upd.Favicon,
		CategoryID: categoryID,
		Owner:      domain.OwnerUser,
		Order:      upd.Order,
		CreatedBy:  v.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if b.Order == 0 {
		b.Order = a.nextOrder(v, categoryID)
	}

	a.applyOptimistic(v, categoryID, func(e *entry) {
		e.bookmarks = append(e.bookmarks, b)
		domain.SortBookmarks(e.bookmarks)
	})

	if err := a.store.SaveUserBookmark(ctx, v.ID, b); err != nil {
		a.entries.Invalidate(entryKey(v.ID, categoryID))
		return nil, err
	}
	return b, nil
}

// EditBookmark updates a bookmark in place when the viewer owns it. Editing
// an admin bookmark never mutates the shared document: it forks a new
// viewer-owned bookmark carrying OriginalBookmarkID and hides the original
// for this viewer only.
func (a *Aggregator) EditBookmark(ctx context.Context, v domain.Viewer, categoryID, bookmarkID string, upd Update) (*domain.Bookmark, error) {
	if _, err := domain.NormalizeURL(upd.URL); err != nil {
		return nil, err
	}

	own, err := a.store.GetUserBookmark(ctx, v.ID, bookmarkID)
	switch {
	case err == nil:
		own.Title = upd.Title
		own.URL = upd.URL
		own.Favicon = upd.Favicon
		if upd.Order != 0 {
			own.Order = upd.Order
		}
		own.UpdatedAt = time.Now()

		a.applyOptimistic(v, categoryID, func(e *entry) {
			for i, b := range e.bookmarks {
				if b.ID == own.ID {
					e.bookmarks[i] = own
				}
			}
			domain.SortBookmarks(e.bookmarks)
		})

		if err := a.store.SaveUserBookmark(ctx, v.ID, own); err != nil {
			a.entries.Invalidate(entryKey(v.ID, categoryID))
			return nil, err
		}
		return own, nil

	case errors.Is(err, apperror.ErrNotFound):
		return a.forkAdminBookmark(ctx, v, categoryID, bookmarkID, upd)

	default:
		return nil, err
	}
}

// forkAdminBookmark shadows an admin bookmark with an edited viewer-owned
// copy and hides the original for this viewer.
func (a *Aggregator) forkAdminBookmark(ctx context.Context, v domain.Viewer, categoryID, bookmarkID string, upd Update) (*domain.Bookmark, error) {
	admin, err := a.findAdminBookmark(ctx, categoryID, bookmarkID)
	if err != nil {
		// stale local entry: drop it so the next fetch reconciles
		a.entries.Invalidate(entryKey(v.ID, categoryID))
		return nil, err
	}

	now := time.Now()
	fork := &domain.Bookmark{
		ID:                 xid.New().String(),
		Title:              upd.Title,
		URL:                upd.URL,
		Favicon:            upd.Favicon,
		CategoryID:         categoryID,
		Owner:              domain.OwnerUser,
		Order:              admin.Order,
		OriginalBookmarkID: admin.ID,
		CreatedBy:          v.ID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if upd.Order != 0 {
		fork.Order = upd.Order
	}

	a.applyOptimistic(v, categoryID, func(e *entry) {
		for i, b := range e.bookmarks {
			if b.ID == admin.ID {
				e.bookmarks[i] = fork
			}
		}
		domain.SortBookmarks(e.bookmarks)
	})

	if err := a.store.SaveUserBookmark(ctx, v.ID, fork); err != nil {
		a.entries.Invalidate(entryKey(v.ID, categoryID))
		return nil, err
	}
	if err := a.hideBookmark(ctx, v, admin.ID); err != nil {
		a.entries.Invalidate(entryKey(v.ID, categoryID))
		return nil, err
	}

	a.log.Info("admin bookmark forked",
		logger.String("bookmark_id", admin.ID),
		logger.String("fork_id", fork.ID),
		logger.String("viewer_id", v.ID))
	return fork, nil
}

// DeleteBookmark removes a viewer-owned bookmark, or hides an admin one
// for this viewer (shared documents are never deleted).
func (a *Aggregator) DeleteBookmark(ctx context.Context, v domain.Viewer, categoryID, bookmarkID string) error {
	a.applyOptimistic(v, categoryID, func(e *entry) {
		for i, b := range e.bookmarks {
			if b.ID == bookmarkID {
				e.bookmarks = append(e.bookmarks[:i], e.bookmarks[i+1:]...)
				break
			}
		}
	})

	own, err := a.store.GetUserBookmark(ctx, v.ID, bookmarkID)
	switch {
	case err == nil:
		if err := a.store.DeleteUserBookmark(ctx, v.ID, own); err != nil {
			a.entries.Invalidate(entryKey(v.ID, categoryID))
			return err
		}
		return nil

	case errors.Is(err, apperror.ErrNotFound):
		if err := a.hideBookmark(ctx, v, bookmarkID); err != nil {
			a.entries.Invalidate(entryKey(v.ID, categoryID))
			return err
		}
		return nil

	default:
		a.entries.Invalidate(entryKey(v.ID, categoryID))
		return err
	}
}

// DeleteCategory cascades a category deletion: the viewer's own bookmarks
// are batch-deleted, admin bookmarks are hidden (never deleted, they are
// shared), and a viewer-owned category document is removed.
func (a *Aggregator) DeleteCategory(ctx context.Context, v domain.Viewer, c *domain.Category) error {
	admin, err := a.store.GetAdminBookmarks(ctx, c.ID)
	if err != nil {
		return err
	}

	if len(admin) > 0 {
		profile, err := a.store.GetProfile(ctx, v.ID)
		if err != nil {
			return err
		}
		for _, b := range admin {
			profile.HiddenBookmarkIDs = domain.AddString(profile.HiddenBookmarkIDs, b.ID)
		}
		if err := a.store.SaveProfile(ctx, profile); err != nil {
			return err
		}
	}

	if err := a.store.DeleteUserBookmarksByCategory(ctx, v.ID, c.ID); err != nil {
		return err
	}

	if c.Owner == domain.OwnerUser {
		if err := a.store.DeleteUserCategory(ctx, v.ID, c.ID); err != nil {
			return err
		}
	}

	a.entries.Invalidate(entryKey(v.ID, c.ID))
	a.log.Info("category deleted",
		logger.String("category_id", c.ID),
		logger.String("viewer_id", v.ID),
		logger.Int("admin_bookmarks_hidden", len(admin)))
	return nil
}

// applyOptimistic mutates the cached Ready entry, if any, before the store
// write goes out.
func (a *Aggregator) applyOptimistic(v domain.Viewer, categoryID string, mutate func(e *entry)) {
	key := entryKey(v.ID, categoryID)
	e, ok := a.entries.Get(key)
	if !ok || e.Value.state != StateReady {
		return
	}
	next := &entry{state: StateReady, bookmarks: append([]*domain.Bookmark(nil), e.Value.bookmarks...)}
	mutate(next)
	a.entries.Set(key, next)
}

func (a *Aggregator) nextOrder(v domain.Viewer, categoryID string) int {
	e, ok := a.entries.Get(entryKey(v.ID, categoryID))
	if !ok {
		return 1
	}
	max := 0
	for _, b := range e.Value.bookmarks {
		if b.Order > max {
			max = b.Order
		}
	}
	return max + 1
}

func (a *Aggregator) findAdminBookmark(ctx context.Context, categoryID, bookmarkID string) (*domain.Bookmark, error) {
	admin, err := a.store.GetAdminBookmarks(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	for _, b := range admin {
		if b.ID == bookmarkID {
			return b, nil
		}
	}
	return nil, apperror.NotFound("bookmark", bookmarkID)
}

// hideBookmark adds an admin bookmark id to the viewer's hidden set. The
// set only ever grows through explicit hide, delete and fork actions.
func (a *Aggregator) hideBookmark(ctx context.Context, v domain.Viewer, bookmarkID string) error {
	profile, err := a.store.GetProfile(ctx, v.ID)
	if err != nil {
		return err
	}
	profile.HiddenBookmarkIDs = domain.AddString(profile.HiddenBookmarkIDs, bookmarkID)
	return a.store.SaveProfile(ctx, profile)
}
