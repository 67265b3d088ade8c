package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/allmytab/startpage/internal/domain"
)

// GetAdminBookmarks retrieves the operator-curated bookmarks of one category.
func (s *Store) GetAdminBookmarks(ctx context.Context, categoryID string) ([]*domain.Bookmark, error) {
	ids, err := s.client.SMembers(ctx, LinksByCategoryKey(categoryID)).Result()
	if err != nil {
		return nil, classify("get admin bookmark ids", err)
	}

	bookmarks := make([]*domain.Bookmark, 0, len(ids))
	for _, id := range ids {
		b, err := s.getBookmark(ctx, LinkKey(id))
		if err != nil {
			continue
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, nil
}

// ReplaceAdminBookmarks overwrites the admin bookmark collection, removing
// documents absent from the new set. Used by the seed reloader.
func (s *Store) ReplaceAdminBookmarks(ctx context.Context, bookmarks []*domain.Bookmark) error {
	existing, err := s.client.SMembers(ctx, AllLinksKey()).Result()
	if err != nil {
		return classify("get admin bookmark ids", err)
	}
	old := make(map[string]*domain.Bookmark, len(existing))
	for _, id := range existing {
		if b, err := s.getBookmark(ctx, LinkKey(id)); err == nil {
			old[id] = b
		}
	}

	keep := make(map[string]bool, len(bookmarks))
	pipe := s.client.Pipeline()
	for _, b := range bookmarks {
		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("failed to marshal bookmark %s: %w", b.ID, err)
		}
		keep[b.ID] = true
		pipe.Set(ctx, LinkKey(b.ID), data, 0)
		pipe.SAdd(ctx, AllLinksKey(), b.ID)
		pipe.SAdd(ctx, LinksByCategoryKey(b.CategoryID), b.ID)
	}
	for id, b := range old {
		if !keep[id] {
			pipe.Del(ctx, LinkKey(id))
			pipe.SRem(ctx, AllLinksKey(), id)
			pipe.SRem(ctx, LinksByCategoryKey(b.CategoryID), id)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return classify("replace admin bookmarks", err)
	}
	return nil
}

// GetUserBookmarks retrieves a viewer's own bookmarks within one category.
func (s *Store) GetUserBookmarks(ctx context.Context, viewerID, categoryID string) ([]*domain.Bookmark, error) {
	ids, err := s.client.SMembers(ctx, UserBookmarksByCategoryKey(viewerID, categoryID)).Result()
	if err != nil {
		return nil, classify("get user bookmark ids", err)
	}

	bookmarks := make([]*domain.Bookmark, 0, len(ids))
	for _, id := range ids {
		b, err := s.getBookmark(ctx, UserBookmarkKey(viewerID, id))
		if err != nil {
			continue
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, nil
}

// GetUserBookmark retrieves a single viewer-owned bookmark.
func (s *Store) GetUserBookmark(ctx context.Context, viewerID, id string) (*domain.Bookmark, error) {
	return s.getBookmark(ctx, UserBookmarkKey(viewerID, id))
}

// SaveUserBookmark stores a viewer-owned bookmark.
func (s *Store) SaveUserBookmark(ctx context.Context, viewerID string, b *domain.Bookmark) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal bookmark: %w", err)
	}
	if err := s.client.Set(ctx, UserBookmarkKey(viewerID, b.ID), data, 0).Err(); err != nil {
		return classify("save user bookmark", err)
	}
	if err := s.client.SAdd(ctx, UserBookmarksByCategoryKey(viewerID, b.CategoryID), b.ID).Err(); err != nil {
		return classify("add user bookmark to set", err)
	}
	return nil
}

// DeleteUserBookmark removes a viewer-owned bookmark.
func (s *Store) DeleteUserBookmark(ctx context.Context, viewerID string, b *domain.Bookmark) error {
	if err := s.client.Del(ctx, UserBookmarkKey(viewerID, b.ID)).Err(); err != nil {
		return classify("delete user bookmark", err)
	}
	if err := s.client.SRem(ctx, UserBookmarksByCategoryKey(viewerID, b.CategoryID), b.ID).Err(); err != nil {
		return classify("remove user bookmark from set", err)
	}
	return nil
}

// DeleteUserBookmarksByCategory batch-deletes every viewer-owned bookmark of
// one category in a single pipeline (the category-delete cascade).
func (s *Store) DeleteUserBookmarksByCategory(ctx context.Context, viewerID, categoryID string) error {
	setKey := UserBookmarksByCategoryKey(viewerID, categoryID)
	ids, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return classify("get user bookmark ids", err)
	}

	pipe := s.client.Pipeline()
	for _, id := range ids {
		pipe.Del(ctx, UserBookmarkKey(viewerID, id))
	}
	pipe.Del(ctx, setKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return classify("batch delete user bookmarks", err)
	}
	return nil
}

func (s *Store) getBookmark(ctx context.Context, key string) (*domain.Bookmark, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, classify("get bookmark", err)
	}

	var b domain.Bookmark
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bookmark: %w", err)
	}
	return &b, nil
}
