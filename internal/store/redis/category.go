package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/allmytab/startpage/internal/domain"
)

// GetAdminCategories retrieves every operator-curated category.
// Documents missing from under their membership set are skipped.
func (s *Store) GetAdminCategories(ctx context.Context) ([]*domain.Category, error) {
	ids, err := s.client.SMembers(ctx, AllCategoriesKey()).Result()
	if err != nil {
		return nil, classify("get admin category ids", err)
	}

	categories := make([]*domain.Category, 0, len(ids))
	for _, id := range ids {
		c, err := s.getCategory(ctx, CategoryKey(id))
		if err != nil {
			continue
		}
		categories = append(categories, c)
	}
	domain.SortCategories(categories)
	return categories, nil
}

// ReplaceAdminCategories overwrites the admin category collection with the
// given set, removing documents absent from it. Used by the seed reloader.
func (s *Store) ReplaceAdminCategories(ctx context.Context, categories []*domain.Category) error {
	existing, err := s.client.SMembers(ctx, AllCategoriesKey()).Result()
	if err != nil {
		return classify("get admin category ids", err)
	}

	keep := make(map[string]bool, len(categories))
	pipe := s.client.Pipeline()
	for _, c := range categories {
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal category %s: %w", c.ID, err)
		}
		keep[c.ID] = true
		pipe.Set(ctx, CategoryKey(c.ID), data, 0)
		pipe.SAdd(ctx, AllCategoriesKey(), c.ID)
	}
	for _, id := range existing {
		if !keep[id] {
			pipe.Del(ctx, CategoryKey(id))
			pipe.SRem(ctx, AllCategoriesKey(), id)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return classify("replace admin categories", err)
	}
	return nil
}

// GetUserCategories retrieves a viewer's own categories.
func (s *Store) GetUserCategories(ctx context.Context, viewerID string) ([]*domain.Category, error) {
	ids, err := s.client.SMembers(ctx, UserCategoriesKey(viewerID)).Result()
	if err != nil {
		return nil, classify("get user category ids", err)
	}

	categories := make([]*domain.Category, 0, len(ids))
	for _, id := range ids {
		c, err := s.getCategory(ctx, UserCategoryKey(viewerID, id))
		if err != nil {
			continue
		}
		categories = append(categories, c)
	}
	domain.SortCategories(categories)
	return categories, nil
}

// SaveUserCategory stores a viewer-owned category.
func (s *Store) SaveUserCategory(ctx context.Context, viewerID string, c *domain.Category) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal category: %w", err)
	}
	if err := s.client.Set(ctx, UserCategoryKey(viewerID, c.ID), data, 0).Err(); err != nil {
		return classify("save user category", err)
	}
	if err := s.client.SAdd(ctx, UserCategoriesKey(viewerID), c.ID).Err(); err != nil {
		return classify("add user category to set", err)
	}
	return nil
}

// DeleteUserCategory removes a viewer-owned category document. Bookmark
// cascade is the aggregator's responsibility.
func (s *Store) DeleteUserCategory(ctx context.Context, viewerID, id string) error {
	if err := s.client.Del(ctx, UserCategoryKey(viewerID, id)).Err(); err != nil {
		return classify("delete user category", err)
	}
	if err := s.client.SRem(ctx, UserCategoriesKey(viewerID), id).Err(); err != nil {
		return classify("remove user category from set", err)
	}
	return nil
}

func (s *Store) getCategory(ctx context.Context, key string) (*domain.Category, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, classify("get category", err)
	}

	var c domain.Category
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal category: %w", err)
	}
	return &c, nil
}
