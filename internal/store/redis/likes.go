package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/allmytab/startpage/internal/apperror"
	"github.com/allmytab/startpage/internal/domain"
)

// GetLikeRecord retrieves the global like aggregate for one bookmark.
// A missing record reads as the zero aggregate.
func (s *Store) GetLikeRecord(ctx context.Context, bookmarkID string) (*domain.LikeRecord, error) {
	data, err := s.client.Get(ctx, LikeKey(bookmarkID)).Bytes()
	if err != nil {
		classified := classify("get like record", err)
		if errors.Is(classified, apperror.ErrNotFound) {
			return &domain.LikeRecord{LikedBy: []string{}}, nil
		}
		return nil, classified
	}

	var rec domain.LikeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal like record: %w", err)
	}
	// LikedBy is the source of truth; the count is derivable.
	rec.Likes = len(rec.LikedBy)
	return &rec, nil
}

// SaveLikeRecord stores the like aggregate in a single merged write,
// re-deriving the count from the membership set first.
func (s *Store) SaveLikeRecord(ctx context.Context, bookmarkID string, rec *domain.LikeRecord) error {
	rec.Likes = len(rec.LikedBy)
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal like record: %w", err)
	}
	if err := s.client.Set(ctx, LikeKey(bookmarkID), data, 0).Err(); err != nil {
		return classify("save like record", err)
	}
	return nil
}
