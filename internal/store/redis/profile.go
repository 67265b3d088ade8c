package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/allmytab/startpage/internal/apperror"
	"github.com/allmytab/startpage/internal/domain"
)

// DefaultColumnCount is the layout width of a fresh profile.
const DefaultColumnCount = 4

// GetProfile retrieves the viewer's profile document. A viewer without one
// gets a fresh default profile, not an error (profiles are created lazily).
func (s *Store) GetProfile(ctx context.Context, viewerID string) (*domain.Profile, error) {
	data, err := s.client.Get(ctx, ProfileKey(viewerID)).Bytes()
	if err != nil {
		classified := classify("get profile", err)
		if errors.Is(classified, apperror.ErrNotFound) {
			return &domain.Profile{
				ViewerID: viewerID,
				Layout:   domain.NewLayout(DefaultColumnCount),
			}, nil
		}
		return nil, classified
	}

	var p domain.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	if p.ViewerID == "" {
		p.ViewerID = viewerID
	}
	if len(p.Layout.Columns) == 0 {
		p.Layout = domain.NewLayout(DefaultColumnCount)
	}
	return &p, nil
}

// SaveProfile stores the full profile document. Concurrent sessions are
// last-write-wins.
func (s *Store) SaveProfile(ctx context.Context, p *domain.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := s.client.Set(ctx, ProfileKey(p.ViewerID), data, 0).Err(); err != nil {
		return classify("save profile", err)
	}
	return nil
}
