package seed

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/allmytab/startpage/internal/domain"
)

// Mapper converts seed config into domain categories and bookmarks.
type Mapper struct{}

func NewMapper() *Mapper {
	return &Mapper{}
}

// MapCategories converts the seed categories to admin domain categories.
// IDs are stable name slugs so re-loading the same file converges on the
// same documents.
func (m *Mapper) MapCategories(cfg *Config) ([]*domain.Category, error) {
	now := time.Now()
	cats := make([]*domain.Category, 0, len(cfg.Categories))
	seen := make(map[string]bool, len(cfg.Categories))

	for _, entry := range cfg.Categories {
		if entry.Name == "" {
			continue
		}
		id := slug(entry.Name)
		if seen[id] {
			return nil, fmt.Errorf("duplicate category %q in seed", entry.Name)
		}
		seen[id] = true

		cats = append(cats, &domain.Category{
			ID:          id,
			DisplayName: entry.Name,
			Owner:       domain.OwnerAdmin,
			Order:       entry.Order,
			Countries:   normalizeTags(entry.Countries),
			Professions: normalizeTags(entry.Professions),
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	if len(cats) == 0 {
		return nil, fmt.Errorf("no valid categories found in seed")
	}
	return cats, nil
}

// MapBookmarks converts the seed links to admin domain bookmarks, keyed to
// the categories returned by MapCategories. Links pointing at an unknown
// category or carrying an unparsable URL are skipped.
func (m *Mapper) MapBookmarks(cfg *Config, cats []*domain.Category) ([]*domain.Bookmark, error) {
	known := make(map[string]bool, len(cats))
	for _, c := range cats {
		known[c.ID] = true
	}

	now := time.Now()
	bookmarks := make([]*domain.Bookmark, 0, len(cfg.Links))

	for _, entry := range cfg.Links {
		if entry.Name == "" || entry.Link == "" {
			continue
		}
		catID := slug(entry.Category)
		if !known[catID] {
			continue
		}
		if _, err := domain.NormalizeURL(entry.Link); err != nil {
			continue
		}

		bookmarks = append(bookmarks, &domain.Bookmark{
			ID:         linkID(entry.Link),
			Title:      entry.Name,
			URL:        entry.Link,
			Favicon:    entry.Icon,
			CategoryID: catID,
			Owner:      domain.OwnerAdmin,
			Order:      entry.Order,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	if len(bookmarks) == 0 {
		return nil, fmt.Errorf("no valid links found in seed")
	}
	return bookmarks, nil
}

// slug turns a display name into a stable lowercase id.
func slug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, s)
	return strings.Trim(s, "-")
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// linkID creates a stable id from a URL so the same link always maps to
// the same document even when its title changes.
func linkID(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:])[:16]
}
