package domain

import (
	"sort"
	"time"
)

// Bookmark is a single link inside a category.
//
// Admin bookmarks are shared and read-only; editing one for a viewer forks
// it into a user bookmark that shadows the original via OriginalBookmarkID
// while the original id lands in the viewer's hidden set.
type Bookmark struct {
	// ID is the canonical unique identifier, store-assigned and opaque.
	ID string `json:"id"`

	Title string `json:"title"`

	// URL as entered; dedup always goes through NormalizeURL, never
	// through this raw value.
	URL string `json:"url"`

	// Favicon is a best-effort icon URL. Never authoritative.
	Favicon string `json:"favicon,omitempty"`

	CategoryID string    `json:"categoryId"`
	Owner      OwnerKind `json:"ownerKind"`

	// Order positions the bookmark within its category.
	Order int `json:"order"`

	// OriginalBookmarkID points back at the admin bookmark this one
	// shadows (fork or favorite mirror). Empty for ordinary bookmarks.
	OriginalBookmarkID string `json:"originalBookmarkId,omitempty"`

	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// SortBookmarks orders bookmarks by ascending Order, ties by insertion order.
func SortBookmarks(bookmarks []*Bookmark) {
	sort.SliceStable(bookmarks, func(i, j int) bool {
		return bookmarks[i].Order < bookmarks[j].Order
	})
}
