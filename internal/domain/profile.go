package domain

import "time"

// Layout is the multi-column placement of category ids on the start page.
// Every category id appearing in Columns occupies exactly one slot across
// all columns combined.
type Layout struct {
	Columns     [][]string `json:"columns"`
	ColumnCount int        `json:"columnCount"`
	LastUpdated time.Time  `json:"lastUpdated,omitempty"`
}

// NewLayout returns an empty layout with n columns (minimum 1).
func NewLayout(n int) Layout {
	if n < 1 {
		n = 1
	}
	return Layout{
		Columns:     make([][]string, n),
		ColumnCount: n,
	}
}

// Clone deep-copies the layout so optimistic mutations never alias the
// committed state.
func (l Layout) Clone() Layout {
	out := Layout{
		Columns:     make([][]string, len(l.Columns)),
		ColumnCount: l.ColumnCount,
		LastUpdated: l.LastUpdated,
	}
	for i, col := range l.Columns {
		out.Columns[i] = append([]string(nil), col...)
	}
	return out
}

// Position returns the column and index holding id.
func (l Layout) Position(id string) (col, idx int, ok bool) {
	for c, column := range l.Columns {
		for i, v := range column {
			if v == id {
				return c, i, true
			}
		}
	}
	return 0, 0, false
}

// CategoryIDs returns every placed id in column-major order.
func (l Layout) CategoryIDs() []string {
	var ids []string
	for _, col := range l.Columns {
		ids = append(ids, col...)
	}
	return ids
}

// Equal is a structural comparison, ignoring LastUpdated.
func (l Layout) Equal(other Layout) bool {
	if l.ColumnCount != other.ColumnCount || len(l.Columns) != len(other.Columns) {
		return false
	}
	for i := range l.Columns {
		if len(l.Columns[i]) != len(other.Columns[i]) {
			return false
		}
		for j := range l.Columns[i] {
			if l.Columns[i][j] != other.Columns[i][j] {
				return false
			}
		}
	}
	return true
}

// UserPreferences are UI preferences persisted on the profile document and
// passed explicitly into rendering. Not part of engine correctness.
type UserPreferences struct {
	ViewMode        string   `json:"viewMode,omitempty"` // "grid" | "list"
	OpenCategoryIDs []string `json:"openCategoryIds,omitempty"`
	Profession      string   `json:"profession,omitempty"`
	Country         string   `json:"country,omitempty"`
}

// Profile is the per-viewer document: layout, hidden admin bookmark ids,
// favorites, liked bookmarks and UI preferences.
type Profile struct {
	ViewerID string `json:"viewerId"`

	// Layout is mutated only through the layout manager's ensurePlacement
	// and reorder paths.
	Layout Layout `json:"categoryPositions"`

	// HiddenBookmarkIDs lists admin bookmark ids this viewer never sees.
	// Grows via hide/delete/fork, never shrinks automatically.
	HiddenBookmarkIDs []string `json:"hiddenBookmarkIds,omitempty"`

	// FavoriteBookmarkIDs is the ordered FavoriteSet. Membership is kept
	// in lockstep with the mirror bookmarks in the Favorites category.
	FavoriteBookmarkIDs []string `json:"favoriteBookmarkIds,omitempty"`

	// LikedBookmarks lists bookmark ids this viewer has liked.
	LikedBookmarks []string `json:"likedBookmarks,omitempty"`

	Preferences UserPreferences `json:"preferences,omitempty"`
}

// IsHidden reports whether bookmark id is in the viewer's hidden set.
func (p *Profile) IsHidden(bookmarkID string) bool {
	return containsString(p.HiddenBookmarkIDs, bookmarkID)
}

// IsFavorite reports FavoriteSet membership.
func (p *Profile) IsFavorite(bookmarkID string) bool {
	return containsString(p.FavoriteBookmarkIDs, bookmarkID)
}

// HasLiked reports whether the viewer has liked bookmark id.
func (p *Profile) HasLiked(bookmarkID string) bool {
	return containsString(p.LikedBookmarks, bookmarkID)
}

// LikeRecord is the global per-bookmark like aggregate. LikedBy is the
// source of truth; Likes is persisted for cheap reads and must equal
// len(LikedBy).
type LikeRecord struct {
	Likes   int      `json:"likes"`
	LikedBy []string `json:"likedBy"`
}

// Toggle flips viewerID's membership and recomputes the count.
// Returns true when the viewer likes the bookmark after the flip.
func (r *LikeRecord) Toggle(viewerID string) bool {
	for i, id := range r.LikedBy {
		if id == viewerID {
			r.LikedBy = append(r.LikedBy[:i], r.LikedBy[i+1:]...)
			r.Likes = len(r.LikedBy)
			return false
		}
	}
	r.LikedBy = append(r.LikedBy, viewerID)
	r.Likes = len(r.LikedBy)
	return true
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// AddString appends v if absent and returns the (possibly new) slice.
func AddString(list []string, v string) []string {
	if containsString(list, v) {
		return list
	}
	return append(list, v)
}

// RemoveString drops v and returns the (possibly new) slice.
func RemoveString(list []string, v string) []string {
	for i, s := range list {
		if s == v {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
