package domain

import "time"

// OwnerKind distinguishes operator-curated content from viewer-owned content.
type OwnerKind string

const (
	// OwnerAdmin marks content curated by the operator, shared across all
	// viewers and read-only to the engine (per-viewer hide/fork excepted).
	OwnerAdmin OwnerKind = "admin"
	// OwnerUser marks content created by an individual viewer.
	OwnerUser OwnerKind = "user"
)

const (
	// ProfessionAll is the sentinel profession matching every category.
	ProfessionAll = "all"
	// CountryGlobal is the sentinel country tag matching every viewer.
	CountryGlobal = "global"
)

// Viewer carries the attributes the engine filters content by.
// Profession and Country are client-persisted preferences; ID comes from
// the auth provider.
type Viewer struct {
	ID         string
	Profession string // profession id or "all"
	Country    string // country code or "global"
}

// Category is a named group of bookmarks on the start page.
//
// A Category is uniquely identified by its ID. Admin categories are shared;
// user categories live under the owning viewer and are always visible to
// that viewer regardless of tags.
type Category struct {
	// ID is the canonical unique identifier, store-assigned and opaque.
	ID string `json:"id"`

	// DisplayName is shown as the category heading.
	DisplayName string `json:"name"`

	Owner OwnerKind `json:"ownerKind"`

	// Order positions the category among its siblings; ties keep
	// insertion order.
	Order int `json:"order"`

	// Countries restricts visibility to viewers in these countries.
	// The "global" tag matches everyone.
	Countries []string `json:"countries,omitempty"`

	// Professions restricts visibility to these profession ids.
	// The "all" tag matches everyone.
	Professions []string `json:"professions,omitempty"`

	// IsFavorites marks the synthetic per-viewer Favorites category.
	// At most one exists per viewer.
	IsFavorites bool `json:"isFavoritesCategory,omitempty"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// MatchesCountry reports whether the category is visible for the given
// viewer country. A "global" tag on the category matches any viewer, and a
// "global" viewer sees every country.
func (c *Category) MatchesCountry(country string) bool {
	if country == CountryGlobal {
		return true
	}
	for _, tag := range c.Countries {
		if tag == CountryGlobal || tag == country {
			return true
		}
	}
	return false
}

// MatchesProfession reports whether the category is visible for the given
// viewer profession. An "all" tag on the category matches any viewer, and
// an "all" viewer sees every profession.
func (c *Category) MatchesProfession(profession string) bool {
	if profession == ProfessionAll {
		return true
	}
	for _, tag := range c.Professions {
		if tag == ProfessionAll || tag == profession {
			return true
		}
	}
	return false
}

// VisibleTo applies the visibility invariant: user categories are always
// visible to their owner, admin categories must match country and profession.
func (c *Category) VisibleTo(v Viewer) bool {
	if c.Owner == OwnerUser {
		return true
	}
	return c.MatchesCountry(v.Country) && c.MatchesProfession(v.Profession)
}

// hasProfessionTag reports an explicit (non-sentinel) profession tag match.
func (c *Category) hasProfessionTag(profession string) bool {
	for _, tag := range c.Professions {
		if tag == profession {
			return true
		}
	}
	return false
}

// hasCountryTag reports an explicit (non-sentinel) country tag match.
func (c *Category) hasCountryTag(country string) bool {
	for _, tag := range c.Countries {
		if tag == country {
			return true
		}
	}
	return false
}
