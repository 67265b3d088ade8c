package domain

import "sort"

// VisibleCategories computes the viewer's visible category set.
//
// User categories are always included. Admin categories pass the country
// filter then the profession filter. The result is stable-sorted so that
// categories explicitly tagged with the viewer's specific profession come
// first, then (for a specific viewer country) admin categories explicitly
// tagged with that country; ties preserve the incoming order.
func VisibleCategories(v Viewer, all []*Category) []*Category {
	visible := make([]*Category, 0, len(all))

	// user-owned first, always visible
	for _, c := range all {
		if c.Owner == OwnerUser {
			visible = append(visible, c)
		}
	}
	for _, c := range all {
		if c.Owner == OwnerAdmin && c.VisibleTo(v) {
			visible = append(visible, c)
		}
	}

	rank := func(c *Category) int {
		r := 2
		if v.Country != CountryGlobal && c.Owner == OwnerAdmin && c.hasCountryTag(v.Country) {
			r = 1
		}
		if v.Profession != ProfessionAll && c.hasProfessionTag(v.Profession) {
			r = 0
		}
		return r
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return rank(visible[i]) < rank(visible[j])
	})

	return visible
}

// GroupByProfession buckets categories by their first profession tag, used
// for presentation when the viewer profession is "all" (no filtering
// applies, so the page groups admin content under profession headings).
// Categories without a specific tag land under the "all" bucket.
func GroupByProfession(categories []*Category) map[string][]*Category {
	groups := make(map[string][]*Category)
	for _, c := range categories {
		key := ProfessionAll
		for _, tag := range c.Professions {
			if tag != ProfessionAll {
				key = tag
				break
			}
		}
		groups[key] = append(groups[key], c)
	}
	return groups
}

// SortCategories orders categories by ascending Order, ties by insertion
// order.
func SortCategories(categories []*Category) {
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Order < categories[j].Order
	})
}
