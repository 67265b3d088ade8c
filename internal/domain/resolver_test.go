package domain

import (
	"testing"
)

func adminCat(id string, countries, professions []string) *Category {
	return &Category{
		ID:          id,
		DisplayName: id,
		Owner:       OwnerAdmin,
		Countries:   countries,
		Professions: professions,
	}
}

func userCat(id string) *Category {
	return &Category{ID: id, DisplayName: id, Owner: OwnerUser}
}

func TestVisibleCategories(t *testing.T) {
	all := []*Category{
		adminCat("global-all", []string{"global"}, []string{"all"}),
		adminCat("ph-only", []string{"ph"}, []string{"all"}),
		adminCat("bpo-tools", []string{"global"}, []string{"bpo"}),
		adminCat("dev-tools", []string{"global"}, []string{"dev"}),
		userCat("my-stuff"),
	}

	tests := []struct {
		name    string
		viewer  Viewer
		wantIDs []string
	}{
		{
			name:   "unfiltered viewer sees everything",
			viewer: Viewer{ID: "v1", Profession: "all", Country: "global"},
			wantIDs: []string{
				"my-stuff", "global-all", "ph-only", "bpo-tools", "dev-tools",
			},
		},
		{
			name:   "profession filter drops other professions",
			viewer: Viewer{ID: "v1", Profession: "bpo", Country: "global"},
			wantIDs: []string{
				// bpo-tools ranks first: explicit profession match
				"bpo-tools", "my-stuff", "global-all", "ph-only",
			},
		},
		{
			name:   "country filter drops other countries",
			viewer: Viewer{ID: "v1", Profession: "all", Country: "us"},
			wantIDs: []string{
				"my-stuff", "global-all", "bpo-tools", "dev-tools",
			},
		},
		{
			name:   "country match ranks above untagged",
			viewer: Viewer{ID: "v1", Profession: "all", Country: "ph"},
			wantIDs: []string{
				"ph-only", "my-stuff", "global-all", "bpo-tools", "dev-tools",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VisibleCategories(tt.viewer, all)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("VisibleCategories() returned %d categories, want %d: %v",
					len(got), len(tt.wantIDs), ids(got))
			}
			for i, want := range tt.wantIDs {
				if got[i].ID != want {
					t.Errorf("position %d = %s, want %s (full: %v)", i, got[i].ID, want, ids(got))
				}
			}
		})
	}
}

func TestVisibleCategoriesUserAlwaysIncluded(t *testing.T) {
	// A user category keeps its visibility even when its tags would fail
	// the admin filters.
	mine := userCat("mine")
	mine.Countries = []string{"jp"}
	mine.Professions = []string{"nurse"}

	v := Viewer{ID: "v1", Profession: "dev", Country: "us"}
	got := VisibleCategories(v, []*Category{mine})
	if len(got) != 1 || got[0].ID != "mine" {
		t.Errorf("VisibleCategories() = %v, want [mine]", ids(got))
	}
}

func TestGroupByProfession(t *testing.T) {
	cats := []*Category{
		adminCat("a", nil, []string{"all"}),
		adminCat("b", nil, []string{"bpo"}),
		adminCat("c", nil, []string{"all", "dev"}),
		adminCat("d", nil, nil),
	}

	groups := GroupByProfession(cats)

	if got := ids(groups["all"]); len(got) != 2 {
		t.Errorf(`groups["all"] = %v, want [a d]`, got)
	}
	if got := ids(groups["bpo"]); len(got) != 1 || got[0] != "b" {
		t.Errorf(`groups["bpo"] = %v, want [b]`, got)
	}
	if got := ids(groups["dev"]); len(got) != 1 || got[0] != "c" {
		t.Errorf(`groups["dev"] = %v, want [c]`, got)
	}
}

func TestSortCategoriesStable(t *testing.T) {
	a := &Category{ID: "a", Order: 2}
	b := &Category{ID: "b", Order: 1}
	c := &Category{ID: "c", Order: 2}

	cats := []*Category{a, b, c}
	SortCategories(cats)

	want := []string{"b", "a", "c"}
	for i, id := range want {
		if cats[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, cats[i].ID, id)
		}
	}
}

func ids(cats []*Category) []string {
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		out = append(out, c.ID)
	}
	return out
}
