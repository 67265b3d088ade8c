package handlers

import (
	"context"
	"net/http"

	"github.com/allmytab/startpage/internal/aggregator"
	"github.com/allmytab/startpage/internal/domain"
	"github.com/allmytab/startpage/internal/httpserver/deps"
)

type dashboardResponse struct {
	Categories  []*domain.Category            `json:"categories"`
	Groups      map[string][]*domain.Category `json:"groups,omitempty"`
	Layout      domain.Layout                 `json:"layout"`
	Preferences domain.UserPreferences        `json:"preferences"`
	Bookmarks   map[string]aggregator.Result  `json:"bookmarks"`
}

// collectBookmarks fetches the open categories and folds in the cached
// snapshot of any other category that was loaded earlier, so a collapsed
// category the viewer already opened renders its bookmarks again without a
// new fetch. Idle categories stay lazy.
func collectBookmarks(ctx context.Context, agg *aggregator.Aggregator, v domain.Viewer, open, all []string) map[string]aggregator.Result {
	results := agg.FetchMany(ctx, v, open)
	for _, id := range all {
		if _, ok := results[id]; ok {
			continue
		}
		if res := agg.State(v, id); res.State != aggregator.StateIdle {
			results[id] = res
		}
	}
	return results
}

// Dashboard assembles the whole first paint in one request: visible
// categories, reconciled layout, preferences, and bookmarks for the
// categories the viewer keeps open. The bookmark fetches are staggered
// internally.
func Dashboard(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := viewer(w, r)
		if !ok {
			return
		}
		ctx := r.Context()

		cats, err := d.Resolver.Resolve(ctx, v)
		if err != nil {
			writeError(w, err)
			return
		}

		l, err := d.LayoutManager.EnsurePlacement(ctx, v.ID, categoryIDs(cats))
		if err != nil {
			writeError(w, err)
			return
		}

		p, err := d.Store.GetProfile(ctx, v.ID)
		if err != nil {
			writeError(w, err)
			return
		}

		// Only fetch what is rendered expanded; collapsed categories load
		// lazily on demand.
		open := p.Preferences.OpenCategoryIDs
		if len(open) == 0 {
			open = l.CategoryIDs()
		}
		bookmarks := collectBookmarks(ctx, d.Aggregator, v, open, l.CategoryIDs())

		writeJSON(w, http.StatusOK, dashboardResponse{
			Categories:  cats,
			Groups:      professionGroups(v, cats),
			Layout:      l,
			Preferences: p.Preferences,
			Bookmarks:   bookmarks,
		})
	}
}
