package handlers

import (
	"context"
	"net/http"

	"github.com/allmytab/startpage/internal/domain"
	"github.com/allmytab/startpage/internal/httpserver/deps"
	"github.com/allmytab/startpage/internal/logger"
)

// GetPreferences returns the viewer's display preferences.
func GetPreferences(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := viewer(w, r)
		if !ok {
			return
		}
		p, err := d.Store.GetProfile(r.Context(), v.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p.Preferences)
	}
}

type preferencesResponse struct {
	Preferences domain.UserPreferences `json:"preferences"`
	Categories  []*domain.Category     `json:"categories,omitempty"`
}

// viewerWithPreferences overlays the stored filter attributes on the token
// viewer. Blank fields fall back to the unfiltered sentinels.
func viewerWithPreferences(v domain.Viewer, prefs domain.UserPreferences) domain.Viewer {
	v.Profession = prefs.Profession
	if v.Profession == "" {
		v.Profession = domain.ProfessionAll
	}
	v.Country = prefs.Country
	if v.Country == "" {
		v.Country = domain.CountryGlobal
	}
	return v
}

// refilterForPreferences recomputes the visible set for the updated
// attributes from the cached fetches, so the switch does not wait on a
// store round-trip. Returns nil when no cached fetch exists and the full
// resolve fails.
func refilterForPreferences(ctx context.Context, d deps.Deps, v domain.Viewer, prefs domain.UserPreferences) []*domain.Category {
	nv := viewerWithPreferences(v, prefs)
	cats, err := d.Resolver.Refilter(ctx, nv)
	if err != nil {
		d.Logger.Warn("refilter after preference change failed",
			logger.String("viewer_id", v.ID),
			logger.Error(err))
		return nil
	}
	return cats
}

// PutPreferences replaces the viewer's display preferences whole. A
// profession or country change refilters the visible categories
// synchronously and returns the new set alongside the saved preferences.
func PutPreferences(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := viewer(w, r)
		if !ok {
			return
		}
		var prefs domain.UserPreferences
		if !decodeBody(w, r, &prefs) {
			return
		}
		ctx := r.Context()

		p, err := d.Store.GetProfile(ctx, v.ID)
		if err != nil {
			writeError(w, err)
			return
		}

		filtersChanged := p.Preferences.Profession != prefs.Profession ||
			p.Preferences.Country != prefs.Country

		p.Preferences = prefs
		if err := d.Store.SaveProfile(ctx, p); err != nil {
			writeError(w, err)
			return
		}

		resp := preferencesResponse{Preferences: p.Preferences}
		if filtersChanged {
			resp.Categories = refilterForPreferences(ctx, d, v, prefs)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
