package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/allmytab/startpage/internal/aggregator"
	"github.com/allmytab/startpage/internal/domain"
	"github.com/allmytab/startpage/internal/httpserver/deps"
	"github.com/allmytab/startpage/internal/logger"
)

// GetBookmarks returns the merged bookmark list for one category. A failed
// category stays failed until the client asks again with ?refetch=1.
func GetBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := viewer(w, r)
		if !ok {
			return
		}
		catID := chi.URLParam(r, "categoryID")

		var res aggregator.Result
		if r.URL.Query().Get("refetch") == "1" {
			res = d.Aggregator.Refetch(r.Context(), v, catID)
		} else {
			res = d.Aggregator.Fetch(r.Context(), v, catID)
		}

		writeJSON(w, http.StatusOK, res)
	}
}

type batchBookmarksRequest struct {
	CategoryIDs []string `json:"categoryIds"`
}

// BatchBookmarks fetches several categories at once, staggering the
// upstream reads so a dashboard load does not fire them all in the same
// instant.
func BatchBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := viewer(w, r)
		if !ok {
			return
		}
		var req batchBookmarksRequest
		if !decodeBody(w, r, &req) {
			return
		}

		results := d.Aggregator.FetchMany(r.Context(), v, req.CategoryIDs)
		writeJSON(w, http.StatusOK, results)
	}
}

// CreateBookmark adds a viewer-owned bookmark to a category. The favicon
// resolves in the background shortly after, debounced so only the last of
// a burst of edits hits the icon service.
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := viewer(w, r)
		if !ok {
			return
		}
		var req aggregator.Update
		if !decodeBody(w, r, &req) {
			return
		}
		catID := chi.URLParam(r, "categoryID")

		b, err := d.Aggregator.AddBookmark(r.Context(), v, catID, req)
		if err != nil {
			writeError(w, err)
			return
		}

		if b.Favicon == "" {
			scheduleFavicon(d, v, b.ID, catID, b.URL)
		}

		writeJSON(w, http.StatusCreated, b)
	}
}

// UpdateBookmark edits a bookmark. Editing an admin bookmark forks it into
// a viewer-owned copy and hides the original for this viewer.
func UpdateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := viewer(w, r)
		if !ok {
			return
		}
		var req aggregator.Update
		if !decodeBody(w, r, &req) {
			return
		}
		catID := chi.URLParam(r, "categoryID")
		bookmarkID := chi.URLParam(r, "bookmarkID")

		b, err := d.Aggregator.EditBookmark(r.Context(), v, catID, bookmarkID, req)
		if err != nil {
			writeError(w, err)
			return
		}

		if b.Favicon == "" {
			scheduleFavicon(d, v, b.ID, catID, b.URL)
		}

		writeJSON(w, http.StatusOK, b)
	}
}

// DeleteBookmark removes a viewer-owned bookmark or hides an admin one.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := viewer(w, r)
		if !ok {
			return
		}
		catID := chi.URLParam(r, "categoryID")
		bookmarkID := chi.URLParam(r, "bookmarkID")

		if err := d.Aggregator.DeleteBookmark(r.Context(), v, catID, bookmarkID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// scheduleFavicon resolves the icon after the debounce window and writes
// it back through the normal edit path, best effort.
func scheduleFavicon(d deps.Deps, v domain.Viewer, bookmarkID, categoryID, rawURL string) {
	d.Favicon.ResolveDebounced(v.ID+"|"+bookmarkID, rawURL, func(icon string) {
		if icon == "" {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		b, err := d.Store.GetUserBookmark(ctx, v.ID, bookmarkID)
		if err != nil {
			return
		}
		b.Favicon = icon
		if err := d.Store.SaveUserBookmark(ctx, v.ID, b); err != nil {
			d.Logger.Debug("favicon persist failed",
				logger.String("bookmark_id", bookmarkID),
				logger.Error(err))
			return
		}
		d.Aggregator.Refetch(ctx, v, categoryID)
	})
}
