package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/allmytab/startpage/internal/apperror"
	"github.com/allmytab/startpage/internal/domain"
	"github.com/allmytab/startpage/internal/httpserver/deps"
)

type favoriteRequest struct {
	CategoryID string `json:"categoryId"`
}

type favoriteResponse struct {
	BookmarkID string `json:"bookmarkId"`
	Favorited  bool   `json:"favorited"`
}

// ToggleFavorite flips the favorite flag on a bookmark. The bookmark must
// currently be visible in the given category.
func ToggleFavorite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := viewer(w, r)
		if !ok {
			return
		}
		var req favoriteRequest
		if !decodeBody(w, r, &req) {
			return
		}
		bookmarkID := chi.URLParam(r, "bookmarkID")

		b, err := findVisibleBookmark(r, d, v, req.CategoryID, bookmarkID)
		if err != nil {
			writeError(w, err)
			return
		}

		favorited, err := d.Engagement.ToggleFavorite(r.Context(), v, b)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, favoriteResponse{
			BookmarkID: bookmarkID,
			Favorited:  favorited,
		})
	}
}

// ToggleLike flips the viewer's like on a bookmark and returns the updated
// shared record.
func ToggleLike(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := viewer(w, r)
		if !ok {
			return
		}
		bookmarkID := chi.URLParam(r, "bookmarkID")

		rec, err := d.Engagement.ToggleLike(r.Context(), v, bookmarkID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

type batchLikesRequest struct {
	BookmarkIDs []string `json:"bookmarkIds"`
}

// BatchLikes returns like records for a set of bookmarks. Missing records
// come back as zero counts.
func BatchLikes(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := viewer(w, r); !ok {
			return
		}
		var req batchLikesRequest
		if !decodeBody(w, r, &req) {
			return
		}

		recs, err := d.Engagement.BatchLikes(r.Context(), req.BookmarkIDs)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

// findVisibleBookmark locates a bookmark in the merged view of a category.
func findVisibleBookmark(r *http.Request, d deps.Deps, v domain.Viewer, categoryID, bookmarkID string) (*domain.Bookmark, error) {
	res := d.Aggregator.Fetch(r.Context(), v, categoryID)
	for _, b := range res.Bookmarks {
		if b.ID == bookmarkID {
			return b, nil
		}
	}
	return nil, apperror.NotFound("bookmark", bookmarkID)
}
