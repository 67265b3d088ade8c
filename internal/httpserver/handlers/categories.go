package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/xid"

	"github.com/allmytab/startpage/internal/apperror"
	"github.com/allmytab/startpage/internal/domain"
	"github.com/allmytab/startpage/internal/httpserver/deps"
	"github.com/allmytab/startpage/internal/logger"
)

type categoriesResponse struct {
	Categories []*domain.Category            `json:"categories"`
	Groups     map[string][]*domain.Category `json:"groups,omitempty"`
	Layout     domain.Layout                 `json:"layout"`
}

// professionGroups buckets the visible set under profession headings when
// the viewer browses unfiltered. Filtered viewers get a flat list only.
func professionGroups(v domain.Viewer, cats []*domain.Category) map[string][]*domain.Category {
	if v.Profession != domain.ProfessionAll {
		return nil
	}
	return domain.GroupByProfession(cats)
}

// ListCategories returns the viewer's visible categories with their layout
// reconciled so every category has a position.
func ListCategories(d deps.Deps) http.HandlerFunc {
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

		writeJSON(w, http.StatusOK, categoriesResponse{
			Categories: cats,
			Groups:     professionGroups(v, cats),
			Layout:     l,
		})
	}
}

type createCategoryRequest struct {
	Name  string `json:"name"`
	Order int    `json:"order,omitempty"`
}

// CreateCategory adds a viewer-owned category and places it in the layout.
func CreateCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := viewer(w, r)
		if !ok {
			return
		}
		var req createCategoryRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Name == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required"})
			return
		}
		ctx := r.Context()

		now := d.TimeNow()
		cat := &domain.Category{
			ID:          xid.New().String(),
			DisplayName: req.Name,
			Owner:       domain.OwnerUser,
			Order:       req.Order,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := d.Store.SaveUserCategory(ctx, v.ID, cat); err != nil {
			writeError(w, err)
			return
		}
		d.Resolver.InvalidateViewer(v)

		if _, err := d.LayoutManager.Place(ctx, v.ID, cat.ID); err != nil {
			d.Logger.Warn("category placement failed",
				logger.String("category_id", cat.ID),
				logger.Error(err))
		}

		writeJSON(w, http.StatusCreated, cat)
	}
}

type renameCategoryRequest struct {
	Name  string `json:"name"`
	Order int    `json:"order,omitempty"`
}

// UpdateCategory renames or reorders a viewer-owned category. Admin
// categories are read-only.
func UpdateCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := viewer(w, r)
		if !ok {
			return
		}
		var req renameCategoryRequest
		if !decodeBody(w, r, &req) {
			return
		}
		ctx := r.Context()
		id := chi.URLParam(r, "categoryID")

		cat, err := findCategory(r, d, v, id)
		if err != nil {
			writeError(w, err)
			return
		}
		if cat.Owner != domain.OwnerUser {
			writeError(w, apperror.Permission("update category"))
			return
		}

		if req.Name != "" {
			cat.DisplayName = req.Name
		}
		if req.Order != 0 {
			cat.Order = req.Order
		}
		cat.UpdatedAt = time.Now()

		if err := d.Store.SaveUserCategory(ctx, v.ID, cat); err != nil {
			writeError(w, err)
			return
		}
		d.Resolver.InvalidateViewer(v)
		writeJSON(w, http.StatusOK, cat)
	}
}

// DeleteCategory removes a category for this viewer: own bookmarks are
// deleted, admin bookmarks hidden, and the category document removed when
// viewer-owned.
func DeleteCategory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := viewer(w, r)
		if !ok {
			return
		}
		ctx := r.Context()
		id := chi.URLParam(r, "categoryID")

		cat, err := findCategory(r, d, v, id)
		if err != nil {
			writeError(w, err)
			return
		}

		if err := d.Aggregator.DeleteCategory(ctx, v, cat); err != nil {
			writeError(w, err)
			return
		}
		d.Resolver.InvalidateViewer(v)

		w.WriteHeader(http.StatusNoContent)
	}
}

func findCategory(r *http.Request, d deps.Deps, v domain.Viewer, id string) (*domain.Category, error) {
	cats, err := d.Resolver.Resolve(r.Context(), v)
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, apperror.NotFound("category", id)
}

func categoryIDs(cats []*domain.Category) []string {
	ids := make([]string, 0, len(cats))
	for _, c := range cats {
		ids = append(ids, c.ID)
	}
	return ids
}
