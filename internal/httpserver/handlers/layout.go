package handlers

import (
	"net/http"

	"github.com/allmytab/startpage/internal/httpserver/deps"
)

type reorderRequest struct {
	SrcColumn int `json:"srcColumn"`
	SrcIndex  int `json:"srcIndex"`
	DstColumn int `json:"dstColumn"`
	DstIndex  int `json:"dstIndex"`
}

// ReorderLayout moves a category between layout positions. The response is
// always the layout as persisted: a failed write returns the committed
// state so the client can revert its optimistic move.
func ReorderLayout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := viewer(w, r)
		if !ok {
			return
		}
		var req reorderRequest
		if !decodeBody(w, r, &req) {
			return
		}

		l, err := d.LayoutManager.Reorder(r.Context(), v.ID, req.SrcColumn, req.SrcIndex, req.DstColumn, req.DstIndex)
		if err != nil {
			// l is the committed layout; send it with the error
			writeJSON(w, http.StatusConflict, struct {
				Error  string      `json:"error"`
				Layout interface{} `json:"layout"`
			}{Error: err.Error(), Layout: l})
			return
		}
		writeJSON(w, http.StatusOK, l)
	}
}

type columnCountRequest struct {
	Columns int  `json:"columns"`
	Preview bool `json:"preview,omitempty"`
}

// SetColumnCount redistributes the layout over a new column count. With
// preview=true nothing is persisted; the client can render the candidate
// layout before committing.
func SetColumnCount(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := viewer(w, r)
		if !ok {
			return
		}
		var req columnCountRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Columns < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "columns must be at least 1"})
			return
		}

		if req.Preview {
			l, err := d.LayoutManager.PreviewColumnCount(r.Context(), v.ID, req.Columns)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, l)
			return
		}

		l, err := d.LayoutManager.ApplyColumnCount(r.Context(), v.ID, req.Columns)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	}
}
