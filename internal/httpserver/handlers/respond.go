package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/allmytab/startpage/internal/apperror"
	"github.com/allmytab/startpage/internal/auth"
	"github.com/allmytab/startpage/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, apperror.ErrPermission):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, apperror.ErrInvalidURL):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, apperror.ErrTransient):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// viewer extracts the authenticated viewer or responds 401.
func viewer(w http.ResponseWriter, r *http.Request) (domain.Viewer, bool) {
	v, ok := auth.ViewerFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return domain.Viewer{}, false
	}
	return v, true
}
