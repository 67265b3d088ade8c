package handlers

import (
	"net/http"

	"github.com/rs/xid"

	"github.com/allmytab/startpage/internal/httpserver/deps"
	"github.com/allmytab/startpage/internal/logger"
)

type sessionRequest struct {
	ViewerID   string `json:"viewerId,omitempty"`
	Profession string `json:"profession,omitempty"`
	Country    string `json:"country,omitempty"`
}

type sessionResponse struct {
	Token    string `json:"token"`
	ViewerID string `json:"viewerId"`
}

// Session mints a viewer token. A request without a viewer id starts a
// fresh anonymous identity; sending the id back later resumes it.
func Session(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sessionRequest
		if r.ContentLength > 0 && !decodeBody(w, r, &req) {
			return
		}

		if req.ViewerID == "" {
			req.ViewerID = xid.New().String()
		}

		token, err := d.Tokens.Issue(req.ViewerID, req.Profession, req.Country)
		if err != nil {
			writeError(w, err)
			return
		}

		d.Logger.Debug("session issued",
			logger.String("viewer_id", req.ViewerID))
		writeJSON(w, http.StatusOK, sessionResponse{
			Token:    token,
			ViewerID: req.ViewerID,
		})
	}
}
