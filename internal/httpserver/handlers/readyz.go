package handlers

import (
	"net/http"

	"github.com/allmytab/startpage/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Redis string `json:"redis"`
}

// Readyz reports readiness: the server is ready once Redis answers pings.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.RedisClient.Ping(r.Context()).Err(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{
				Ready: false,
				Redis: err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true, Redis: "ok"})
	}
}
