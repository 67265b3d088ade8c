package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/allmytab/startpage/internal/httpserver/deps"
	"github.com/allmytab/startpage/internal/httpserver/handlers"
)

func init() { Register(registerSession) }

func registerSession(r chi.Router, d deps.Deps) {
	r.Post("/api/session", handlers.Session(d))
}
