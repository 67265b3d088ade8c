package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/allmytab/startpage/internal/httpserver/deps"
	"github.com/allmytab/startpage/internal/httpserver/handlers"
	"github.com/allmytab/startpage/internal/httpserver/mw"
)

func init() { Register(registerPreferences) }

func registerPreferences(r chi.Router, d deps.Deps) {
	r.With(mw.Auth(d.Tokens, d.Logger)).Route("/api/preferences", func(r chi.Router) {
		r.Get("/", handlers.GetPreferences(d))
		r.Put("/", handlers.PutPreferences(d))
	})
}
