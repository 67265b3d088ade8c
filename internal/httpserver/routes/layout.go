package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/allmytab/startpage/internal/httpserver/deps"
	"github.com/allmytab/startpage/internal/httpserver/handlers"
	"github.com/allmytab/startpage/internal/httpserver/mw"
)

func init() { Register(registerLayout) }

func registerLayout(r chi.Router, d deps.Deps) {
	r.With(mw.Auth(d.Tokens, d.Logger)).Route("/api/layout", func(r chi.Router) {
		r.Put("/", handlers.ReorderLayout(d))
		r.Put("/columns", handlers.SetColumnCount(d))
	})
}
