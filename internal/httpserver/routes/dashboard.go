package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/allmytab/startpage/internal/httpserver/deps"
	"github.com/allmytab/startpage/internal/httpserver/handlers"
	"github.com/allmytab/startpage/internal/httpserver/mw"
)

func init() { Register(registerDashboard) }

func registerDashboard(r chi.Router, d deps.Deps) {
	r.With(mw.Auth(d.Tokens, d.Logger)).Get("/api/dashboard", handlers.Dashboard(d))
}
