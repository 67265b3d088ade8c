package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/allmytab/startpage/internal/httpserver/deps"
	"github.com/allmytab/startpage/internal/httpserver/handlers"
	"github.com/allmytab/startpage/internal/httpserver/mw"
)

func init() { Register(registerAdmin) }

func registerAdmin(r chi.Router, d deps.Deps) {
	r.With(mw.AdminOnly(d.AdminCIDRs, d.TrustProxy, d.Logger)).Post("/api/admin/reload", handlers.Reload(d))
}
