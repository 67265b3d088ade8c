package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/allmytab/startpage/internal/httpserver/deps"
	"github.com/allmytab/startpage/internal/httpserver/handlers"
	"github.com/allmytab/startpage/internal/httpserver/mw"
)

func init() { Register(registerInfra) }

func registerInfra(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
	r.With(mw.AdminOnly(d.AdminCIDRs, d.TrustProxy, d.Logger)).Get("/readyz", handlers.Readyz(d))
}
