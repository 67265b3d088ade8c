package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/allmytab/startpage/internal/httpserver/deps"
	"github.com/allmytab/startpage/internal/httpserver/handlers"
	"github.com/allmytab/startpage/internal/httpserver/mw"
)

func init() { Register(registerEngagement) }

func registerEngagement(r chi.Router, d deps.Deps) {
	r.With(mw.Auth(d.Tokens, d.Logger)).Route("/api/bookmarks", func(r chi.Router) {
		r.Post("/batch", handlers.BatchBookmarks(d))
		r.Post("/{bookmarkID}/favorite", handlers.ToggleFavorite(d))
		r.Post("/{bookmarkID}/like", handlers.ToggleLike(d))
		r.Post("/likes", handlers.BatchLikes(d))
	})
}
