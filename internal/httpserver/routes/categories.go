package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/allmytab/startpage/internal/httpserver/deps"
	"github.com/allmytab/startpage/internal/httpserver/handlers"
	"github.com/allmytab/startpage/internal/httpserver/mw"
)

func init() { Register(registerCategories) }

func registerCategories(r chi.Router, d deps.Deps) {
	r.With(mw.Auth(d.Tokens, d.Logger)).Route("/api/categories", func(r chi.Router) {
		r.Get("/", handlers.ListCategories(d))
		r.Post("/", handlers.CreateCategory(d))
		r.Patch("/{categoryID}", handlers.UpdateCategory(d))
		r.Delete("/{categoryID}", handlers.DeleteCategory(d))

		r.Get("/{categoryID}/bookmarks", handlers.GetBookmarks(d))
		r.Post("/{categoryID}/bookmarks", handlers.CreateBookmark(d))
		r.Put("/{categoryID}/bookmarks/{bookmarkID}", handlers.UpdateBookmark(d))
		r.Delete("/{categoryID}/bookmarks/{bookmarkID}", handlers.DeleteBookmark(d))
	})
}
