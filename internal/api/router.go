package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/jotter/internal/account"
	"github.com/starford/jotter/internal/ideaservice"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events inside the session group.
func NewRouter(ideas *ideaservice.Service, accounts *account.Service, sseHandler http.Handler) chi.Router {
	h := NewHandler(ideas, accounts)

	r := chi.NewRouter()

	// Public.
	r.Post("/auth/signup", h.SignUp)
	r.Post("/auth/login", h.Login)
	r.Get("/labels", h.Palette)
	r.Get("/labels/{label}", h.Label)

	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware(accounts))

		r.Post("/auth/logout", h.Logout)
		r.Get("/auth/me", h.Me)

		// Ideas.
		r.Get("/ideas", h.ListIdeas)
		r.Post("/ideas", h.CreateIdea)
		r.Get("/ideas/{id}", h.GetIdea)
		r.Put("/ideas/{id}", h.UpdateIdea)
		r.Delete("/ideas/{id}", h.DeleteIdea)
		r.Put("/ideas/{id}/folder", h.MoveIdea)

		// Folders.
		r.Get("/folders", h.ListFolders)
		r.Post("/folders", h.CreateFolder)
		r.Get("/folders/{id}", h.GetFolder)
		r.Put("/folders/{id}", h.RenameFolder)
		r.Delete("/folders/{id}", h.DeleteFolder)

		r.Get("/search", h.Search)
		r.Post("/highlight", h.Highlight)

		if sseHandler != nil {
			r.Get("/events", sseHandler.ServeHTTP)
		}
	})

	return r
}
