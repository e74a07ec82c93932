package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/aininjas/internal/auth"
	"github.com/starford/aininjas/internal/content"
	"github.com/starford/aininjas/internal/prefs"
	"github.com/starford/aininjas/internal/sse"
)

// Deps wires the router to the domain services.
type Deps struct {
	Store  *content.Store
	Themes *prefs.Themes
	// Sessions backs credentials mode. Session routes are mounted only
	// when it is set.
	Sessions *auth.Sessions
	// Events, if set, is mounted at GET /events (content.updated only) and
	// GET /admin/events (everything).
	Events *sse.Broker

	AuthMode  string
	AuthToken string

	MediaDir       string
	MaxUploadBytes int64

	// BasePath is the prefix this router is mounted under. It is used to
	// build URLs handed back to clients.
	BasePath string
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(d Deps) chi.Router {
	h := NewHandler(d.Store, d.Themes)
	ah := NewAdminHandler(d.Store, d.Sessions)
	mh := NewMediaHandler(d.MediaDir, d.MaxUploadBytes, d.BasePath)

	r := chi.NewRouter()

	// Reader surface.
	r.Get("/articles", h.ListArticles)
	r.Get("/articles/{slug}", h.GetArticle)
	r.Get("/categories", h.Categories)
	r.Get("/courses", h.ListCourses)
	r.Get("/courses/{slug}", h.GetCourse)
	r.Post("/video/resolve", h.ResolveVideo)
	r.Get("/preferences/theme", h.GetTheme)
	r.Put("/preferences/theme", h.SetTheme)
	r.Post("/contact", h.Contact)
	r.Post("/subscribe", h.Subscribe)
	r.Get("/media/{filename}", mh.ServeFile)
	if d.Events != nil {
		r.Get("/events", d.Events.Handler(sse.OnlyContentUpdated).ServeHTTP)
	}

	r.Route("/admin", func(r chi.Router) {
		if d.Sessions != nil {
			r.Post("/session", ah.Login)
		}

		r.Group(func(r chi.Router) {
			var checker TokenChecker
			if d.Sessions != nil {
				checker = d.Sessions
			}
			r.Use(AuthMiddleware(d.AuthMode, d.AuthToken, checker))

			if d.Sessions != nil {
				r.Delete("/session", ah.Logout)
			}
			r.Get("/articles", ah.ListArticles)
			r.Post("/articles", ah.CreateArticle)
			r.Get("/articles/{id}", ah.GetArticle)
			r.Put("/articles/{id}", ah.UpdateArticle)
			r.Delete("/articles/{id}", ah.DeleteArticle)
			r.Post("/articles/{id}/publish", ah.TogglePublish)
			r.Get("/stats", ah.Stats)
			r.Post("/media", mh.Upload)
			if d.Events != nil {
				r.Get("/events", d.Events.ServeHTTP)
			}
		})
	})

	return r
}
