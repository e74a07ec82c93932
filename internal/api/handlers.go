package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"

	"github.com/starford/aininjas/internal/catalog"
	"github.com/starford/aininjas/internal/checksum"
	"github.com/starford/aininjas/internal/content"
	"github.com/starford/aininjas/internal/markup"
	"github.com/starford/aininjas/internal/prefs"
	"github.com/starford/aininjas/internal/video"
)

// Handler holds the reader-facing route handlers.
type Handler struct {
	store  *content.Store
	themes *prefs.Themes
	query  *schema.Decoder
}

// NewHandler creates a new Handler.
func NewHandler(store *content.Store, themes *prefs.Themes) *Handler {
	return &Handler{store: store, themes: themes, query: newQueryDecoder()}
}

func newQueryDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

// ListArticles handles GET /articles.
//
//	@Summary		List published articles, newest first
//	@Tags			articles
//	@Produce		json
//	@Param			search		query		string	false	"Case-insensitive match on title or summary"
//	@Param			category	query		string	false	"Category, or All"
//	@Success		200			{object}	ArticleListResponse
//	@Router			/articles [get]
func (h *Handler) ListArticles(w http.ResponseWriter, r *http.Request) {
	var q ArticleQuery
	if err := h.query.Decode(&q, r.URL.Query()); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid query"))
		return
	}
	articles := content.Search(h.store.ListPublished(r.Context()), strings.TrimSpace(q.Search), q.Category)
	writeJSON(w, http.StatusOK, ArticleListResponse{Articles: articles, Total: len(articles)})
}

// GetArticle handles GET /articles/{slug}.
//
//	@Summary		Get a published article with its rendered body
//	@Tags			articles
//	@Produce		json
//	@Param			slug			path		string	true	"Article slug"
//	@Param			If-None-Match	header		string	false	"ETag from a previous response"
//	@Success		200				{object}	ArticleDetail
//	@Success		304				"Not modified"
//	@Failure		404				{object}	errResponse
//	@Router			/articles/{slug} [get]
func (h *Handler) GetArticle(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	a, err := h.store.FindBySlug(r.Context(), slug)
	if err != nil {
		writeError(w, err, "get article", slog.String("slug", slug))
		return
	}

	doc := markup.Parse(a.Content)
	detail := ArticleDetail{Article: a, Blocks: doc.Blocks, TOC: doc.TOC}
	if ref := video.Resolve(a.Video); ref.Valid {
		detail.Player = &ref
	}

	body, err := json.Marshal(detail)
	if err != nil {
		writeError(w, err, "encode article", slog.String("slug", slug))
		return
	}
	etag := checksum.ETag(body)
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(body, '\n'))
}

// Categories handles GET /categories.
//
//	@Summary		List filter categories, All first
//	@Tags			articles
//	@Produce		json
//	@Success		200	{array}	string
//	@Router			/categories [get]
func (h *Handler) Categories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Categories())
}

// ListCourses handles GET /courses.
func (h *Handler) ListCourses(w http.ResponseWriter, _ *http.Request) {
	courses, err := catalog.List()
	if err != nil {
		writeError(w, err, "list courses")
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

// GetCourse handles GET /courses/{slug}.
func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	c, err := catalog.Get(chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err, "get course")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ResolveVideo handles POST /video/resolve. Invalid URLs are not an error;
// the response simply reports valid=false.
//
//	@Summary		Preview how a video URL will be embedded
//	@Tags			video
//	@Accept			json
//	@Produce		json
//	@Param			body	body		VideoResolveRequest	true	"URL to classify"
//	@Success		200		{object}	video.Reference
//	@Router			/video/resolve [post]
func (h *Handler) ResolveVideo(w http.ResponseWriter, r *http.Request) {
	var req VideoResolveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, video.Resolve(req.URL))
}

// GetTheme handles GET /preferences/theme.
func (h *Handler) GetTheme(w http.ResponseWriter, _ *http.Request) {
	t, err := h.themes.Get()
	if err != nil {
		writeError(w, err, "get theme")
		return
	}
	writeJSON(w, http.StatusOK, ThemeBody{Theme: string(t)})
}

// SetTheme handles PUT /preferences/theme.
func (h *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeBody
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.themes.Set(prefs.Theme(req.Theme)); err != nil {
		writeError(w, err, "set theme")
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// Contact handles POST /contact. Messages are logged for follow-up.
//
//	@Summary		Send a message to the team
//	@Tags			contact
//	@Accept			json
//	@Param			body	body	ContactRequest	true	"Message"
//	@Success		202		"Accepted"
//	@Failure		400		{object}	errResponse
//	@Router			/contact [post]
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, validationBody(err))
		return
	}
	slog.Info("contact message received",
		slog.String("from", req.displayAddress()),
		slog.String("phone", req.Phone),
		slog.Int("length", len(req.Message)))
	w.WriteHeader(http.StatusAccepted)
}

// Subscribe handles POST /subscribe from the blog newsletter form.
// Addresses are logged; there is no mailing list behind it yet.
//
//	@Summary		Subscribe to the newsletter
//	@Tags			contact
//	@Accept			json
//	@Param			body	body	SubscribeRequest	true	"Subscriber"
//	@Success		202		"Accepted"
//	@Failure		400		{object}	errResponse
//	@Router			/subscribe [post]
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, validationBody(err))
		return
	}
	slog.Info("newsletter subscription", slog.String("email", req.Email))
	w.WriteHeader(http.StatusAccepted)
}
