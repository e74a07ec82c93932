package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"

	"github.com/starford/aininjas/internal/auth"
	"github.com/starford/aininjas/internal/content"
	"github.com/starford/aininjas/internal/models"
)

// AdminHandler holds the authoring route handlers.
type AdminHandler struct {
	store    *content.Store
	sessions *auth.Sessions
	query    *schema.Decoder
}

func NewAdminHandler(store *content.Store, sessions *auth.Sessions) *AdminHandler {
	return &AdminHandler{store: store, sessions: sessions, query: newQueryDecoder()}
}

// ListArticles handles GET /admin/articles.
//
//	@Summary		List authored articles, drafts included
//	@Tags			admin
//	@Produce		json
//	@Param			search	query		string	false	"Case-insensitive match on title or author"
//	@Param			status	query		string	false	"all, published or draft"
//	@Param			sort	query		string	false	"date (last edited first) or title"
//	@Success		200		{object}	AuthoredListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/admin/articles [get]
func (h *AdminHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	var q AuthoredQuery
	if err := h.query.Decode(&q, r.URL.Query()); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid query"))
		return
	}
	if err := q.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, validationBody(err))
		return
	}
	articles := content.FilterAuthored(h.store.ListAuthored(r.Context()), content.AuthoredFilter{
		Search: strings.TrimSpace(q.Search),
		Status: q.Status,
		Sort:   q.Sort,
	})
	writeJSON(w, http.StatusOK, AuthoredListResponse{Articles: articles, Total: len(articles)})
}

// GetArticle handles GET /admin/articles/{id}.
func (h *AdminHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := h.store.GetAuthored(r.Context(), id)
	if err != nil {
		writeError(w, err, "get authored article", slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// CreateArticle handles POST /admin/articles.
//
//	@Summary		Create an authored article
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.Draft	true	"Article draft"
//	@Success		201		{object}	models.AuthoredArticle
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/admin/articles [post]
func (h *AdminHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var d models.Draft
	if !decodeJSON(w, r, &d) {
		return
	}
	a, err := h.store.Create(r.Context(), d)
	if err != nil {
		writeError(w, err, "create article", slog.String("title", d.Title))
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// UpdateArticle handles PUT /admin/articles/{id}. The body replaces every
// author-supplied field.
//
//	@Summary		Replace an authored article
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Article id"
//	@Param			body	body		models.Draft	true	"Article draft"
//	@Success		200		{object}	models.AuthoredArticle
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/admin/articles/{id} [put]
func (h *AdminHandler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var d models.Draft
	if !decodeJSON(w, r, &d) {
		return
	}
	a, err := h.store.Update(r.Context(), id, d)
	if err != nil {
		writeError(w, err, "update article", slog.String("id", id))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// DeleteArticle handles DELETE /admin/articles/{id}. Deleting an unknown id
// succeeds.
func (h *AdminHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		writeError(w, err, "delete article", slog.String("id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TogglePublish handles POST /admin/articles/{id}/publish. An unknown id
// changes nothing and answers 204.
func (h *AdminHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, ok, err := h.store.TogglePublish(r.Context(), id)
	if err != nil {
		writeError(w, err, "toggle publish", slog.String("id", id))
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Stats handles GET /admin/stats.
//
//	@Summary		Dashboard counters
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	content.Stats
//	@Security		BearerAuth
//	@Router			/admin/stats [get]
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Stats(r.Context()))
}

// Login handles POST /admin/session.
//
//	@Summary		Exchange credentials for a session token
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	LoginResponse
//	@Failure		401		{object}	errResponse
//	@Router			/admin/session [post]
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	token, err := h.sessions.Login(r.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		slog.Warn("admin login rejected", slog.String("username", req.Username))
		writeError(w, err, "login")
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token})
}

// Logout handles DELETE /admin/session.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		writeError(w, err, "logout")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
