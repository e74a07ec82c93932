package api

import (
	"net/mail"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/aininjas/internal/content"
	"github.com/starford/aininjas/internal/markup"
	"github.com/starford/aininjas/internal/models"
	"github.com/starford/aininjas/internal/video"
)

// ArticleQuery is decoded from the GET /articles query string.
type ArticleQuery struct {
	Search   string `schema:"search"`
	Category string `schema:"category"`
}

// ArticleListResponse wraps a filtered article listing.
type ArticleListResponse struct {
	Articles []models.Article `json:"articles"`
	Total    int              `json:"total" example:"5"`
}

// ArticleDetail is a published article with its rendered body.
type ArticleDetail struct {
	models.Article
	Blocks []markup.Block    `json:"blocks"`
	TOC    []markup.TOCEntry `json:"toc"`
	// Player is set when the article carries a resolvable video.
	Player *video.Reference `json:"player,omitempty"`
}

// AuthoredQuery is decoded from the GET /admin/articles query string.
type AuthoredQuery struct {
	Search string `schema:"search"`
	Status string `schema:"status"`
	Sort   string `schema:"sort"`
}

func (q AuthoredQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Status, validation.In(content.StatusAll, content.StatusPublished, content.StatusDraft)),
		validation.Field(&q.Sort, validation.In(content.SortDate, content.SortTitle)),
	)
}

// AuthoredListResponse is the authoring dashboard listing.
type AuthoredListResponse struct {
	Articles []models.AuthoredArticle `json:"articles"`
	Total    int                      `json:"total"`
}

// VideoResolveRequest is the body of POST /video/resolve.
type VideoResolveRequest struct {
	URL string `json:"url" example:"https://youtu.be/dQw4w9WgXcQ"`
}

// ThemeBody carries the theme preference in both directions.
type ThemeBody struct {
	Theme string `json:"theme" example:"dark"`
}

// LoginRequest is the body of POST /admin/session.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse returns the bearer token for subsequent authoring calls.
type LoginResponse struct {
	Token string `json:"token"`
}

// ContactRequest is a visitor message from the contact page.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message"`
}

func (c ContactRequest) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&c.Email, validation.Required, is.EmailFormat),
		validation.Field(&c.Phone, validation.Length(0, 40)),
		validation.Field(&c.Message, validation.Required, validation.Length(1, 5000)),
	)
}

// displayAddress formats the sender for logs.
func (c ContactRequest) displayAddress() string {
	return (&mail.Address{Name: c.Name, Address: c.Email}).String()
}

// SubscribeRequest is the blog newsletter signup.
type SubscribeRequest struct {
	Email string `json:"email" example:"ada@example.com"`
}

func (s SubscribeRequest) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Email, validation.Required, validation.Length(1, 254), is.EmailFormat),
	)
}

// MediaUploadResponse is returned after a successful image upload.
type MediaUploadResponse struct {
	Filename string `json:"filename" example:"6f1c0d2e.png"`
	Size     int64  `json:"size" example:"12345"`
	MIME     string `json:"mime" example:"image/png"`
	URL      string `json:"url" example:"/api/media/6f1c0d2e.png"`
}
