// Package models defines the domain types for the AI Ninjas content service.
package models

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/aininjas/internal/video"
)

// CategoryAll is the pseudo-category that disables category filtering.
const CategoryAll = "All"

// PlaceholderImage is shown for authored articles that carry no image.
const PlaceholderImage = "/placeholder.svg?height=400&width=800&text=Blog+Post"

// Categories is the fixed set of article categories, in display order.
var Categories = []string{
	"AI Fundamentals",
	"Machine Learning",
	"Deep Learning",
	"Ethics",
	"Industry News",
	"Tutorials",
}

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Article is a display-ready content unit.
type Article struct {
	Title    string `json:"title" yaml:"title"`
	Slug     string `json:"slug" yaml:"slug"`
	Summary  string `json:"summary" yaml:"summary"`
	Category string `json:"category" yaml:"category"`
	Author   string `json:"author" yaml:"author"`
	Date     string `json:"date" yaml:"date"`
	Image    string `json:"image" yaml:"image"`
	Video    string `json:"video,omitempty" yaml:"video,omitempty"`
	Content  string `json:"content" yaml:"content"`
	ReadTime string `json:"readTime" yaml:"readTime"`
}

// AuthoredArticle is an Article created through the authoring surface.
type AuthoredArticle struct {
	Article
	ID          string   `json:"id"`
	Tags        []string `json:"tags"`
	IsPublished bool     `json:"isPublished"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

// Project drops the lifecycle fields, returning the public Article shape.
func (a AuthoredArticle) Project() Article {
	out := a.Article
	if out.Image == "" {
		out.Image = PlaceholderImage
	}
	return out
}

// Draft holds the author-supplied fields of an article.
type Draft struct {
	Article
	Tags        []string `json:"tags"`
	IsPublished bool     `json:"isPublished"`
}

// Validate checks the draft before it is persisted. The slug must already
// be filled in, either by the author or by derivation from the title.
func (d *Draft) Validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.Title, validation.Required),
		validation.Field(&d.Slug, validation.Required, validation.Match(slugRe).Error("must be lower-case words joined by hyphens")),
		validation.Field(&d.Category, validation.Required, validation.In(anySlice(Categories)...)),
		validation.Field(&d.Content, validation.Required),
		validation.Field(&d.Video, validation.By(validVideo)),
	)
}

func validVideo(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if !video.Valid(s) {
		return validation.NewError("validation_video_url", "must be a YouTube, Vimeo, or direct video file URL")
	}
	return nil
}

func anySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
