// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the AI Ninjas article library to LLM clients via stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/aininjas/internal/apperr"
	"github.com/starford/aininjas/internal/catalog"
	"github.com/starford/aininjas/internal/content"
	"github.com/starford/aininjas/internal/markup"
	"github.com/starford/aininjas/internal/models"
	"github.com/starford/aininjas/internal/video"
)

const markupResourceURI = "aininjas://markup-format"

// Server wraps the MCP server with the article tools.
type Server struct {
	mcp   *server.MCPServer
	store *content.Store
}

// New creates a new MCP server with all tools registered.
func New(store *content.Store, version string) *Server {
	s := &Server{store: store}

	s.mcp = server.NewMCPServer(
		"AI Ninjas",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_articles",
		mcp.WithDescription("Search published articles by title or summary, optionally within one category. "+
			"Returns newest first."),
		mcp.WithString("query", mcp.Description("Case-insensitive text to look for; empty lists everything")),
		mcp.WithString("category", mcp.Description("Category name, or All")),
	), s.searchArticles)

	s.mcp.AddTool(mcp.NewTool("read_article",
		mcp.WithDescription("Read a published article by slug, including its body and table of contents."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Article slug, e.g. ethics-ai-building-responsible-systems")),
	), s.readArticle)

	s.mcp.AddTool(mcp.NewTool("list_courses",
		mcp.WithDescription("List the belt-level courses with their curriculum sections."),
	), s.listCourses)

	s.mcp.AddTool(mcp.NewTool("resolve_video",
		mcp.WithDescription("Classify a video URL and return the embeddable player URL."),
		mcp.WithString("url", mcp.Required(), mcp.Description("YouTube, Vimeo or direct video file URL")),
	), s.resolveVideo)

	s.mcp.AddTool(mcp.NewTool("get_markup_contract",
		mcp.WithDescription("Returns the article body markup format. "+
			"Call this before drafting an article."),
	), s.getMarkupContract)

	s.mcp.AddTool(mcp.NewTool("create_draft",
		mcp.WithDescription("Create an unpublished article draft for an editor to review. "+
			"Content MUST follow the markup contract (get_markup_contract or "+markupResourceURI+")."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Article title")),
		mcp.WithString("category", mcp.Required(), mcp.Description("One of the fixed categories")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Body in the article markup format")),
		mcp.WithString("summary", mcp.Description("One or two sentence teaser")),
		mcp.WithString("slug", mcp.Description("Optional slug; derived from the title when empty")),
		mcp.WithString("video", mcp.Description("Optional video URL")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
	), s.createDraft)

	s.mcp.AddResource(
		mcp.NewResource(markupResourceURI, "Article Markup Format",
			mcp.WithResourceDescription("Line-oriented markup used by article bodies."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readMarkupResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type articleSummary struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Category string `json:"category"`
	Date     string `json:"date"`
	Summary  string `json:"summary"`
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchArticles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString("query", ""))
	category := req.GetString("category", models.CategoryAll)

	found := content.Search(s.store.ListPublished(ctx), query, category)
	out := make([]articleSummary, 0, len(found))
	for _, a := range found {
		out = append(out, articleSummary{Title: a.Title, Slug: a.Slug, Category: a.Category, Date: a.Date, Summary: a.Summary})
	}
	return jsonResult(out)
}

func (s *Server) readArticle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a, err := s.store.FindBySlug(ctx, slug)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug)), nil
	}
	return jsonResult(struct {
		models.Article
		TOC []markup.TOCEntry `json:"toc"`
	}{Article: a, TOC: markup.Parse(a.Content).TOC})
}

func (s *Server) listCourses(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	courses, err := catalog.List()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(courses)
}

func (s *Server) resolveVideo(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(video.Resolve(url))
}

func (s *Server) getMarkupContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(MarkupContract), nil
}

func (s *Server) createDraft(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	d := models.Draft{
		Article: models.Article{
			Title:    title,
			Slug:     req.GetString("slug", ""),
			Summary:  req.GetString("summary", ""),
			Category: category,
			Video:    req.GetString("video", ""),
			Content:  body,
		},
		Tags: strings.Split(req.GetString("tags", ""), ","),
	}

	a, err := s.store.Create(ctx, d)
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) || errors.Is(err, apperr.ErrConflict) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}
	return mcp.NewToolResultText(fmt.Sprintf("draft created: id=%s slug=%s", a.ID, a.Slug)), nil
}

func (s *Server) readMarkupResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      markupResourceURI,
			MIMEType: "text/markdown",
			Text:     MarkupContract,
		},
	}, nil
}
