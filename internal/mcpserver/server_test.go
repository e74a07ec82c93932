package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/aininjas/internal/content"
	"github.com/starford/aininjas/internal/testutil"
)

func testServer(t *testing.T) (*Server, *content.Store) {
	t.Helper()
	store, _, _ := testutil.TestStore(t)
	return New(store, "test"), store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so dispatch to the
	// handler functions.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_articles":
		result, err = srv.searchArticles(ctx, req)
	case "read_article":
		result, err = srv.readArticle(ctx, req)
	case "list_courses":
		result, err = srv.listCourses(ctx, req)
	case "resolve_video":
		result, err = srv.resolveVideo(ctx, req)
	case "get_markup_contract":
		result, err = srv.getMarkupContract(ctx, req)
	case "create_draft":
		result, err = srv.createDraft(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestSearchArticles(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "search_articles", map[string]any{"query": "neural", "category": "Ethics"})
	var got []articleSummary
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, a := range got {
		if a.Category != "Ethics" {
			t.Errorf("category filter leaked %+v", a)
		}
	}

	r = callTool(t, srv, "search_articles", map[string]any{})
	_ = json.Unmarshal([]byte(resultText(r)), &got)
	if len(got) != 5 {
		t.Errorf("unfiltered = %d, want 5", len(got))
	}
}

func TestReadArticle(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_article", map[string]any{"slug": "mathematics-behind-machine-learning"})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.Contains(text, `"toc"`) || !strings.Contains(text, "The Mathematics Behind Machine Learning") {
		t.Errorf("read result = %.200s", text)
	}
}

func TestReadArticleMissing(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "read_article", map[string]any{"slug": "nope"})
	if !r.IsError {
		t.Error("expected error for missing article")
	}
}

func TestListCourses(t *testing.T) {
	srv, _ := testServer(t)
	text := resultText(callTool(t, srv, "list_courses", map[string]any{}))
	if !strings.Contains(text, "the-disciple") || !strings.Contains(text, "the-ai-ninja") {
		t.Errorf("courses = %.200s", text)
	}
}

func TestResolveVideo(t *testing.T) {
	srv, _ := testServer(t)
	text := resultText(callTool(t, srv, "resolve_video", map[string]any{"url": "https://youtu.be/dQw4w9WgXcQ"}))
	if !strings.Contains(text, "https://www.youtube.com/embed/dQw4w9WgXcQ") {
		t.Errorf("resolve = %s", text)
	}
}

func TestGetMarkupContract(t *testing.T) {
	srv, _ := testServer(t)
	if text := resultText(callTool(t, srv, "get_markup_contract", nil)); text != MarkupContract {
		t.Error("contract text mismatch")
	}
}

func TestCreateDraft(t *testing.T) {
	srv, store := testServer(t)

	r := callTool(t, srv, "create_draft", map[string]any{
		"title":    "Agents Write Too",
		"category": "Industry News",
		"content":  "# Hello\nBody",
		"tags":     "agents, llm",
	})
	if r.IsError {
		t.Fatalf("create_draft: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "slug=agents-write-too") {
		t.Errorf("result = %q", resultText(r))
	}

	authored := store.ListAuthored(context.Background())
	if len(authored) != 1 || authored[0].IsPublished {
		t.Fatalf("authored = %+v", authored)
	}
	if len(authored[0].Tags) != 2 || authored[0].Tags[1] != "llm" {
		t.Errorf("tags = %v", authored[0].Tags)
	}

	// Drafts stay invisible to readers.
	if r := callTool(t, srv, "read_article", map[string]any{"slug": "agents-write-too"}); !r.IsError {
		t.Error("draft should not be readable")
	}
}

func TestCreateDraft_Invalid(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "create_draft", map[string]any{
		"title":    "Bad",
		"category": "Gardening",
		"content":  "x",
	})
	if !r.IsError {
		t.Error("expected validation error")
	}
}
