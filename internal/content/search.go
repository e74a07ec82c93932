package content

import (
	"sort"
	"strings"
	"time"

	"github.com/starford/aininjas/internal/models"
)

// Search keeps the articles whose title or summary contains term
// (case-insensitive) and whose category equals category. The category
// "All", or an empty category, matches everything.
func Search(articles []models.Article, term, category string) []models.Article {
	term = strings.ToLower(term)
	anyCategory := category == "" || category == models.CategoryAll

	out := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		matchesTerm := strings.Contains(strings.ToLower(a.Title), term) ||
			strings.Contains(strings.ToLower(a.Summary), term)
		if matchesTerm && (anyCategory || a.Category == category) {
			out = append(out, a)
		}
	}
	return out
}

// Publish-state filters for FilterAuthored.
const (
	StatusAll       = "all"
	StatusPublished = "published"
	StatusDraft     = "draft"
)

// Orderings for FilterAuthored.
const (
	SortDate  = "date"
	SortTitle = "title"
)

// AuthoredFilter narrows the authoring dashboard listing. Zero values mean
// every article, newest edit first.
type AuthoredFilter struct {
	Search string
	Status string
	Sort   string
}

// FilterAuthored keeps the articles whose title or author contains
// f.Search (case-insensitive) and whose publish state matches f.Status,
// then orders them by f.Sort: SortDate is updatedAt descending, SortTitle
// is case-insensitive title order. The input is not modified.
func FilterAuthored(articles []models.AuthoredArticle, f AuthoredFilter) []models.AuthoredArticle {
	term := strings.ToLower(f.Search)

	out := make([]models.AuthoredArticle, 0, len(articles))
	for _, a := range articles {
		matchesTerm := strings.Contains(strings.ToLower(a.Title), term) ||
			strings.Contains(strings.ToLower(a.Author), term)
		if !matchesTerm {
			continue
		}
		switch f.Status {
		case StatusPublished:
			if !a.IsPublished {
				continue
			}
		case StatusDraft:
			if a.IsPublished {
				continue
			}
		}
		out = append(out, a)
	}

	if f.Sort == SortTitle {
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
		})
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		return updatedAt(out[i]).After(updatedAt(out[j]))
	})
	return out
}

// updatedAt parses the edit timestamp; unparseable values sort last.
func updatedAt(a models.AuthoredArticle) time.Time {
	t, err := time.Parse(time.RFC3339, a.UpdatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}
