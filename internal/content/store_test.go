package content

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/starford/aininjas/internal/apperr"
	"github.com/starford/aininjas/internal/models"
	"github.com/starford/aininjas/internal/storage"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func testStore(t *testing.T) (*Store, *storage.Memory, *fakeClock) {
	t.Helper()
	slots := storage.NewMemory()
	clock := &fakeClock{t: time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC)}
	s, err := NewStore(NewSlotRepository(slots), WithClock(clock.now))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s, slots, clock
}

func draft(title string, published bool) models.Draft {
	return models.Draft{
		Article: models.Article{
			Title:    title,
			Summary:  "About " + title,
			Category: "Deep Learning",
			Author:   "Sensei",
			Date:     "February 1, 2025",
			Image:    "/img/cover.png",
			Content:  "# " + title + "\nBody.",
			ReadTime: "3 min read",
		},
		Tags:        []string{"ai"},
		IsPublished: published,
	}
}

func TestSeedLoaded(t *testing.T) {
	s, _, _ := testStore(t)
	got := s.ListPublished(context.Background())
	if len(got) != 5 {
		t.Fatalf("built-in articles = %d, want 5", len(got))
	}
	if got[0].Slug != "future-of-ai-education-traditional-methods-failing" {
		t.Errorf("newest built-in = %q", got[0].Slug)
	}
	for _, a := range got {
		if a.Content == "" || a.Category == "" {
			t.Errorf("seed article %q incomplete", a.Slug)
		}
	}
}

func TestListPublished_SortedNewestFirst(t *testing.T) {
	s, _, _ := testStore(t)
	ctx := context.Background()
	if _, err := s.Create(ctx, draft("Fresh Post", true)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got := s.ListPublished(ctx)
	if got[0].Slug != "fresh-post" {
		t.Errorf("first = %q, want fresh-post", got[0].Slug)
	}
	for i := 1; i < len(got); i++ {
		prev, _ := parseDate(got[i-1].Date)
		cur, _ := parseDate(got[i].Date)
		if cur.After(prev) {
			t.Errorf("out of order at %d: %s after %s", i, got[i].Date, got[i-1].Date)
		}
	}
}

func TestListPublished_UnparseableDateSortsLast(t *testing.T) {
	s, _, _ := testStore(t)
	ctx := context.Background()
	d := draft("Someday", true)
	d.Date = "someday soon"
	if _, err := s.Create(ctx, d); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got := s.ListPublished(ctx)
	if got[len(got)-1].Slug != "someday" {
		t.Errorf("last = %q, want someday", got[len(got)-1].Slug)
	}
}

func TestListPublished_Idempotent(t *testing.T) {
	s, _, _ := testStore(t)
	ctx := context.Background()
	_, _ = s.Create(ctx, draft("One", true))
	_, _ = s.Create(ctx, draft("Two", false))

	a := s.ListPublished(ctx)
	b := s.ListPublished(ctx)
	if !reflect.DeepEqual(a, b) {
		t.Error("two reads without mutation differ")
	}
}

func TestPublishGating(t *testing.T) {
	s, _, _ := testStore(t)
	ctx := context.Background()
	hidden, err := s.Create(ctx, draft("Hidden Draft", false))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for _, a := range s.ListPublished(ctx) {
		if a.Slug == hidden.Slug {
			t.Fatal("unpublished article is listed")
		}
	}
	if _, err := s.FindBySlug(ctx, hidden.Slug); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("FindBySlug unpublished: err = %v, want ErrNotFound", err)
	}
	if len(s.ListAuthored(ctx)) != 1 {
		t.Error("unpublished article should stay visible to the authoring surface")
	}
}

func TestCreateThenFindBySlug_RoundTrip(t *testing.T) {
	s, _, _ := testStore(t)
	ctx := context.Background()
	d := draft("Round Trip", true)
	d.Slug = "round-trip"
	d.Video = "https://vimeo.com/76979871"

	if _, err := s.Create(ctx, d); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := s.FindBySlug(ctx, "round-trip")
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if got != d.Article {
		t.Errorf("visible fields differ:\n got %+v\nwant %+v", got, d.Article)
	}
}

func TestCreate_AssignsIdentityAndPrepends(t *testing.T) {
	s, slots, clock := testStore(t)
	ctx := context.Background()

	first, err := s.Create(ctx, draft("First", false))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.ID != strconv.FormatInt(clock.t.UnixMilli(), 10) {
		t.Errorf("id = %q, want time based", first.ID)
	}
	if first.CreatedAt != "2025-02-01T09:30:00.000Z" || first.UpdatedAt != first.CreatedAt {
		t.Errorf("timestamps = %q / %q", first.CreatedAt, first.UpdatedAt)
	}

	// Same millisecond: id must still be unique and increasing.
	second, err := s.Create(ctx, draft("Second", false))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	a, _ := strconv.ParseInt(first.ID, 10, 64)
	b, _ := strconv.ParseInt(second.ID, 10, 64)
	if b <= a {
		t.Errorf("ids not increasing: %s then %s", first.ID, second.ID)
	}

	list := s.ListAuthored(ctx)
	if len(list) != 2 || list[0].ID != second.ID {
		t.Errorf("newest should be first: %+v", list)
	}
	if _, err := slots.Get(storage.KeyArticles); err != nil {
		t.Errorf("collection not persisted: %v", err)
	}
}

func TestCreate_DerivesSlugAndDefaults(t *testing.T) {
	s, _, _ := testStore(t)
	d := models.Draft{Article: models.Article{
		Title:    "Hello, World! AI 101",
		Category: "Tutorials",
		Content:  "short body",
	}, Tags: []string{" go ", "", "go", "ml"}}

	a, err := s.Create(context.Background(), d)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.Slug != "hello-world-ai-101" {
		t.Errorf("slug = %q", a.Slug)
	}
	if a.Author != DefaultAuthor || a.Date != "2025-02-01" || a.ReadTime != "1 min read" {
		t.Errorf("defaults = %q / %q / %q", a.Author, a.Date, a.ReadTime)
	}
	if !reflect.DeepEqual(a.Tags, []string{"go", "ml"}) {
		t.Errorf("tags = %v", a.Tags)
	}
}

func TestCreate_Validation(t *testing.T) {
	s, _, _ := testStore(t)
	ctx := context.Background()

	cases := map[string]func(*models.Draft){
		"missing title":   func(d *models.Draft) { d.Title = "" },
		"bad category":    func(d *models.Draft) { d.Category = "Cooking" },
		"missing content": func(d *models.Draft) { d.Content = "" },
		"bad video":       func(d *models.Draft) { d.Video = "not a url" },
		"bad slug":        func(d *models.Draft) { d.Slug = "Not A Slug" },
		"symbol title":    func(d *models.Draft) { d.Title = "!!!" },
	}
	for name, mutate := range cases {
		d := draft("Valid Title", true)
		mutate(&d)
		if _, err := s.Create(ctx, d); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("%s: err = %v, want ErrValidation", name, err)
		}
	}
	if n := len(s.ListAuthored(ctx)); n != 0 {
		t.Errorf("invalid drafts were stored: %d", n)
	}
}

func TestCreate_SlugCollision(t *testing.T) {
	s, _, _ := testStore(t)
	ctx := context.Background()

	builtin := draft("x", true)
	builtin.Slug = "ethics-ai-building-responsible-systems"
	if _, err := s.Create(ctx, builtin); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("built-in collision: err = %v, want ErrConflict", err)
	}

	if _, err := s.Create(ctx, draft("Same Title", false)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Create(ctx, draft("Same Title", true)); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("authored collision: err = %v, want ErrConflict", err)
	}
}

func TestUpdate_PreservesIdentity(t *testing.T) {
	s, _, clock := testStore(t)
	ctx := context.Background()
	orig, _ := s.Create(ctx, draft("Original", false))

	clock.advance(time.Minute)
	changed := draft("Renamed", true)
	changed.Slug = "renamed"
	changed.Summary = "new summary"
	changed.Tags = []string{"updated"}

	got, err := s.Update(ctx, orig.ID, changed)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.ID != orig.ID || got.CreatedAt != orig.CreatedAt {
		t.Errorf("identity changed: %+v", got)
	}
	if got.UpdatedAt <= orig.UpdatedAt {
		t.Errorf("updatedAt %q not after %q", got.UpdatedAt, orig.UpdatedAt)
	}
	if got.Article != changed.Article || !got.IsPublished || !reflect.DeepEqual(got.Tags, []string{"updated"}) {
		t.Errorf("fields not replaced: %+v", got)
	}

	// Keeping its own slug is not a collision.
	if _, err := s.Update(ctx, orig.ID, changed); err != nil {
		t.Errorf("update with own slug: %v", err)
	}
}

func TestUpdate_ClockSkewNeverMovesUpdatedAtBack(t *testing.T) {
	s, _, clock := testStore(t)
	ctx := context.Background()
	orig, _ := s.Create(ctx, draft("Skew", false))

	clock.advance(-time.Hour)
	got, err := s.Update(ctx, orig.ID, draft("Skew", false))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.UpdatedAt < orig.UpdatedAt {
		t.Errorf("updatedAt went backwards: %q < %q", got.UpdatedAt, orig.UpdatedAt)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	s, _, _ := testStore(t)
	if _, err := s.Update(context.Background(), "404", draft("Ghost", true)); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete_Removes(t *testing.T) {
	s, _, _ := testStore(t)
	ctx := context.Background()
	a, _ := s.Create(ctx, draft("Doomed", true))

	if err := s.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	for _, x := range s.ListAuthored(ctx) {
		if x.ID == a.ID {
			t.Fatal("deleted article still listed")
		}
	}
	if err := s.Delete(ctx, a.ID); err != nil {
		t.Errorf("deleting a missing id should be a no-op, got %v", err)
	}
}

func TestTogglePublish(t *testing.T) {
	s, _, clock := testStore(t)
	ctx := context.Background()
	a, _ := s.Create(ctx, draft("Toggle Me", false))

	clock.advance(time.Second)
	got, ok, err := s.TogglePublish(ctx, a.ID)
	if err != nil || !ok {
		t.Fatalf("TogglePublish: ok=%v err=%v", ok, err)
	}
	if !got.IsPublished || got.UpdatedAt == a.UpdatedAt {
		t.Errorf("toggle result = %+v", got)
	}
	if _, err := s.FindBySlug(ctx, "toggle-me"); err != nil {
		t.Errorf("published article not found: %v", err)
	}

	notified := 0
	s.Subscribe(func(Change) { notified++ })
	before := s.ListAuthored(ctx)
	if _, ok, err := s.TogglePublish(ctx, "missing"); ok || err != nil {
		t.Errorf("missing id: ok=%v err=%v, want a no-op", ok, err)
	}
	if notified != 0 || !reflect.DeepEqual(s.ListAuthored(ctx), before) {
		t.Error("toggling a missing id changed state or notified")
	}
}

func TestStats(t *testing.T) {
	s, _, _ := testStore(t)
	ctx := context.Background()
	_, _ = s.Create(ctx, draft("A", true))
	_, _ = s.Create(ctx, draft("B", false))
	_, _ = s.Create(ctx, draft("C", false))

	st := s.Stats(ctx)
	if st != (Stats{Total: 3, Published: 1, Drafts: 2}) {
		t.Errorf("stats = %+v", st)
	}
}

func TestSubscribe_NotifiedAfterEachMutation(t *testing.T) {
	s, _, _ := testStore(t)
	ctx := context.Background()

	var got []ChangeKind
	unsubscribe := s.Subscribe(func(c Change) {
		got = append(got, c.Kind)
		// Listeners observe the persisted state.
		_ = s.ListAuthored(ctx)
	})

	a, _ := s.Create(ctx, draft("Watched", false))
	_, _ = s.Update(ctx, a.ID, draft("Watched", false))
	_, _, _ = s.TogglePublish(ctx, a.ID)
	_ = s.Delete(ctx, a.ID)
	s.NotifyExternal()

	want := []ChangeKind{ChangeCreated, ChangeUpdated, ChangePublished, ChangeDeleted, ChangeExternal}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("changes = %v, want %v", got, want)
	}

	unsubscribe()
	unsubscribe()
	_, _ = s.Create(ctx, draft("Unwatched", false))
	if len(got) != len(want) {
		t.Error("listener called after unsubscribe")
	}
}

func TestSubscribe_NoNotificationOnFailure(t *testing.T) {
	s, _, _ := testStore(t)
	calls := 0
	s.Subscribe(func(Change) { calls++ })

	_, _ = s.Create(context.Background(), models.Draft{})
	_ = s.Delete(context.Background(), "missing")
	if calls != 0 {
		t.Errorf("listener called %d times for failed or no-op mutations", calls)
	}
}

func TestCorruptCollection_DegradesSilently(t *testing.T) {
	s, slots, _ := testStore(t)
	ctx := context.Background()
	_ = slots.Set(storage.KeyArticles, []byte("{not json"))

	if got := s.ListAuthored(ctx); len(got) != 0 {
		t.Errorf("authored = %d, want 0", len(got))
	}
	if got := s.ListPublished(ctx); len(got) != 5 {
		t.Errorf("published = %d, want the 5 built-in articles", len(got))
	}

	// Mutations refuse to overwrite the unreadable bytes.
	if _, err := s.Create(ctx, draft("Lost", true)); !errors.Is(err, ErrUnreadable) {
		t.Errorf("create on corrupt data: err = %v, want ErrUnreadable", err)
	}
	raw, _ := slots.Get(storage.KeyArticles)
	if string(raw) != "{not json" {
		t.Errorf("corrupt bytes were overwritten: %q", raw)
	}
}

type failingRepo struct{}

func (failingRepo) Read() ([]models.AuthoredArticle, error) { return []models.AuthoredArticle{}, nil }

func (failingRepo) Write([]models.AuthoredArticle) error { return errors.New("disk full") }

func TestCreate_WriteFailureSurfaces(t *testing.T) {
	s, err := NewStore(failingRepo{})
	if err != nil {
		t.Fatal(err)
	}
	notified := false
	s.Subscribe(func(Change) { notified = true })

	if _, err := s.Create(context.Background(), draft("Unsaved", true)); err == nil {
		t.Fatal("expected write error")
	}
	if notified {
		t.Error("listeners must not hear about a failed write")
	}
}

func TestSearch(t *testing.T) {
	articles := []models.Article{
		{Title: "Neural Nets 101", Summary: "basics", Category: "AI Fundamentals"},
		{Title: "Fairness", Summary: "Bias in NEURAL systems", Category: "Ethics"},
		{Title: "Ethics of data", Summary: "privacy", Category: "Ethics"},
	}

	got := Search(articles, "neural", "Ethics")
	if len(got) != 1 || got[0].Title != "Fairness" {
		t.Errorf("term+category = %+v", got)
	}

	got = Search(articles, "neural", models.CategoryAll)
	if len(got) != 2 {
		t.Errorf("term only = %d, want 2", len(got))
	}

	got = Search(articles, "", "Ethics")
	if len(got) != 2 {
		t.Errorf("category only = %d, want 2", len(got))
	}

	if got := Search(articles, "", ""); len(got) != 3 {
		t.Errorf("no filters = %d, want 3", len(got))
	}
}

func titles(articles []models.AuthoredArticle) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.Title)
	}
	return out
}

func TestFilterAuthored(t *testing.T) {
	articles := []models.AuthoredArticle{
		{Article: models.Article{Title: "beta notes", Author: "Sensei"}, IsPublished: true, UpdatedAt: "2025-02-01T09:30:00.000Z"},
		{Article: models.Article{Title: "Alpha", Author: "Ada Ninja"}, UpdatedAt: "2025-02-03T08:00:00.000Z"},
		{Article: models.Article{Title: "Gamma", Author: "Sensei"}, IsPublished: true, UpdatedAt: "2025-02-02T12:00:00.000Z"},
		{Article: models.Article{Title: "Broken", Author: "Sensei"}, UpdatedAt: "yesterday"},
	}

	if got := titles(FilterAuthored(articles, AuthoredFilter{})); !reflect.DeepEqual(got, []string{"Alpha", "Gamma", "beta notes", "Broken"}) {
		t.Errorf("default order = %v", got)
	}
	if got := titles(FilterAuthored(articles, AuthoredFilter{Sort: SortTitle})); !reflect.DeepEqual(got, []string{"Alpha", "beta notes", "Broken", "Gamma"}) {
		t.Errorf("title order = %v", got)
	}
	if got := titles(FilterAuthored(articles, AuthoredFilter{Status: StatusPublished})); !reflect.DeepEqual(got, []string{"Gamma", "beta notes"}) {
		t.Errorf("published = %v", got)
	}
	if got := titles(FilterAuthored(articles, AuthoredFilter{Status: StatusDraft})); !reflect.DeepEqual(got, []string{"Alpha", "Broken"}) {
		t.Errorf("drafts = %v", got)
	}

	// Search covers the author as well as the title.
	if got := titles(FilterAuthored(articles, AuthoredFilter{Search: "ninja"})); !reflect.DeepEqual(got, []string{"Alpha"}) {
		t.Errorf("author search = %v", got)
	}
	if got := titles(FilterAuthored(articles, AuthoredFilter{Search: "NOTES", Status: StatusDraft})); len(got) != 0 {
		t.Errorf("search+status = %v", got)
	}

	if articles[0].Title != "beta notes" {
		t.Error("input was reordered")
	}
}
