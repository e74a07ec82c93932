package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/starford/aininjas/internal/apperr"
	"github.com/starford/aininjas/internal/markup"
	"github.com/starford/aininjas/internal/models"
)

// DefaultAuthor is used when a draft names no author.
const DefaultAuthor = "AI Ninjas Team"

// ErrUnreadable is returned by mutations when the persisted collection
// cannot be decoded. Reads degrade to an empty collection instead.
var ErrUnreadable = errors.New("content: authored collection unreadable")

// ChangeKind describes a content mutation.
type ChangeKind string

const (
	ChangeCreated     ChangeKind = "created"
	ChangeUpdated     ChangeKind = "updated"
	ChangeDeleted     ChangeKind = "deleted"
	ChangePublished   ChangeKind = "published"
	ChangeUnpublished ChangeKind = "unpublished"
	// ChangeExternal reports a change made outside this store, e.g. by
	// another process writing the same slot.
	ChangeExternal ChangeKind = "external"
)

// Change is delivered to listeners after every successful mutation.
type Change struct {
	Kind ChangeKind
	ID   string
}

// Listener receives change notifications. It is called synchronously on
// the mutating goroutine and must not block.
type Listener func(Change)

// Stats summarises the authored collection.
type Stats struct {
	Total     int `json:"totalPosts"`
	Published int `json:"publishedPosts"`
	Drafts    int `json:"draftPosts"`
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for degraded reads.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithSeed replaces the embedded built-in article set.
func WithSeed(seed []models.Article) Option {
	return func(s *Store) { s.seed = seed }
}

// Store merges the built-in articles with authored ones and exposes the
// authoring operations. Mutations are serialised and rewrite the whole
// collection.
type Store struct {
	repo   Repository
	seed   []models.Article
	now    func() time.Time
	logger *slog.Logger

	mu     sync.Mutex // guards read-modify-write cycles and lastID
	lastID int64

	lmu          sync.Mutex
	listeners    map[int]Listener
	nextListener int
}

// NewStore creates a store over repo. Unless WithSeed is given the
// embedded built-in set is used.
func NewStore(repo Repository, opts ...Option) (*Store, error) {
	s := &Store{
		repo:      repo,
		now:       time.Now,
		logger:    slog.Default(),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.seed == nil {
		seed, err := LoadSeed()
		if err != nil {
			return nil, err
		}
		s.seed = seed
	}
	return s, nil
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.lmu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = l
	s.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lmu.Lock()
			delete(s.listeners, id)
			s.lmu.Unlock()
		})
	}
}

// NotifyExternal tells listeners that the collection changed out of band.
func (s *Store) NotifyExternal() {
	s.notify(Change{Kind: ChangeExternal})
}

func (s *Store) notify(c Change) {
	s.lmu.Lock()
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.lmu.Unlock()

	for _, l := range ls {
		l(c)
	}
}

// authored reads the collection, degrading to empty on failure.
func (s *Store) authored() []models.AuthoredArticle {
	articles, err := s.repo.Read()
	if err != nil {
		s.logger.Warn("content: authored collection unreadable, serving built-in articles only",
			slog.String("error", err.Error()))
		return []models.AuthoredArticle{}
	}
	return articles
}

// ListPublished returns the built-in articles plus published authored ones,
// newest date first. Articles with unparseable dates sort last; ties keep
// their merge order.
func (s *Store) ListPublished(_ context.Context) []models.Article {
	authored := s.authored()

	out := make([]models.Article, 0, len(authored)+len(s.seed))
	for _, a := range authored {
		if a.IsPublished {
			out = append(out, a.Project())
		}
	}
	out = append(out, s.seed...)

	slices.SortStableFunc(out, func(a, b models.Article) int {
		ta, okA := parseDate(a.Date)
		tb, okB := parseDate(b.Date)
		switch {
		case okA && okB:
			return tb.Compare(ta)
		case okA:
			return -1
		case okB:
			return 1
		}
		return 0
	})
	return out
}

// FindBySlug returns the first published article with the given slug.
func (s *Store) FindBySlug(ctx context.Context, slug string) (models.Article, error) {
	for _, a := range s.ListPublished(ctx) {
		if a.Slug == slug {
			return a, nil
		}
	}
	return models.Article{}, apperr.ErrNotFound
}

// ListAuthored returns every authored article in storage order.
func (s *Store) ListAuthored(_ context.Context) []models.AuthoredArticle {
	return s.authored()
}

// GetAuthored returns the authored article with the given id.
func (s *Store) GetAuthored(_ context.Context, id string) (models.AuthoredArticle, error) {
	for _, a := range s.authored() {
		if a.ID == id {
			return a, nil
		}
	}
	return models.AuthoredArticle{}, apperr.ErrNotFound
}

// Stats counts authored articles by publish state.
func (s *Store) Stats(_ context.Context) Stats {
	var st Stats
	for _, a := range s.authored() {
		st.Total++
		if a.IsPublished {
			st.Published++
		} else {
			st.Drafts++
		}
	}
	return st
}

// Create stores a new authored article at the head of the collection.
func (s *Store) Create(_ context.Context, d models.Draft) (models.AuthoredArticle, error) {
	d = s.normalize(d)
	if err := d.Validate(); err != nil {
		return models.AuthoredArticle{}, fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}

	s.mu.Lock()
	articles, err := s.load()
	if err != nil {
		s.mu.Unlock()
		return models.AuthoredArticle{}, err
	}
	if err := s.checkSlug(articles, d.Slug, ""); err != nil {
		s.mu.Unlock()
		return models.AuthoredArticle{}, err
	}

	ts := formatTimestamp(s.now())
	created := models.AuthoredArticle{
		Article:     d.Article,
		ID:          s.nextID(articles),
		Tags:        d.Tags,
		IsPublished: d.IsPublished,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	articles = append([]models.AuthoredArticle{created}, articles...)
	err = s.repo.Write(articles)
	s.mu.Unlock()
	if err != nil {
		return models.AuthoredArticle{}, fmt.Errorf("content: create: %w", err)
	}

	s.notify(Change{Kind: ChangeCreated, ID: created.ID})
	return created, nil
}

// Update replaces the article with the given id, keeping its id and
// createdAt and refreshing updatedAt.
func (s *Store) Update(_ context.Context, id string, d models.Draft) (models.AuthoredArticle, error) {
	d = s.normalize(d)
	if err := d.Validate(); err != nil {
		return models.AuthoredArticle{}, fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}

	s.mu.Lock()
	articles, err := s.load()
	if err != nil {
		s.mu.Unlock()
		return models.AuthoredArticle{}, err
	}
	idx := indexOf(articles, id)
	if idx < 0 {
		s.mu.Unlock()
		return models.AuthoredArticle{}, apperr.ErrNotFound
	}
	if err := s.checkSlug(articles, d.Slug, id); err != nil {
		s.mu.Unlock()
		return models.AuthoredArticle{}, err
	}

	prev := articles[idx]
	updated := models.AuthoredArticle{
		Article:     d.Article,
		ID:          prev.ID,
		Tags:        d.Tags,
		IsPublished: d.IsPublished,
		CreatedAt:   prev.CreatedAt,
		UpdatedAt:   s.touch(prev.UpdatedAt),
	}
	articles[idx] = updated
	err = s.repo.Write(articles)
	s.mu.Unlock()
	if err != nil {
		return models.AuthoredArticle{}, fmt.Errorf("content: update: %w", err)
	}

	s.notify(Change{Kind: ChangeUpdated, ID: id})
	return updated, nil
}

// Delete removes the article with the given id. A missing id is a no-op.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	articles, err := s.load()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	idx := indexOf(articles, id)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	articles = slices.Delete(articles, idx, idx+1)
	err = s.repo.Write(articles)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("content: delete: %w", err)
	}

	s.notify(Change{Kind: ChangeDeleted, ID: id})
	return nil
}

// TogglePublish flips the publish state of the article with the given id.
// A missing id is a no-op: ok is false and nothing is written or notified.
func (s *Store) TogglePublish(_ context.Context, id string) (toggled models.AuthoredArticle, ok bool, err error) {
	s.mu.Lock()
	articles, err := s.load()
	if err != nil {
		s.mu.Unlock()
		return models.AuthoredArticle{}, false, err
	}
	idx := indexOf(articles, id)
	if idx < 0 {
		s.mu.Unlock()
		return models.AuthoredArticle{}, false, nil
	}
	a := &articles[idx]
	a.IsPublished = !a.IsPublished
	a.UpdatedAt = s.touch(a.UpdatedAt)
	toggled = *a
	err = s.repo.Write(articles)
	s.mu.Unlock()
	if err != nil {
		return models.AuthoredArticle{}, false, fmt.Errorf("content: toggle publish: %w", err)
	}

	kind := ChangeUnpublished
	if toggled.IsPublished {
		kind = ChangePublished
	}
	s.notify(Change{Kind: kind, ID: id})
	return toggled, true, nil
}

// load reads the collection for a mutation. Unlike reads, mutations refuse
// to run on unreadable data so the stored bytes are not overwritten.
func (s *Store) load() ([]models.AuthoredArticle, error) {
	articles, err := s.repo.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	return articles, nil
}

// checkSlug rejects slugs already used by a built-in article or by another
// authored article.
func (s *Store) checkSlug(articles []models.AuthoredArticle, slug, selfID string) error {
	for _, a := range s.seed {
		if a.Slug == slug {
			return fmt.Errorf("%w: slug %q is used by a built-in article", apperr.ErrConflict, slug)
		}
	}
	for _, a := range articles {
		if a.Slug == slug && a.ID != selfID {
			return fmt.Errorf("%w: slug %q is used by article %s", apperr.ErrConflict, slug, a.ID)
		}
	}
	return nil
}

// nextID returns a millisecond timestamp id strictly greater than every
// id issued by this store and every numeric id in articles.
func (s *Store) nextID(articles []models.AuthoredArticle) string {
	floor := s.lastID
	for _, a := range articles {
		if n, err := strconv.ParseInt(a.ID, 10, 64); err == nil && n > floor {
			floor = n
		}
	}
	id := s.now().UnixMilli()
	if id <= floor {
		id = floor + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

// touch returns a fresh updatedAt that never sorts before prev.
func (s *Store) touch(prev string) string {
	ts := formatTimestamp(s.now())
	if ts < prev {
		return prev
	}
	return ts
}

// normalize fills derived and defaulted draft fields.
func (s *Store) normalize(d models.Draft) models.Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Slug = strings.TrimSpace(d.Slug)
	if d.Slug == "" {
		d.Slug = DeriveSlug(d.Title)
	}
	d.Video = strings.TrimSpace(d.Video)
	if d.Author == "" {
		d.Author = DefaultAuthor
	}
	if d.Date == "" {
		d.Date = s.now().Format("2006-01-02")
	}
	if d.ReadTime == "" {
		d.ReadTime = markup.ReadTime(d.Content)
	}
	d.Tags = normalizeTags(d.Tags)
	return d
}

// normalizeTags trims tags and drops blanks and duplicates, keeping order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func indexOf(articles []models.AuthoredArticle, id string) int {
	return slices.IndexFunc(articles, func(a models.AuthoredArticle) bool { return a.ID == id })
}

// Categories returns the filter choices offered to readers: the "All"
// pseudo-category followed by the fixed enumeration.
func (s *Store) Categories() []string {
	return append([]string{models.CategoryAll}, models.Categories...)
}
