// Package catalog exposes the fixed belt-level course curriculum.
package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/starford/aininjas/internal/apperr"
)

//go:embed courses.yaml
var coursesYAML []byte

// Section is one curriculum block within a course.
type Section struct {
	Title  string   `json:"title" yaml:"title"`
	Topics []string `json:"topics" yaml:"topics"`
}

// Course is a belt level.
type Course struct {
	Slug     string    `json:"slug" yaml:"slug"`
	Level    int       `json:"level" yaml:"level"`
	Belt     string    `json:"belt" yaml:"belt"`
	Name     string    `json:"name" yaml:"name"`
	Theme    string    `json:"theme" yaml:"theme"`
	Outcome  string    `json:"outcome" yaml:"outcome"`
	Sections []Section `json:"sections" yaml:"sections"`
}

var (
	loadOnce sync.Once
	courses  []Course
	loadErr  error
)

func load() ([]Course, error) {
	loadOnce.Do(func() {
		courses, loadErr = decode(coursesYAML)
	})
	return courses, loadErr
}

func decode(data []byte) ([]Course, error) {
	var doc struct {
		Courses []Course `yaml:"courses"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	return doc.Courses, nil
}

// List returns every course ordered by level.
func List() ([]Course, error) {
	cs, err := load()
	if err != nil {
		return nil, err
	}
	out := make([]Course, len(cs))
	copy(out, cs)
	return out, nil
}

// Get returns the course with the given slug.
func Get(slug string) (Course, error) {
	cs, err := load()
	if err != nil {
		return Course{}, err
	}
	for _, c := range cs {
		if c.Slug == slug {
			return c, nil
		}
	}
	return Course{}, fmt.Errorf("%w: course %q", apperr.ErrNotFound, slug)
}
