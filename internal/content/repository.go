// Package content implements the content store: the merged, filterable view
// of built-in and authored articles plus the authoring operations.
package content

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/aininjas/internal/apperr"
	"github.com/starford/aininjas/internal/models"
	"github.com/starford/aininjas/internal/storage"
)

// Repository persists the whole authored collection at once.
type Repository interface {
	Read() ([]models.AuthoredArticle, error)
	Write(articles []models.AuthoredArticle) error
}

// SlotRepository stores the authored collection as a JSON array in a
// single slot.
type SlotRepository struct {
	slots storage.Slots
	key   string
}

// NewSlotRepository creates a repository over the admin_blog_posts slot.
func NewSlotRepository(slots storage.Slots) *SlotRepository {
	return &SlotRepository{slots: slots, key: storage.KeyArticles}
}

// Read decodes the collection. A missing slot is an empty collection.
func (r *SlotRepository) Read() ([]models.AuthoredArticle, error) {
	data, err := r.slots.Get(r.key)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return []models.AuthoredArticle{}, nil
		}
		return nil, err
	}
	var out []models.AuthoredArticle
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("content: decode %s: %w", r.key, err)
	}
	if out == nil {
		out = []models.AuthoredArticle{}
	}
	return out, nil
}

// Write encodes and replaces the whole collection.
func (r *SlotRepository) Write(articles []models.AuthoredArticle) error {
	if articles == nil {
		articles = []models.AuthoredArticle{}
	}
	data, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("content: encode %s: %w", r.key, err)
	}
	return r.slots.Set(r.key, data)
}
