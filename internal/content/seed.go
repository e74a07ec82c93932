package content

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/aininjas/internal/models"
)

//go:embed seed.yaml
var seedYAML []byte

// LoadSeed decodes the built-in article set.
func LoadSeed() ([]models.Article, error) {
	return decodeSeed(seedYAML)
}

func decodeSeed(data []byte) ([]models.Article, error) {
	var doc struct {
		Articles []models.Article `yaml:"articles"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("content: decode seed: %w", err)
	}
	for i := range doc.Articles {
		doc.Articles[i].Content = strings.TrimSpace(doc.Articles[i].Content)
		if doc.Articles[i].Slug == "" {
			doc.Articles[i].Slug = DeriveSlug(doc.Articles[i].Title)
		}
	}
	return doc.Articles, nil
}
