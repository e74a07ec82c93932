// Package prefs stores reader preferences that outlive a session.
package prefs

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/aininjas/internal/apperr"
	"github.com/starford/aininjas/internal/storage"
)

// Theme is the colour scheme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// DefaultTheme applies when nothing valid is stored.
const DefaultTheme = ThemeSystem

// Validate accepts the three known modes.
func (t Theme) Validate() error {
	return validation.Validate(string(t), validation.Required, validation.In("light", "dark", "system"))
}

// Themes reads and writes the themeMode slot.
type Themes struct {
	slots storage.Slots
}

func NewThemes(slots storage.Slots) *Themes {
	return &Themes{slots: slots}
}

// Get returns the stored theme, or DefaultTheme when the slot is missing or
// holds an unknown value.
func (p *Themes) Get() (Theme, error) {
	raw, err := p.slots.Get(storage.KeyThemeMode)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return DefaultTheme, nil
		}
		return "", fmt.Errorf("prefs: read theme: %w", err)
	}
	t := Theme(strings.TrimSpace(string(raw)))
	if t.Validate() != nil {
		return DefaultTheme, nil
	}
	return t, nil
}

// Set validates and stores t.
func (p *Themes) Set(t Theme) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: theme: %w", apperr.ErrValidation, err)
	}
	if err := p.slots.Set(storage.KeyThemeMode, []byte(t)); err != nil {
		return fmt.Errorf("prefs: write theme: %w", err)
	}
	return nil
}
