package gamedata

import (
	"errors"
	"fmt"
)

// ThemeRegistry holds loaded theme definitions.
type ThemeRegistry struct {
	themes map[string]*ThemeDef
	all    []ThemeDef
}

// NewThemeRegistry creates a registry from loaded theme definitions. Every
// theme's colours and sprites must parse.
func NewThemeRegistry(themes []ThemeDef) (*ThemeRegistry, error) {
	registry := &ThemeRegistry{
		themes: make(map[string]*ThemeDef),
		all:    themes,
	}
	for i := range themes {
		if _, err := themes[i].Palette(); err != nil {
			return nil, err
		}
		if _, err := themes[i].SpriteSet(); err != nil {
			return nil, err
		}
		if _, dup := registry.themes[themes[i].ID]; dup {
			return nil, fmt.Errorf("duplicate theme id %q", themes[i].ID)
		}
		registry.themes[themes[i].ID] = &themes[i]
	}
	return registry, nil
}

// LoadThemeRegistry loads and creates a registry from the embedded themes.json.
func LoadThemeRegistry() (*ThemeRegistry, error) {
	themes, err := LoadThemes()
	if err != nil {
		return nil, err
	}
	if len(themes) == 0 {
		return nil, errors.New("no themes loaded from themes.json")
	}
	return NewThemeRegistry(themes)
}

// MustLoadThemeRegistry loads a registry, panicking on error.
func MustLoadThemeRegistry() *ThemeRegistry {
	registry, err := LoadThemeRegistry()
	if err != nil {
		panic(err)
	}
	return registry
}

// GetByID returns the theme with the given ID, or nil if not found.
func (r *ThemeRegistry) GetByID(id string) *ThemeDef {
	return r.themes[id]
}

// Resolve returns the theme with the given ID, falling back to the first
// theme when the ID is unknown or empty.
func (r *ThemeRegistry) Resolve(id string) *ThemeDef {
	if t := r.themes[id]; t != nil {
		return t
	}
	return &r.all[0]
}

// All returns all theme definitions.
func (r *ThemeRegistry) All() []ThemeDef {
	return r.all
}

// Count returns the number of themes in the registry.
func (r *ThemeRegistry) Count() int {
	return len(r.all)
}
