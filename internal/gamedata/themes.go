package gamedata

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/dungeoncrawl/internal/navigation"
)

// ThemeColors holds hex colour strings for the terminal renderer.
type ThemeColors struct {
	Wall    string `json:"wall"`
	Floor   string `json:"floor"`
	Player  string `json:"player"`
	Special string `json:"special"`
	Text    string `json:"text"`
}

// ThemeDef is a UI theme loaded from themes.json. Sprites maps visual names
// (see navigation.Visual) to the glyph drawn for them.
type ThemeDef struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Colors  ThemeColors       `json:"colors"`
	Sprites map[string]string `json:"sprites"`
}

// Palette is a theme's colours resolved for tcell.
type Palette struct {
	Wall    tcell.Color
	Floor   tcell.Color
	Player  tcell.Color
	Special tcell.Color
	Text    tcell.Color
}

// Palette parses the theme's hex colours.
func (t *ThemeDef) Palette() (Palette, error) {
	var p Palette
	fields := []struct {
		name string
		hex  string
		dst  *tcell.Color
	}{
		{"wall", t.Colors.Wall, &p.Wall},
		{"floor", t.Colors.Floor, &p.Floor},
		{"player", t.Colors.Player, &p.Player},
		{"special", t.Colors.Special, &p.Special},
		{"text", t.Colors.Text, &p.Text},
	}
	for _, f := range fields {
		c, err := parseThemeColor(t.ID, f.name, f.hex)
		if err != nil {
			return Palette{}, err
		}
		*f.dst = c
	}
	return p, nil
}

// SpriteSet converts the theme's sprite table into a navigation.SpriteSet.
func (t *ThemeDef) SpriteSet() (navigation.SpriteSet, error) {
	set := make(navigation.SpriteSet, len(t.Sprites))
	for name, glyph := range t.Sprites {
		v, err := navigation.ParseVisual(name)
		if err != nil {
			return nil, fmt.Errorf("theme %s: %w", t.ID, err)
		}
		set[v] = glyph
	}
	return set, nil
}

// LoadThemes loads theme definitions from the embedded themes.json.
func LoadThemes() ([]ThemeDef, error) {
	return Load[[]ThemeDef]("themes.json")
}
