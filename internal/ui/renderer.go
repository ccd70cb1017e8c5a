package ui

import (
	"fmt"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/dungeoncrawl/internal/gamedata"
	"github.com/samdwyer/dungeoncrawl/internal/navigation"
	"github.com/samdwyer/dungeoncrawl/internal/world"
)

// Layout rows and sizes.
const (
	headerRow     = 0
	stripRow      = 2
	mapTop        = 4
	minimapRadius = 5
)

// Frame is everything drawn in one pass.
type Frame struct {
	Level   *world.Level
	State   navigation.State
	Ahead   []navigation.Visual
	FullMap bool
	Message string
}

// Renderer handles drawing the game to the screen.
type Renderer struct {
	screen  *Screen
	palette gamedata.Palette
	sprites navigation.SpriteSet
}

// NewRenderer creates a renderer for the given screen and theme.
func NewRenderer(screen *Screen, theme *gamedata.ThemeDef) (*Renderer, error) {
	palette, err := theme.Palette()
	if err != nil {
		return nil, err
	}
	sprites, err := theme.SpriteSet()
	if err != nil {
		return nil, err
	}
	return &Renderer{screen: screen, palette: palette, sprites: sprites}, nil
}

// Render draws the header, the corridor strip, the map and the status line.
func (r *Renderer) Render(f Frame) {
	r.screen.Clear()
	if f.Level == nil {
		r.RenderMessage(f.Message)
		r.screen.Show()
		return
	}

	r.renderHeader(f)
	r.renderStrip(f.Ahead)
	if f.FullMap {
		r.renderMap(f.Level, f.State, 0, 0, f.Level.Config.Width, f.Level.Config.Height)
	} else {
		p := f.State.Position
		r.renderMap(f.Level, f.State,
			p.X-minimapRadius, p.Y-minimapRadius,
			2*minimapRadius+1, 2*minimapRadius+1)
	}
	r.RenderMessage(f.Message)

	r.screen.Show()
}

func (r *Renderer) renderHeader(f Frame) {
	cfg := f.Level.Config
	text := fmt.Sprintf("%s [%s]  %s facing %s", cfg.Name, cfg.ID, f.State.Position, f.State.Facing)
	r.screen.DrawText(0, headerRow, text, r.textStyle())
}

// renderStrip draws the visible run of corridor ahead, nearest first.
func (r *Renderer) renderStrip(ahead []navigation.Visual) {
	x := r.screen.DrawText(0, stripRow, "Ahead: ", r.textStyle())
	for i, v := range ahead {
		glyph, used, ok := r.sprites.Resolve(v)
		ch := '?'
		if ok {
			ch, _ = utf8.DecodeRuneInString(glyph)
		}
		style := r.visualStyle(used)
		if i == 0 {
			style = style.Bold(true)
		}
		r.screen.SetContent(x+2*i, stripRow, ch, style)
	}
}

// renderMap draws the w x h window of the grid whose top-left cell is
// (left, top). Cells off the grid stay blank.
func (r *Renderer) renderMap(level *world.Level, state navigation.State, left, top, w, h int) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			x, y := left+dx, top+dy
			tile, ok := level.TileAt(x, y)
			if !ok {
				continue
			}
			r.screen.SetContent(dx, mapTop+dy, tile.Glyph(), r.tileStyle(tile))
		}
	}

	px, py := state.Position.X-left, state.Position.Y-top
	style := tcell.StyleDefault.Foreground(r.palette.Player).Bold(true)
	r.screen.SetContent(px, mapTop+py, PlayerGlyph(state.Facing), style)
}

// RenderMessage displays a message on the bottom row of the screen.
func (r *Renderer) RenderMessage(msg string) {
	if msg == "" {
		return
	}
	_, h := r.screen.Size()
	r.screen.DrawText(0, h-1, msg, r.textStyle())
}

func (r *Renderer) textStyle() tcell.Style {
	return tcell.StyleDefault.Foreground(r.palette.Text)
}

// tileStyle returns the appropriate style for a tile type.
func (r *Renderer) tileStyle(tile world.TileType) tcell.Style {
	switch {
	case !tile.IsWalkable():
		return tcell.StyleDefault.Foreground(r.palette.Wall)
	case tile.IsSpecial():
		return tcell.StyleDefault.Foreground(r.palette.Special)
	default:
		return tcell.StyleDefault.Foreground(r.palette.Floor)
	}
}

func (r *Renderer) visualStyle(v navigation.Visual) tcell.Style {
	switch v {
	case navigation.VisualWall:
		return tcell.StyleDefault.Foreground(r.palette.Wall)
	case navigation.VisualDoor, navigation.VisualStairsUp, navigation.VisualStairsDown, navigation.VisualDeadEnd:
		return tcell.StyleDefault.Foreground(r.palette.Special)
	default:
		return tcell.StyleDefault.Foreground(r.palette.Floor)
	}
}

// PlayerGlyph returns the arrow drawn for the player.
func PlayerGlyph(f world.Facing) rune {
	switch f {
	case world.North:
		return '^'
	case world.East:
		return '>'
	case world.South:
		return 'v'
	case world.West:
		return '<'
	default:
		return '@'
	}
}
