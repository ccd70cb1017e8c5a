package world

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Position is an absolute grid coordinate.
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Step returns the position one move away in the given facing.
func (p Position) Step(f Facing) Position {
	v := f.Vector()
	return Position{X: p.X + v.DX, Y: p.Y + v.DY}
}

// Manhattan returns the taxicab distance between two positions.
func (p Position) Manhattan(o Position) int {
	return abs(p.X-o.X) + abs(p.Y-o.Y)
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Difficulty buckets a map's complexity.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Metadata is optional descriptive data attached to a map.
type Metadata struct {
	Difficulty       Difficulty `json:"difficulty,omitempty"`
	Theme            string     `json:"theme,omitempty"`
	Author           string     `json:"author,omitempty"`
	Version          string     `json:"version,omitempty"`
	MerchantPosition *Position  `json:"merchantPosition,omitempty"`
}

// MapConfig describes one dungeon level. Tiles are row-major: Tiles[y][x].
// A MapConfig is treated as immutable once produced; use Clone before
// making changes.
type MapConfig struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Description    string       `json:"description,omitempty"`
	Width          int          `json:"width"`
	Height         int          `json:"height"`
	Tiles          [][]TileType `json:"tiles"`
	StartPosition  Position     `json:"startPosition"`
	StartDirection Facing       `json:"startDirection"`
	Metadata       *Metadata    `json:"metadata,omitempty"`
}

// ParseMapConfig decodes a MapConfig from JSON. It does not validate.
func ParseMapConfig(data []byte) (*MapConfig, error) {
	var cfg MapConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse map JSON: %w", err)
	}
	return &cfg, nil
}

// InBounds reports whether (x, y) addresses an existing cell. Rows of
// unvalidated configs may be ragged, so the row length is checked directly.
func (m *MapConfig) InBounds(x, y int) bool {
	return y >= 0 && y < len(m.Tiles) && x >= 0 && x < len(m.Tiles[y])
}

// TileAt returns the tile at (x, y). Outside the grid it returns (Wall, false).
func (m *MapConfig) TileAt(x, y int) (TileType, bool) {
	if !m.InBounds(x, y) {
		return Wall, false
	}
	return m.Tiles[y][x], true
}

// IsWalkable returns true if (x, y) is inside the grid and walkable.
func (m *MapConfig) IsWalkable(x, y int) bool {
	t, ok := m.TileAt(x, y)
	return ok && t.IsWalkable()
}

// WalkableNeighbors returns the facings whose adjacent cell is walkable.
func (m *MapConfig) WalkableNeighbors(p Position) []Facing {
	return walkableNeighbors(m.Tiles, p)
}

// Clone returns a deep copy.
func (m *MapConfig) Clone() *MapConfig {
	c := *m
	c.Tiles = cloneTiles(m.Tiles)
	if m.Metadata != nil {
		md := *m.Metadata
		if md.MerchantPosition != nil {
			pos := *md.MerchantPosition
			md.MerchantPosition = &pos
		}
		c.Metadata = &md
	}
	return &c
}

// Count returns how many cells hold the given tile type.
func (m *MapConfig) Count(t TileType) int {
	n := 0
	for _, row := range m.Tiles {
		for _, cell := range row {
			if cell == t {
				n++
			}
		}
	}
	return n
}

// Format renders the grid as ASCII, one row per line. The start position is
// marked with '@'.
func (m *MapConfig) Format() string {
	var b strings.Builder
	for y, row := range m.Tiles {
		for x, t := range row {
			if x == m.StartPosition.X && y == m.StartPosition.Y {
				b.WriteRune('@')
				continue
			}
			b.WriteRune(t.Glyph())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func cloneTiles(tiles [][]TileType) [][]TileType {
	out := make([][]TileType, len(tiles))
	for y, row := range tiles {
		out[y] = append([]TileType(nil), row...)
	}
	return out
}

func walkableAt(tiles [][]TileType, p Position) bool {
	if p.Y < 0 || p.Y >= len(tiles) || p.X < 0 || p.X >= len(tiles[p.Y]) {
		return false
	}
	return tiles[p.Y][p.X].IsWalkable()
}

func walkableNeighbors(tiles [][]TileType, p Position) []Facing {
	var open []Facing
	for _, f := range AllFacings() {
		if walkableAt(tiles, p.Step(f)) {
			open = append(open, f)
		}
	}
	return open
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
