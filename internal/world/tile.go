// Package world provides the dungeon data model, direction arithmetic,
// map validation and procedural dungeon generation.
package world

import "fmt"

// TileType is the kind of a single grid cell. Values are the small integers
// 0-8 used in map JSON.
type TileType int

const (
	// Wall is impassable and blocks vision.
	Wall TileType = iota
	// Corridor is a straight walkable run.
	Corridor
	// Turn is a bend or the closed end of a corridor.
	Turn
	// ThreeWay is a junction with three open sides.
	ThreeWay
	// FourWay is a crossing with all four sides open.
	FourWay
	// Door leads to another map via the transition table.
	Door
	// StairsUp leads to the level above.
	StairsUp
	// StairsDown leads to the level below.
	StairsDown
	// DeadEnd is a marked corridor end.
	DeadEnd
)

// tileBehavior holds the fixed flags of a tile type.
type tileBehavior struct {
	name         string
	glyph        rune
	walkable     bool
	blocksVision bool
	interactive  bool
	transition   bool
}

var behaviors = [...]tileBehavior{
	Wall:       {name: "wall", glyph: '#', blocksVision: true},
	Corridor:   {name: "corridor", glyph: '.', walkable: true},
	Turn:       {name: "turn", glyph: '+', walkable: true},
	ThreeWay:   {name: "three_way", glyph: 'T', walkable: true},
	FourWay:    {name: "four_way", glyph: 'X', walkable: true},
	Door:       {name: "door", glyph: 'D', walkable: true, blocksVision: true, interactive: true, transition: true},
	StairsUp:   {name: "stairs_up", glyph: '<', walkable: true, interactive: true, transition: true},
	StairsDown: {name: "stairs_down", glyph: '>', walkable: true, interactive: true, transition: true},
	DeadEnd:    {name: "dead_end", glyph: '!', walkable: true},
}

// IsValid reports whether t is one of the defined tile types.
func (t TileType) IsValid() bool {
	return t >= Wall && int(t) < len(behaviors)
}

func (t TileType) behavior() tileBehavior {
	if !t.IsValid() {
		return behaviors[Wall]
	}
	return behaviors[t]
}

// IsWalkable returns true if the tile can be stood on.
func (t TileType) IsWalkable() bool {
	return t.IsValid() && t.behavior().walkable
}

// BlocksVision returns true if the tile stops line of sight.
func (t TileType) BlocksVision() bool {
	return t.behavior().blocksVision
}

// IsInteractive returns true if the player can act on the tile.
func (t TileType) IsInteractive() bool {
	return t.IsValid() && t.behavior().interactive
}

// IsTransition returns true if the tile leads to another map.
func (t TileType) IsTransition() bool {
	return t.IsValid() && t.behavior().transition
}

// IsJunction returns true for three- and four-way tiles.
func (t TileType) IsJunction() bool {
	return t == ThreeWay || t == FourWay
}

// IsSpecial returns true for tiles whose type is not derived from neighbor
// count: doors, stairs and marked dead ends.
func (t TileType) IsSpecial() bool {
	switch t {
	case Door, StairsUp, StairsDown, DeadEnd:
		return true
	}
	return false
}

// Glyph returns the ASCII character used in map dumps.
func (t TileType) Glyph() rune {
	if !t.IsValid() {
		return '?'
	}
	return behaviors[t].glyph
}

// String returns a human-readable tile name.
func (t TileType) String() string {
	if !t.IsValid() {
		return fmt.Sprintf("tile(%d)", int(t))
	}
	return behaviors[t].name
}
