package navigation

import (
	"fmt"

	"github.com/samdwyer/dungeoncrawl/internal/world"
)

// Visual is the sprite class a renderer draws for a tile seen with a given
// facing. Turn sprites come in mirror-image left and right variants.
type Visual int

const (
	VisualWall Visual = iota
	VisualCorridor
	VisualTurnLeft
	VisualTurnRight
	VisualThreeWay
	VisualFourWay
	VisualDoor
	VisualStairsUp
	VisualStairsDown
	VisualDeadEnd
)

var visualNames = [...]string{
	VisualWall:       "wall",
	VisualCorridor:   "corridor",
	VisualTurnLeft:   "turn_left",
	VisualTurnRight:  "turn_right",
	VisualThreeWay:   "three_way",
	VisualFourWay:    "four_way",
	VisualDoor:       "door",
	VisualStairsUp:   "stairs_up",
	VisualStairsDown: "stairs_down",
	VisualDeadEnd:    "dead_end",
}

func (v Visual) String() string {
	if v < 0 || int(v) >= len(visualNames) {
		return fmt.Sprintf("visual(%d)", int(v))
	}
	return visualNames[v]
}

// ParseVisual returns the visual with the given name.
func ParseVisual(name string) (Visual, error) {
	for i, n := range visualNames {
		if n == name {
			return Visual(i), nil
		}
	}
	return VisualWall, fmt.Errorf("unknown visual %q", name)
}

// MarshalText encodes the visual by name.
func (v Visual) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText decodes a visual name.
func (v *Visual) UnmarshalText(text []byte) error {
	parsed, err := ParseVisual(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ResolveVisual classifies the tile at pos as seen when facing the given
// direction. Turn tiles bend toward the single open perpendicular side; when
// both or neither side is open the orientation flag picks the sprite (true
// is the right-hand variant). Junctions use their own sprite only when both
// perpendicular sides are open.
func ResolveVisual(rows [][]world.TileType, pos world.Position, facing world.Facing, orientation bool) Visual {
	tile := tileAt(rows, pos)
	left, right := facing.Perpendicular()
	leftOpen := tileAt(rows, pos.Step(left)).IsWalkable()
	rightOpen := tileAt(rows, pos.Step(right)).IsWalkable()

	switch tile {
	case world.Corridor:
		return VisualCorridor
	case world.Turn:
		return sideVisual(leftOpen, rightOpen, orientation)
	case world.ThreeWay, world.FourWay:
		if leftOpen && rightOpen {
			if tile == world.ThreeWay {
				return VisualThreeWay
			}
			return VisualFourWay
		}
		return sideVisual(leftOpen, rightOpen, orientation)
	case world.Door:
		return VisualDoor
	case world.StairsUp:
		return VisualStairsUp
	case world.StairsDown:
		return VisualStairsDown
	case world.DeadEnd:
		return VisualDeadEnd
	default:
		return VisualWall
	}
}

func sideVisual(leftOpen, rightOpen, orientation bool) Visual {
	switch {
	case leftOpen && !rightOpen:
		return VisualTurnLeft
	case rightOpen && !leftOpen:
		return VisualTurnRight
	case orientation:
		return VisualTurnRight
	default:
		return VisualTurnLeft
	}
}

// Visuals resolves every tile of a projection taken at pos and facing.
func Visuals(rows [][]world.TileType, p Projection, pos world.Position, facing world.Facing, orientation bool) []Visual {
	positions := p.Positions(pos, facing)
	out := make([]Visual, len(positions))
	for i, at := range positions {
		out[i] = ResolveVisual(rows, at, facing, orientation)
	}
	return out
}

func tileAt(rows [][]world.TileType, p world.Position) world.TileType {
	if p.Y < 0 || p.Y >= len(rows) || p.X < 0 || p.X >= len(rows[p.Y]) {
		return world.Wall
	}
	return rows[p.Y][p.X]
}

// SpriteSet maps visuals to renderer resource handles.
type SpriteSet map[Visual]string

// spriteFallbacks lists the visual drawn when a set has no art for a visual.
var spriteFallbacks = map[Visual]Visual{
	VisualDoor:       VisualCorridor,
	VisualStairsUp:   VisualCorridor,
	VisualStairsDown: VisualCorridor,
	VisualDeadEnd:    VisualWall,
}

// Resolve returns the handle for v, following the fallback chain when the
// set has no entry. The second result is the visual actually used.
func (s SpriteSet) Resolve(v Visual) (string, Visual, bool) {
	for current := v; ; {
		if handle, ok := s[current]; ok {
			return handle, current, true
		}
		next, ok := spriteFallbacks[current]
		if !ok {
			return "", v, false
		}
		current = next
	}
}
