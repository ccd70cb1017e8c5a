package world

import (
	"fmt"
	"strings"
)

// Facing is a cardinal travel direction. Values are ordered clockwise so the
// turn tables below can be indexed directly.
type Facing int

const (
	North Facing = iota
	East
	South
	West
)

// TurnDir is the side a turn goes to.
type TurnDir int

const (
	Left TurnDir = iota
	Right
)

// Vector is a unit grid step.
type Vector struct {
	DX, DY int
}

var (
	facingNames = [4]string{North: "N", East: "E", South: "S", West: "W"}
	opposites   = [4]Facing{North: South, East: West, South: North, West: East}
	vectors     = [4]Vector{North: {0, -1}, East: {1, 0}, South: {0, 1}, West: {-1, 0}}

	// turns[f][d] is the facing after turning d from f.
	turns = [4][2]Facing{
		North: {Left: West, Right: East},
		East:  {Left: North, Right: South},
		South: {Left: East, Right: West},
		West:  {Left: South, Right: North},
	}
)

// AllFacings returns the four facings in clockwise order starting at North.
func AllFacings() []Facing {
	return []Facing{North, East, South, West}
}

// IsValid reports whether f is one of N, E, S, W.
func (f Facing) IsValid() bool {
	return f >= North && f <= West
}

// Turn returns the facing after turning to the given side.
// Invalid facings are returned unchanged.
func (f Facing) Turn(d TurnDir) Facing {
	if !f.IsValid() || (d != Left && d != Right) {
		return f
	}
	return turns[f][d]
}

// Opposite returns the reverse facing.
func (f Facing) Opposite() Facing {
	if !f.IsValid() {
		return f
	}
	return opposites[f]
}

// Vector returns the grid step for one move in this facing.
func (f Facing) Vector() Vector {
	if !f.IsValid() {
		return Vector{}
	}
	return vectors[f]
}

// Perpendicular returns the facings to the left and right of f.
func (f Facing) Perpendicular() (left, right Facing) {
	return f.Turn(Left), f.Turn(Right)
}

// IsVertical returns true for North and South.
func (f Facing) IsVertical() bool {
	return f == North || f == South
}

// IsHorizontal returns true for East and West.
func (f Facing) IsHorizontal() bool {
	return f == East || f == West
}

// String returns the single-letter facing name.
func (f Facing) String() string {
	if !f.IsValid() {
		return fmt.Sprintf("facing(%d)", int(f))
	}
	return facingNames[f]
}

// MarshalText encodes the facing as "N", "E", "S" or "W".
func (f Facing) MarshalText() ([]byte, error) {
	if !f.IsValid() {
		return nil, fmt.Errorf("invalid facing %d", int(f))
	}
	return []byte(facingNames[f]), nil
}

// UnmarshalText decodes a facing letter or full direction name.
func (f *Facing) UnmarshalText(text []byte) error {
	parsed, err := ParseFacing(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseFacing accepts "N"/"north" style names, case-insensitively.
func ParseFacing(s string) (Facing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "north":
		return North, nil
	case "e", "east":
		return East, nil
	case "s", "south":
		return South, nil
	case "w", "west":
		return West, nil
	}
	return North, fmt.Errorf("unknown facing %q", s)
}

// String returns "L" or "R".
func (d TurnDir) String() string {
	if d == Right {
		return "R"
	}
	return "L"
}

// ParseTurnDir accepts "L"/"left" and "R"/"right".
func ParseTurnDir(s string) (TurnDir, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l", "left":
		return Left, nil
	case "r", "right":
		return Right, nil
	}
	return Left, fmt.Errorf("unknown turn direction %q", s)
}
