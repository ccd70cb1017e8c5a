package world

import (
	"errors"
	"strings"
	"testing"
)

func ringMap() *MapConfig {
	return &MapConfig{
		ID:     "ring",
		Name:   "Ring",
		Width:  4,
		Height: 4,
		Tiles: [][]TileType{
			{Turn, ThreeWay, Corridor, Turn},
			{Corridor, Wall, Wall, Corridor},
			{Corridor, Wall, Wall, Corridor},
			{Turn, Corridor, Corridor, Turn},
		},
		StartPosition:  Position{X: 0, Y: 0},
		StartDirection: East,
	}
}

func TestValidateAcceptsGoodMap(t *testing.T) {
	r := Validate(ringMap())
	if !r.Valid {
		t.Fatalf("Validate() errors = %v", r.Errors)
	}
	if len(r.Warnings) != 0 {
		t.Errorf("Validate() warnings = %v", r.Warnings)
	}
	if err := r.Err("ring"); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MapConfig)
		want   string
	}{
		{"too small", func(m *MapConfig) {
			m.Width, m.Height = 2, 2
			m.Tiles = [][]TileType{{Turn, Turn}, {Turn, Turn}}
		}, "smaller than 3x3"},
		{"row count", func(m *MapConfig) { m.Tiles = m.Tiles[:3] }, "3 rows"},
		{"row width", func(m *MapConfig) { m.Tiles[2] = m.Tiles[2][:3] }, "row 2 has 3 columns"},
		{"tile value", func(m *MapConfig) { m.Tiles[1][1] = TileType(12) }, "invalid tile value 12 at (1,1)"},
		{"start out of bounds", func(m *MapConfig) { m.StartPosition = Position{X: 4, Y: 0} }, "out of bounds"},
		{"start on wall", func(m *MapConfig) { m.StartPosition = Position{X: 1, Y: 1} }, "on a wall tile"},
		{"start direction", func(m *MapConfig) { m.StartDirection = Facing(7) }, "invalid start direction"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ringMap()
			tt.mutate(m)
			r := Validate(m)
			if r.Valid {
				t.Fatal("Validate() accepted an invalid map")
			}
			if !strings.Contains(strings.Join(r.Errors, "; "), tt.want) {
				t.Errorf("errors %v do not mention %q", r.Errors, tt.want)
			}

			err := r.Err(m.ID)
			var se *StructuralError
			if !errors.As(err, &se) {
				t.Fatalf("Err() = %T, want *StructuralError", err)
			}
			if se.MapID != "ring" || len(se.Problems) == 0 {
				t.Errorf("StructuralError = %+v", se)
			}
		})
	}
}

func TestValidateWarnings(t *testing.T) {
	m := ringMap()
	m.Tiles[0][1] = Corridor
	r := Validate(m)
	if !r.Valid {
		t.Fatalf("Validate() errors = %v", r.Errors)
	}
	if len(r.Warnings) != 1 || !strings.Contains(r.Warnings[0], "no junction") {
		t.Errorf("warnings = %v, want no-junction warning", r.Warnings)
	}

	big := &MapConfig{ID: "big", Width: 40, Height: 3, StartDirection: East}
	big.Tiles = make([][]TileType, 3)
	for y := range big.Tiles {
		big.Tiles[y] = make([]TileType, 40)
		for x := range big.Tiles[y] {
			big.Tiles[y][x] = Corridor
		}
	}
	big.Tiles[1][1] = FourWay
	r = Validate(big)
	if !r.Valid {
		t.Fatalf("Validate() errors = %v", r.Errors)
	}
	if len(r.Warnings) != 1 || !strings.Contains(r.Warnings[0], "larger than 32x32") {
		t.Errorf("warnings = %v, want size warning", r.Warnings)
	}
}

func TestConnectivityChecks(t *testing.T) {
	m := ringMap()
	m.Width, m.Height = 5, 4
	m.Tiles = [][]TileType{
		{Turn, ThreeWay, Corridor, Turn, Wall},
		{Corridor, Wall, Wall, Corridor, Wall},
		{Corridor, Wall, Wall, Corridor, Wall},
		{Turn, Corridor, Corridor, Turn, DeadEnd},
	}
	// (4,3) touches (3,3), so the map is still connected.
	if lost := Unreachable(m); len(lost) != 0 {
		t.Fatalf("Unreachable() = %v, want none", lost)
	}

	m.Tiles[0][4] = DeadEnd
	m.Tiles[2][3] = Wall
	m.Tiles[3][4] = Wall
	lost := Unreachable(m)
	if len(lost) != 0 {
		// (3,1) is still reachable through (3,0); (4,0) through (3,0).
		t.Fatalf("Unreachable() = %v, want none", lost)
	}

	m.Tiles[0][3] = Wall
	m.Tiles[0][4] = Wall
	m.Tiles[1][3] = Corridor
	// (3,1) is now isolated.
	lost = Unreachable(m)
	if len(lost) != 1 || lost[0] != (Position{X: 3, Y: 1}) {
		t.Fatalf("Unreachable() = %v, want [(3,1)]", lost)
	}

	if r := Validate(m); !r.Valid {
		t.Fatalf("Validate() should not run connectivity: %v", r.Errors)
	}

	strict := ValidateConnected(m)
	if strict.Valid {
		t.Error("ValidateConnected() accepted a disconnected map")
	}
	if !strings.HasPrefix(strict.Errors[len(strict.Errors)-1], ConnectivityWarningPrefix) {
		t.Errorf("errors = %v, want connectivity error", strict.Errors)
	}

	lenient := CheckConnectivity(m)
	if !lenient.Valid {
		t.Errorf("CheckConnectivity() errors = %v", lenient.Errors)
	}
	found := false
	for _, w := range lenient.Warnings {
		if strings.HasPrefix(w, ConnectivityWarningPrefix) && strings.Contains(w, "(3,1)") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want connectivity warning naming (3,1)", lenient.Warnings)
	}
}

func TestConnectivityMessageTruncates(t *testing.T) {
	lost := make([]Position, 8)
	for i := range lost {
		lost[i] = Position{X: i, Y: 0}
	}
	msg := connectivityMessage(lost)
	if !strings.Contains(msg, "8 walkable tiles") || !strings.HasSuffix(msg, "...") {
		t.Errorf("message = %q", msg)
	}
	if strings.Contains(msg, "(5,0)") {
		t.Errorf("message lists more than five positions: %q", msg)
	}
}

func TestNewLevel(t *testing.T) {
	level, r, err := NewLevel(ringMap())
	if err != nil {
		t.Fatalf("NewLevel() error = %v", err)
	}
	if !r.Valid {
		t.Errorf("result = %+v", r)
	}
	if !level.Columns.Agrees(level.Rows()) {
		t.Error("column view disagrees with rows")
	}

	stamped := level.WithTile(Position{X: 2, Y: 0}, DeadEnd)
	if got, _ := stamped.TileAt(2, 0); got != DeadEnd {
		t.Errorf("stamped tile = %s, want dead_end", got)
	}
	if stamped.Columns[2][0] != DeadEnd {
		t.Error("column view not rebuilt after WithTile")
	}
	if got, _ := level.TileAt(2, 0); got != Corridor {
		t.Errorf("WithTile mutated the original level: %s", got)
	}

	bad := ringMap()
	bad.StartPosition = Position{X: 1, Y: 1}
	if _, _, err := NewLevel(bad); err == nil {
		t.Error("NewLevel() accepted a start on a wall")
	}
}
