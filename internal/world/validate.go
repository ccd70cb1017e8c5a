package world

import (
	"fmt"
	"strings"
)

const (
	// MinDimension is the smallest usable width or height.
	MinDimension = 3
	// LargeDimension is the size above which a map draws a performance warning.
	LargeDimension = 32
	// MaxDimension is the largest width or height the generator accepts.
	MaxDimension = 128
)

// ValidationResult is the outcome of checking a MapConfig. Errors make the
// map unusable; warnings are informational.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// Err returns a *StructuralError when the result is invalid, nil otherwise.
func (r ValidationResult) Err(mapID string) error {
	if r.Valid {
		return nil
	}
	return &StructuralError{MapID: mapID, Problems: r.Errors}
}

// StructuralError reports a map that failed validation. Loading such a map
// is fatal for that map.
type StructuralError struct {
	MapID    string
	Problems []string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("map %q is structurally invalid: %s", e.MapID, strings.Join(e.Problems, "; "))
}

// ConnectivityWarningPrefix starts every warning produced by the opt-in
// connectivity check.
const ConnectivityWarningPrefix = "connectivity:"

// Validate checks dimensions, start position and tile values. It does not
// run the connectivity search; use ValidateConnected or Unreachable for that.
func Validate(m *MapConfig) ValidationResult {
	var r ValidationResult

	if m.Width < MinDimension || m.Height < MinDimension {
		r.Errors = append(r.Errors, fmt.Sprintf("grid %dx%d is smaller than %dx%d",
			m.Width, m.Height, MinDimension, MinDimension))
	}
	if len(m.Tiles) != m.Height {
		r.Errors = append(r.Errors, fmt.Sprintf("tiles has %d rows, height is %d", len(m.Tiles), m.Height))
	}

	junctions := 0
	for y, row := range m.Tiles {
		if len(row) != m.Width {
			r.Errors = append(r.Errors, fmt.Sprintf("row %d has %d columns, width is %d", y, len(row), m.Width))
		}
		for x, t := range row {
			if !t.IsValid() {
				r.Errors = append(r.Errors, fmt.Sprintf("invalid tile value %d at (%d,%d)", int(t), x, y))
				continue
			}
			if t.IsJunction() {
				junctions++
			}
		}
	}

	start := m.StartPosition
	if t, ok := m.TileAt(start.X, start.Y); !ok {
		r.Errors = append(r.Errors, fmt.Sprintf("start position %s is out of bounds", start))
	} else if !t.IsWalkable() {
		r.Errors = append(r.Errors, fmt.Sprintf("start position %s is on a %s tile", start, t))
	}
	if !m.StartDirection.IsValid() {
		r.Errors = append(r.Errors, fmt.Sprintf("invalid start direction %d", int(m.StartDirection)))
	}

	if m.Width > LargeDimension || m.Height > LargeDimension {
		r.Warnings = append(r.Warnings, fmt.Sprintf("grid %dx%d is larger than %dx%d and may render slowly",
			m.Width, m.Height, LargeDimension, LargeDimension))
	}
	if junctions == 0 {
		r.Warnings = append(r.Warnings, "map has no junction tiles")
	}

	r.Valid = len(r.Errors) == 0
	return r
}

// ValidateConnected runs Validate and, when the map is structurally valid,
// the connectivity search. Unreachable tiles become errors.
func ValidateConnected(m *MapConfig) ValidationResult {
	r := Validate(m)
	if !r.Valid {
		return r
	}
	if lost := Unreachable(m); len(lost) > 0 {
		r.Errors = append(r.Errors, connectivityMessage(lost))
		r.Valid = false
	}
	return r
}

// CheckConnectivity runs Validate and reports unreachable tiles as a
// ConnectivityWarning rather than an error.
func CheckConnectivity(m *MapConfig) ValidationResult {
	r := Validate(m)
	if !r.Valid {
		return r
	}
	if lost := Unreachable(m); len(lost) > 0 {
		r.Warnings = append(r.Warnings, connectivityMessage(lost))
	}
	return r
}

func connectivityMessage(lost []Position) string {
	shown := lost
	if len(shown) > 5 {
		shown = shown[:5]
	}
	parts := make([]string, len(shown))
	for i, p := range shown {
		parts[i] = p.String()
	}
	msg := fmt.Sprintf("%s %d walkable tiles unreachable from start: %s",
		ConnectivityWarningPrefix, len(lost), strings.Join(parts, " "))
	if len(lost) > len(shown) {
		msg += " ..."
	}
	return msg
}
