package gamedata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// ColorError reports a theme colour that could not be parsed.
type ColorError struct {
	Theme string
	Field string
	Value string
	Err   error
}

func (e *ColorError) Error() string {
	return fmt.Sprintf("theme %s: %s colour %q: %v", e.Theme, e.Field, e.Value, e.Err)
}

func (e *ColorError) Unwrap() error { return e.Err }

// ParseHexColor converts "#RRGGBB" or "RRGGBB" to a tcell colour.
func ParseHexColor(hex string) (tcell.Color, error) {
	digits := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(digits) != 6 {
		return tcell.ColorDefault, fmt.Errorf("want 6 hex digits, got %d", len(digits))
	}

	rgb, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return tcell.ColorDefault, fmt.Errorf("not hexadecimal: %w", err)
	}
	return tcell.NewHexColor(int32(rgb)), nil
}

// parseThemeColor parses one named colour of a theme.
func parseThemeColor(theme, field, hex string) (tcell.Color, error) {
	c, err := ParseHexColor(hex)
	if err != nil {
		return tcell.ColorDefault, &ColorError{Theme: theme, Field: field, Value: hex, Err: err}
	}
	return c, nil
}
