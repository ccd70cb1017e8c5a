// Package game provides the play session, the main game loop and state management.
package game

// State represents the current display mode.
type State int

const (
	// StateExplore shows the corridor strip and a minimap around the player.
	StateExplore State = iota
	// StateMap shows the whole level.
	StateMap
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateExplore:
		return "explore"
	case StateMap:
		return "map"
	default:
		return "unknown"
	}
}

// Toggle switches between exploring and the full map.
func (s State) Toggle() State {
	if s == StateMap {
		return StateExplore
	}
	return StateMap
}
