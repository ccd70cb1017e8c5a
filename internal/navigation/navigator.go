package navigation

import (
	"fmt"

	"github.com/samdwyer/dungeoncrawl/internal/world"
)

// DefaultOrientation is the orientation flag of a freshly loaded map.
const DefaultOrientation = false

// State is the authoritative movement state. It is replaced as a whole by
// each successful transition.
type State struct {
	Position    world.Position `json:"position"`
	Facing      world.Facing   `json:"facing"`
	Orientation bool           `json:"orientation"`
}

// Outcome names what a transition did.
type Outcome string

const (
	OutcomeMoved    Outcome = "moved"
	OutcomeBlocked  Outcome = "blocked"
	OutcomeReversed Outcome = "reversed"
	OutcomeTurned   Outcome = "turned"
	OutcomeRejected Outcome = "rejected"
)

// Result reports a transition. A blocked or rejected transition has OK
// false and carries the unchanged state.
type Result struct {
	OK         bool
	Outcome    Outcome
	State      State
	Projection Projection
}

// Navigator applies forward, reverse and turn transitions on one level.
type Navigator struct {
	level *world.Level
	state State
}

// New starts navigation at the level's start position and direction.
func New(level *world.Level) *Navigator {
	return &Navigator{
		level: level,
		state: State{
			Position:    level.Config.StartPosition,
			Facing:      level.Config.StartDirection,
			Orientation: DefaultOrientation,
		},
	}
}

// NewAt resumes navigation on a level with an existing state. The position
// must be walkable on that level.
func NewAt(level *world.Level, state State) (*Navigator, error) {
	if t, _ := level.TileAt(state.Position.X, state.Position.Y); !t.IsWalkable() {
		return nil, fmt.Errorf("position %s is not walkable on map %q", state.Position, level.Config.ID)
	}
	if !state.Facing.IsValid() {
		return nil, fmt.Errorf("invalid facing %d", int(state.Facing))
	}
	return &Navigator{level: level, state: state}, nil
}

// Level returns the level being navigated.
func (n *Navigator) Level() *world.Level {
	return n.level
}

// State returns the current movement state.
func (n *Navigator) State() State {
	return n.state
}

// Projection derives the current corridor projection.
func (n *Navigator) Projection() Projection {
	return Project(n.level.Rows(), n.level.Columns, n.state.Position, n.state.Facing)
}

// CurrentTile returns the tile under the player.
func (n *Navigator) CurrentTile() world.TileType {
	t, _ := n.level.TileAt(n.state.Position.X, n.state.Position.Y)
	return t
}

// TileAt returns the tile at (x, y), or (Wall, false) outside the grid.
func (n *Navigator) TileAt(x, y int) (world.TileType, bool) {
	return n.level.TileAt(x, y)
}

// Visual resolves the sprite for the player's own tile.
func (n *Navigator) Visual() Visual {
	return ResolveVisual(n.level.Rows(), n.state.Position, n.state.Facing, n.state.Orientation)
}

// Visuals resolves sprites for every tile of the current projection.
func (n *Navigator) Visuals() []Visual {
	return Visuals(n.level.Rows(), n.Projection(), n.state.Position, n.state.Facing, n.state.Orientation)
}

// MoveForward steps one tile in the facing direction. Walls and the grid
// edge block the move.
func (n *Navigator) MoveForward() Result {
	next := n.state.Position.Step(n.state.Facing)
	if !n.walkable(next) {
		return n.result(false, OutcomeBlocked)
	}
	n.state = State{
		Position:    next,
		Facing:      n.state.Facing,
		Orientation: n.state.Orientation,
	}
	return n.result(true, OutcomeMoved)
}

// Reverse turns around on the spot and flips the orientation flag. It
// always succeeds.
func (n *Navigator) Reverse() Result {
	n.state = State{
		Position:    n.state.Position,
		Facing:      n.state.Facing.Opposite(),
		Orientation: !n.state.Orientation,
	}
	return n.result(true, OutcomeReversed)
}

// Turn rotates a quarter turn. Turning to face a wall is rejected unless the
// player stands in a dead end or already faces a wall. Orientation follows
// the turn side, except at junctions where the single open side of the new
// facing decides it.
func (n *Navigator) Turn(dir world.TurnDir) Result {
	pos := n.state.Position
	facing := n.state.Facing.Turn(dir)

	if !n.walkable(pos.Step(facing)) && !n.canEscape() {
		return n.result(false, OutcomeRejected)
	}

	orientation := dir == world.Right
	if n.CurrentTile().IsJunction() {
		left, right := facing.Perpendicular()
		leftOpen, rightOpen := n.walkable(pos.Step(left)), n.walkable(pos.Step(right))
		if leftOpen != rightOpen {
			orientation = rightOpen
		}
	}

	n.state = State{Position: pos, Facing: facing, Orientation: orientation}
	return n.result(true, OutcomeTurned)
}

// canEscape reports whether turning into a wall is allowed from here.
func (n *Navigator) canEscape() bool {
	pos := n.state.Position
	if n.CurrentTile() == world.DeadEnd {
		return true
	}
	if len(n.level.Config.WalkableNeighbors(pos)) <= 1 {
		return true
	}
	return !n.walkable(pos.Step(n.state.Facing))
}

func (n *Navigator) walkable(p world.Position) bool {
	return n.level.Config.IsWalkable(p.X, p.Y)
}

func (n *Navigator) result(ok bool, outcome Outcome) Result {
	return Result{
		OK:         ok,
		Outcome:    outcome,
		State:      n.state,
		Projection: n.Projection(),
	}
}
