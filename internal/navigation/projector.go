// Package navigation keeps a player's grid position, facing and visible
// corridor consistent. The corridor index is always derived from the grid,
// position and facing; it is never carried from one move to the next.
package navigation

import (
	"slices"

	"github.com/samdwyer/dungeoncrawl/internal/world"
)

// Projection is the wall-free line of tiles along the player's travel axis.
// Sequence is ordered in the direction of travel. IndexLookup[i] is the
// coordinate along the axis (y for N/S, x for E/W) of Sequence[i], and
// PlayerIndex is the player's own entry, or -1 if the player is not on the line.
type Projection struct {
	Sequence    []world.TileType `json:"sequence"`
	IndexLookup []int            `json:"indexLookup"`
	PlayerIndex int              `json:"playerIndex"`
}

// Project derives the projection for a position and facing. rows is the
// row-major grid and cols its column-major view. The result depends only on
// the arguments.
func Project(rows [][]world.TileType, cols world.ColumnGrid, pos world.Position, facing world.Facing) Projection {
	var line []world.TileType
	var own int

	if facing.IsVertical() {
		if pos.X < 0 || pos.X >= len(cols) {
			return Projection{PlayerIndex: -1}
		}
		line, own = cols[pos.X], pos.Y
	} else {
		if pos.Y < 0 || pos.Y >= len(rows) {
			return Projection{PlayerIndex: -1}
		}
		line, own = rows[pos.Y], pos.X
	}

	p := Projection{
		Sequence:    make([]world.TileType, 0, len(line)),
		IndexLookup: make([]int, 0, len(line)),
	}
	for i, t := range line {
		if t == world.Wall {
			continue
		}
		p.Sequence = append(p.Sequence, t)
		p.IndexLookup = append(p.IndexLookup, i)
	}

	if facing == world.North || facing == world.West {
		slices.Reverse(p.Sequence)
		slices.Reverse(p.IndexLookup)
	}

	p.PlayerIndex = slices.Index(p.IndexLookup, own)
	return p
}

// Ahead returns the tiles from the player's own tile forward up to the first
// wall. Entries of Sequence beyond a gap in IndexLookup are behind a wall
// and are not visible.
func (p Projection) Ahead() []world.TileType {
	n := p.aheadLen()
	if n == 0 {
		return nil
	}
	return p.Sequence[p.PlayerIndex : p.PlayerIndex+n]
}

func (p Projection) aheadLen() int {
	if p.PlayerIndex < 0 || p.PlayerIndex >= len(p.Sequence) {
		return 0
	}
	n := 1
	for i := p.PlayerIndex + 1; i < len(p.IndexLookup); i++ {
		step := p.IndexLookup[i] - p.IndexLookup[i-1]
		if step != 1 && step != -1 {
			break
		}
		n++
	}
	return n
}

// Positions maps each IndexLookup entry back to an absolute coordinate on
// the line through pos along facing's axis.
func (p Projection) Positions(pos world.Position, facing world.Facing) []world.Position {
	out := make([]world.Position, len(p.IndexLookup))
	for i, c := range p.IndexLookup {
		if facing.IsVertical() {
			out[i] = world.Position{X: pos.X, Y: c}
		} else {
			out[i] = world.Position{X: c, Y: pos.Y}
		}
	}
	return out
}

// Equal reports whether two projections are identical.
func (p Projection) Equal(o Projection) bool {
	return p.PlayerIndex == o.PlayerIndex &&
		slices.Equal(p.Sequence, o.Sequence) &&
		slices.Equal(p.IndexLookup, o.IndexLookup)
}
