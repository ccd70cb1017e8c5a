package world

import "github.com/zyedidia/generic/mapset"

// ClassifyByNeighbors returns the tile type a walkable cell must have given
// its walkable neighbors: 0 or 1 neighbor is a Turn (closed end), 2 opposite
// neighbors a Corridor, 2 perpendicular neighbors a Turn, 3 a ThreeWay and 4
// a FourWay. Non-walkable cells classify as Wall.
func ClassifyByNeighbors(tiles [][]TileType, p Position) TileType {
	if !walkableAt(tiles, p) {
		return Wall
	}
	open := walkableNeighbors(tiles, p)
	switch len(open) {
	case 4:
		return FourWay
	case 3:
		return ThreeWay
	case 2:
		if open[0].Opposite() == open[1] {
			return Corridor
		}
		return Turn
	default:
		return Turn
	}
}

// Misclassified returns every walkable, non-special tile whose type
// disagrees with ClassifyByNeighbors.
func Misclassified(m *MapConfig) []Position {
	var bad []Position
	for y, row := range m.Tiles {
		for x, t := range row {
			if !t.IsWalkable() || t.IsSpecial() {
				continue
			}
			p := Position{X: x, Y: y}
			if ClassifyByNeighbors(m.Tiles, p) != t {
				bad = append(bad, p)
			}
		}
	}
	return bad
}

// Reachable returns the set of walkable cells reachable from start by
// 4-directional walkable steps.
func Reachable(tiles [][]TileType, start Position) mapset.Set[Position] {
	visited := mapset.New[Position]()
	if !walkableAt(tiles, start) {
		return visited
	}

	queue := []Position{start}
	visited.Put(start)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, f := range AllFacings() {
			next := current.Step(f)
			if walkableAt(tiles, next) && !visited.Has(next) {
				visited.Put(next)
				queue = append(queue, next)
			}
		}
	}
	return visited
}

// Unreachable returns the walkable tiles that cannot be reached from the
// start position, in row-major order. An empty result means the map satisfies
// the connectivity invariant.
func Unreachable(m *MapConfig) []Position {
	reached := Reachable(m.Tiles, m.StartPosition)
	var lost []Position
	for y, row := range m.Tiles {
		for x, t := range row {
			p := Position{X: x, Y: y}
			if t.IsWalkable() && !reached.Has(p) {
				lost = append(lost, p)
			}
		}
	}
	return lost
}

// distances returns BFS step counts from start to every reachable walkable cell.
func distances(tiles [][]TileType, start Position) map[Position]int {
	dist := map[Position]int{start: 0}
	queue := []Position{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, f := range AllFacings() {
			next := current.Step(f)
			if !walkableAt(tiles, next) {
				continue
			}
			if _, seen := dist[next]; !seen {
				dist[next] = dist[current] + 1
				queue = append(queue, next)
			}
		}
	}
	return dist
}
