package world

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samdwyer/dungeoncrawl/internal/logger"
	"github.com/samdwyer/dungeoncrawl/internal/telemetry"
)

// maxBranchDepth caps branch recursion. Deeper branches are dropped and the
// map simply ends up smaller.
const maxBranchDepth = 4

// GenerationStats summarizes a generated map.
type GenerationStats struct {
	Walkable   int
	Turns      int
	ThreeWays  int
	FourWays   int
	Doors      int
	Stairs     int
	DeadEnds   int // walkable tiles with a single walkable neighbor
	Branches   int
	LoopJoins  int
	LoopsAdded int
	Pruned     int
	Degraded   int // branches or placements cut short by limits
	Score      float64
	Difficulty Difficulty
}

// Generate builds a dungeon level from options and a seed. The same options
// and seed always produce the same map. The only errors are invalid options;
// when internal limits are hit the generator returns a simpler map instead.
func Generate(ctx context.Context, opts Options, seed int64) (*MapConfig, error) {
	tracer := telemetry.Tracer("world")
	_, span := tracer.Start(ctx, "dungeon.generate")
	defer span.End()

	startTime := time.Now()

	cfg, stats, err := generate(opts, seed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Record telemetry
	span.SetAttributes(
		attribute.String("dungeon.id", cfg.ID),
		attribute.Int64("dungeon.seed", seed),
		attribute.Int("dungeon.width", cfg.Width),
		attribute.Int("dungeon.height", cfg.Height),
		attribute.Int("dungeon.walkable", stats.Walkable),
		attribute.Int("dungeon.junctions", stats.ThreeWays+stats.FourWays),
		attribute.Int("dungeon.degraded", stats.Degraded),
		attribute.String("dungeon.difficulty", string(stats.Difficulty)),
		attribute.Int64("dungeon.generation_ms", time.Since(startTime).Milliseconds()),
	)

	logger.Debug("dungeon generated",
		"id", cfg.ID,
		"seed", seed,
		"size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"walkable", stats.Walkable,
		"branches", stats.Branches,
		"degraded", stats.Degraded,
		"difficulty", stats.Difficulty,
	)

	return cfg, nil
}

// generate is Generate without tracing, also returning statistics.
func generate(opts Options, seed int64) (*MapConfig, GenerationStats, error) {
	opts, err := opts.normalized()
	if err != nil {
		return nil, GenerationStats{}, err
	}

	g := newGenerator(opts, seed)
	g.placeStart()
	g.carvePrimary()
	g.ensureMinimumPath()
	g.addBranches()
	g.ensureLoops()
	g.limitDeadEnds()
	g.fixIntersections()
	g.placeStairs()
	g.placeDoors()
	g.markDeadEnds()
	g.fixCorners()

	stats := g.collectStats()
	cfg := &MapConfig{
		ID:             mapID(opts, seed),
		Name:           fmt.Sprintf("Generated %dx%d (seed %d)", opts.Width, opts.Height, seed),
		Width:          opts.Width,
		Height:         opts.Height,
		Tiles:          g.tiles,
		StartPosition:  g.start,
		StartDirection: g.startFacing(),
		Metadata: &Metadata{
			Difficulty: stats.Difficulty,
			Theme:      "generated",
			Author:     "dungeoncrawl generator",
			Version:    "1",
		},
	}
	return cfg, stats, nil
}

// mapID derives a stable id from the seed and options.
func mapID(opts Options, seed int64) string {
	name := fmt.Sprintf("%d|%+v", seed, opts)
	return "gen-" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// generator holds the scratch grid for one generation run.
type generator struct {
	opts  Options
	rng   *rand.Rand
	tiles [][]TileType
	start Position
	stats GenerationStats
}

// newGenerator creates a generator over a grid filled with walls.
func newGenerator(opts Options, seed int64) *generator {
	tiles := make([][]TileType, opts.Height)
	for y := range tiles {
		tiles[y] = make([]TileType, opts.Width)
		for x := range tiles[y] {
			tiles[y][x] = Wall
		}
	}

	return &generator{
		opts:  opts,
		rng:   newLCG(seed),
		tiles: tiles,
	}
}

func (g *generator) inBounds(p Position) bool {
	return p.X >= 0 && p.X < g.opts.Width && p.Y >= 0 && p.Y < g.opts.Height
}

func (g *generator) walkable(p Position) bool {
	return g.inBounds(p) && g.tiles[p.Y][p.X].IsWalkable()
}

func (g *generator) set(p Position, t TileType) {
	g.tiles[p.Y][p.X] = t
}

// promote raises a carved tile to a more connected shape. It never lowers one.
func (g *generator) promote(p Position, t TileType) {
	if cur := g.tiles[p.Y][p.X]; cur.IsWalkable() && !cur.IsSpecial() && t > cur {
		g.set(p, t)
	}
}

// eachCell visits every cell in row-major order.
func (g *generator) eachCell(fn func(p Position, t TileType)) {
	for y, row := range g.tiles {
		for x, t := range row {
			fn(Position{X: x, Y: y}, t)
		}
	}
}

func (g *generator) isCorner(p Position) bool {
	return (p.X == 0 || p.X == g.opts.Width-1) && (p.Y == 0 || p.Y == g.opts.Height-1)
}

// placeStart picks the start tile from the configured corner and carves it.
func (g *generator) placeStart() {
	w, h := g.opts.Width, g.opts.Height
	switch g.opts.StartCorner {
	case CornerNE:
		g.start = Position{X: w - 1, Y: 0}
	case CornerSW:
		g.start = Position{X: 0, Y: h - 1}
	case CornerSE:
		g.start = Position{X: w - 1, Y: h - 1}
	case CornerCenter:
		g.start = Position{X: w / 2, Y: h / 2}
	case CornerRandom:
		g.start = Position{X: g.rng.Intn(w), Y: g.rng.Intn(h)}
	default:
		g.start = Position{X: 0, Y: 0}
	}
	g.set(g.start, Corridor)
}

// initialHeading returns the direction the primary path leaves the start.
func (g *generator) initialHeading() Facing {
	if f, ok := g.opts.fixedFacing(); ok && g.inBounds(g.start.Step(f)) {
		return f
	}
	var dirs []Facing
	for _, f := range AllFacings() {
		if g.inBounds(g.start.Step(f)) {
			dirs = append(dirs, f)
		}
	}
	return dirs[g.rng.Intn(len(dirs))]
}

// startFacing resolves the map's start direction once the grid is final.
// A random start faces an open neighbor when there is one.
func (g *generator) startFacing() Facing {
	if f, ok := g.opts.fixedFacing(); ok {
		return f
	}
	open := walkableNeighbors(g.tiles, g.start)
	if len(open) == 0 {
		return AllFacings()[g.rng.Intn(4)]
	}
	return open[g.rng.Intn(len(open))]
}

// carvePrimary runs the main random walk from the start tile.
func (g *generator) carvePrimary() {
	length := max(g.opts.Width*g.opts.Height/2, MinDimension)
	g.carve(g.start, g.initialHeading(), length, 0)
}

// ensureMinimumPath guarantees at least MinDimension walkable tiles by
// carving a straight line through the start along the longer axis.
func (g *generator) ensureMinimumPath() {
	if g.countWalkable() >= MinDimension {
		return
	}
	g.stats.Degraded++
	if g.opts.Width >= g.opts.Height {
		for x := 0; x < g.opts.Width; x++ {
			if g.tiles[g.start.Y][x] == Wall {
				g.set(Position{X: x, Y: g.start.Y}, Corridor)
			}
		}
		return
	}
	for y := 0; y < g.opts.Height; y++ {
		if g.tiles[y][g.start.X] == Wall {
			g.set(Position{X: g.start.X, Y: y}, Corridor)
		}
	}
}

func (g *generator) countWalkable() int {
	n := 0
	g.eachCell(func(_ Position, t TileType) {
		if t.IsWalkable() {
			n++
		}
	})
	return n
}

// carveStatus classifies a candidate cell for the next carving step.
type carveStatus int

const (
	carveBlocked carveStatus = iota // outside the grid or already carved
	carveOpen                       // wall touching only the cell we came from
	carveJoin                       // wall that would connect to another corridor
)

func (g *generator) status(next, from Position) carveStatus {
	if !g.inBounds(next) || g.walkable(next) {
		return carveBlocked
	}
	for _, f := range AllFacings() {
		n := next.Step(f)
		if n != from && g.walkable(n) {
			return carveJoin
		}
	}
	return carveOpen
}

// carve walks from the walkable tile p heading dir for up to length steps.
// Once a run reaches MinPathLength it may turn; a turn may become a
// three-way with a side branch, and a three-way may upgrade to a four-way.
// The walk stops at the grid edge, when boxed in, or after joining another
// corridor (a loop, taken with LoopChance).
func (g *generator) carve(p Position, dir Facing, length, depth int) {
	run := 0
	for step := 0; step < length; step++ {
		if run >= g.opts.MinPathLength && g.rng.Float64() < g.opts.TurnDensity {
			left, right := dir.Perpendicular()
			turnTo, other := left, right
			if g.rng.Intn(2) == 1 {
				turnTo, other = right, left
			}
			if g.status(p.Step(turnTo), p) == carveOpen {
				kind := Turn
				if g.rng.Float64() < g.opts.ThreeWayDensity {
					kind = ThreeWay
					g.branch(p, other, length/2, depth)
					if g.rng.Float64() < g.opts.FourWayDensity {
						kind = FourWay
						g.branch(p, dir, length/2, depth)
					}
				}
				g.promote(p, kind)
				dir = turnTo
				run = 0
			}
		}

		next := p.Step(dir)
		st := g.status(next, p)
		if st == carveJoin && g.rng.Float64() < g.opts.LoopChance {
			g.set(next, Corridor)
			g.stats.LoopJoins++
			return
		}
		if st != carveOpen {
			alt, ok := g.detour(p, dir)
			if !ok {
				return
			}
			g.promote(p, Turn)
			dir = alt
			next = p.Step(dir)
			run = 0
		}

		g.set(next, Corridor)
		p = next
		run++
	}
}

// detour picks an open perpendicular direction when the way ahead is closed.
func (g *generator) detour(p Position, dir Facing) (Facing, bool) {
	left, right := dir.Perpendicular()
	options := []Facing{left, right}
	if g.rng.Intn(2) == 1 {
		options[0], options[1] = right, left
	}
	for _, f := range options {
		if g.status(p.Step(f), p) == carveOpen {
			return f, true
		}
	}
	return dir, false
}

// branch carves a side passage with BranchChance. Past maxBranchDepth the
// branch is dropped and counted as degraded.
func (g *generator) branch(from Position, dir Facing, length, depth int) {
	if g.rng.Float64() >= g.opts.BranchChance {
		return
	}
	if depth >= maxBranchDepth {
		g.stats.Degraded++
		return
	}
	if length < 2 {
		return
	}
	g.stats.Branches++
	g.carve(from, dir, length, depth+1)
}

// addBranches sweeps the carved corridors and turns and spawns short
// branches off them.
func (g *generator) addBranches() {
	var roots []Position
	g.eachCell(func(p Position, t TileType) {
		if t == Corridor || t == Turn {
			roots = append(roots, p)
		}
	})

	for _, p := range roots {
		if g.rng.Float64() >= g.opts.BranchChance {
			continue
		}
		var open []Facing
		for _, f := range AllFacings() {
			if g.status(p.Step(f), p) == carveOpen {
				open = append(open, f)
			}
		}
		if len(open) == 0 {
			continue
		}
		dir := open[g.rng.Intn(len(open))]
		length := g.opts.MinPathLength + 1 + g.rng.Intn(g.opts.MinPathLength+2)
		g.stats.Branches++
		g.promote(p, ThreeWay)
		g.carve(p, dir, length, 1)
	}
}

// hasLoop reports whether the walkable graph contains a cycle. The carved
// region is connected, so it is a tree exactly when edges == nodes-1.
func (g *generator) hasLoop() bool {
	nodes, edges := 0, 0
	g.eachCell(func(p Position, t TileType) {
		if !t.IsWalkable() {
			return
		}
		nodes++
		if g.walkable(p.Step(East)) {
			edges++
		}
		if g.walkable(p.Step(South)) {
			edges++
		}
	})
	return nodes > 0 && edges > nodes-1
}

// ensureLoops carves one wall cell that joins two distant parts of the
// corridor network when EnsureLoop is set and no loop exists yet. The wall
// with the longest detour between its walkable neighbors wins.
func (g *generator) ensureLoops() {
	if !g.opts.EnsureLoop || g.hasLoop() {
		return
	}

	var best Position
	bestGap := 0
	g.eachCell(func(p Position, t TileType) {
		if t != Wall {
			return
		}
		open := walkableNeighbors(g.tiles, p)
		if len(open) < 2 {
			return
		}
		dist := distances(g.tiles, p.Step(open[0]))
		for _, f := range open[1:] {
			if d, ok := dist[p.Step(f)]; ok && d > bestGap {
				best, bestGap = p, d
			}
		}
	})

	if bestGap == 0 {
		g.stats.Degraded++
		return
	}

	g.set(best, Corridor)
	for _, f := range walkableNeighbors(g.tiles, best) {
		g.promote(best.Step(f), ThreeWay)
	}
	g.stats.LoopsAdded++
}

// deadEndCells lists walkable tiles with exactly one walkable neighbor.
func (g *generator) deadEndCells() []Position {
	var ends []Position
	g.eachCell(func(p Position, t TileType) {
		if t.IsWalkable() && len(walkableNeighbors(g.tiles, p)) == 1 {
			ends = append(ends, p)
		}
	})
	return ends
}

// limitDeadEnds prunes spurs back to their junction until at most
// MaxDeadEnds dead ends remain. Spurs holding the start tile are kept.
func (g *generator) limitDeadEnds() {
	if g.opts.MaxDeadEnds < 0 {
		return
	}
	for guard := 0; guard < g.opts.Width*g.opts.Height; guard++ {
		ends := g.deadEndCells()
		if len(ends) <= g.opts.MaxDeadEnds {
			return
		}

		pruned := false
		for _, end := range ends {
			spur, ok := g.spur(end)
			if !ok {
				continue
			}
			for _, p := range spur {
				g.set(p, Wall)
			}
			g.stats.Pruned++
			pruned = true
			break
		}
		if !pruned {
			return
		}
	}
}

// spur follows the chain of two-neighbor tiles from a dead end up to the
// first junction. It fails if the chain reaches the start or another dead end.
func (g *generator) spur(end Position) ([]Position, bool) {
	if end == g.start {
		return nil, false
	}
	cells := []Position{end}
	prev := end
	cur := end.Step(walkableNeighbors(g.tiles, end)[0])
	for {
		if cur == g.start {
			return nil, false
		}
		open := walkableNeighbors(g.tiles, cur)
		switch {
		case len(open) >= 3:
			return cells, true
		case len(open) <= 1:
			return nil, false
		}
		cells = append(cells, cur)
		next := cur.Step(open[0])
		if next == prev {
			next = cur.Step(open[1])
		}
		prev, cur = cur, next
	}
}

// fixIntersections reclassifies every walkable tile from its neighbor count.
// This is the authoritative tile type, whatever the carving marked.
func (g *generator) fixIntersections() {
	g.eachCell(func(p Position, t TileType) {
		if t.IsWalkable() {
			g.set(p, ClassifyByNeighbors(g.tiles, p))
		}
	})
}

// stairCandidates returns tiles eligible for stairs, preferring tiles with
// at most two walkable neighbors.
func (g *generator) stairCandidates() []Position {
	var low, all []Position
	g.eachCell(func(p Position, t TileType) {
		if !t.IsWalkable() || t.IsSpecial() || p == g.start {
			return
		}
		all = append(all, p)
		if len(walkableNeighbors(g.tiles, p)) <= 2 {
			low = append(low, p)
		}
	})
	if len(low) >= 2 {
		return low
	}
	return all
}

// placeStairs places StairsCount up/down pairs. The down stair goes to the
// candidate farthest (Manhattan) from the up stair.
func (g *generator) placeStairs() {
	for i := 0; i < g.opts.StairsCount; i++ {
		candidates := g.stairCandidates()
		if len(candidates) < 2 {
			g.stats.Degraded++
			return
		}

		up := candidates[g.rng.Intn(len(candidates))]
		down, best := up, -1
		for _, c := range candidates {
			if d := c.Manhattan(up); c != up && d > best {
				down, best = c, d
			}
		}
		g.set(up, StairsUp)
		g.set(down, StairsDown)
	}
}

// placeDoors turns straight two-neighbor corridors into doors with DoorChance.
func (g *generator) placeDoors() {
	g.eachCell(func(p Position, t TileType) {
		if t == Corridor && p != g.start && g.rng.Float64() < g.opts.DoorChance {
			g.set(p, Door)
		}
	})
}

// markDeadEnds marks a fraction of true dead ends as DeadEnd.
func (g *generator) markDeadEnds() {
	for _, p := range g.deadEndCells() {
		if p == g.start || g.tiles[p.Y][p.X].IsSpecial() {
			continue
		}
		if g.rng.Float64() < g.opts.DeadEndChance {
			g.set(p, DeadEnd)
		}
	}
}

// fixCorners forces walkable outer corners to Turn. Stairs and other
// special tiles placed on a corner are kept.
func (g *generator) fixCorners() {
	w, h := g.opts.Width, g.opts.Height
	for _, p := range []Position{{0, 0}, {w - 1, 0}, {0, h - 1}, {w - 1, h - 1}} {
		if t := g.tiles[p.Y][p.X]; t.IsWalkable() && !t.IsSpecial() {
			g.set(p, Turn)
		}
	}
}

// collectStats counts the final tiles and scores difficulty.
func (g *generator) collectStats() GenerationStats {
	s := g.stats
	g.eachCell(func(p Position, t TileType) {
		if !t.IsWalkable() {
			return
		}
		s.Walkable++
		switch t {
		case Turn:
			s.Turns++
		case ThreeWay:
			s.ThreeWays++
		case FourWay:
			s.FourWays++
		case Door:
			s.Doors++
		case StairsUp, StairsDown:
			s.Stairs++
		}
		if len(walkableNeighbors(g.tiles, p)) == 1 {
			s.DeadEnds++
		}
	})
	s.Score = DifficultyScore(s, g.opts.Width*g.opts.Height)
	s.Difficulty = DifficultyFor(s.Score)
	return s
}

// DifficultyScore weights junctions, specials and dead ends by map area.
func DifficultyScore(s GenerationStats, area int) float64 {
	if area <= 0 {
		return 0
	}
	weighted := 2*float64(s.ThreeWays) + 3*float64(s.FourWays) +
		float64(s.Doors) + 2*float64(s.Stairs) + 1.5*float64(s.DeadEnds)
	return weighted / float64(area)
}

// DifficultyFor buckets a difficulty score.
func DifficultyFor(score float64) Difficulty {
	switch {
	case score < 0.08:
		return DifficultyEasy
	case score < 0.16:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}
