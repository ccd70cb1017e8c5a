package world

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestDungeonReproducibility(t *testing.T) {
	ctx := context.Background()
	opts := DefaultOptions()

	d1, err := Generate(ctx, opts, 42)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	d2, err := Generate(ctx, opts, 42)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if d1.ID != d2.ID {
		t.Errorf("ID mismatch: %s != %s", d1.ID, d2.ID)
	}
	if d1.StartPosition != d2.StartPosition || d1.StartDirection != d2.StartDirection {
		t.Errorf("start mismatch: %s %s != %s %s",
			d1.StartPosition, d1.StartDirection, d2.StartPosition, d2.StartDirection)
	}
	for y := 0; y < d1.Height; y++ {
		for x := 0; x < d1.Width; x++ {
			if d1.Tiles[y][x] != d2.Tiles[y][x] {
				t.Errorf("Tile mismatch at (%d,%d): %v != %v", x, y, d1.Tiles[y][x], d2.Tiles[y][x])
			}
		}
	}
}

func TestDungeonDifferentSeeds(t *testing.T) {
	ctx := context.Background()
	opts := DefaultOptions()

	d1, _ := Generate(ctx, opts, 12345)
	d2, _ := Generate(ctx, opts, 54321)

	if d1.ID == d2.ID {
		t.Error("different seeds produced the same map id")
	}
	if d1.Format() == d2.Format() {
		t.Error("different seeds produced identical grids")
	}
}

func TestDungeonInvariants(t *testing.T) {
	ctx := context.Background()

	variants := map[string]Options{
		"default": DefaultOptions(),
		"small": func() Options {
			o := DefaultOptions()
			o.Width, o.Height = 8, 8
			return o
		}(),
		"wide": func() Options {
			o := DefaultOptions()
			o.Width, o.Height = 24, 6
			o.StartCorner = CornerCenter
			return o
		}(),
		"busy": func() Options {
			o := DefaultOptions()
			o.TurnDensity, o.ThreeWayDensity, o.FourWayDensity = 0.9, 0.9, 0.9
			o.DoorChance, o.MaxDeadEnds = 0.3, -1
			o.StartCorner = CornerRandom
			return o
		}(),
		"minimal": func() Options {
			o := DefaultOptions()
			o.Width, o.Height = 3, 3
			o.StartCorner = CornerSE
			return o
		}(),
	}

	for name, opts := range variants {
		t.Run(name, func(t *testing.T) {
			for seed := int64(0); seed < 25; seed++ {
				cfg, err := Generate(ctx, opts, seed)
				if err != nil {
					t.Fatalf("seed %d: Generate() error = %v", seed, err)
				}

				if r := Validate(cfg); !r.Valid {
					t.Fatalf("seed %d: generated map invalid: %v\n%s", seed, r.Errors, cfg.Format())
				}
				if lost := Unreachable(cfg); len(lost) > 0 {
					t.Fatalf("seed %d: unreachable tiles %v\n%s", seed, lost, cfg.Format())
				}
				if bad := Misclassified(cfg); len(bad) > 0 {
					t.Fatalf("seed %d: misclassified tiles %v\n%s", seed, bad, cfg.Format())
				}
				if !cfg.IsWalkable(cfg.StartPosition.X, cfg.StartPosition.Y) {
					t.Fatalf("seed %d: start %s not walkable", seed, cfg.StartPosition)
				}
				if n := len(cfg.WalkableNeighbors(cfg.StartPosition)); n == 0 {
					t.Fatalf("seed %d: start has no walkable neighbor", seed)
				}
			}
		})
	}
}

func TestDungeonStairs(t *testing.T) {
	ctx := context.Background()
	opts := DefaultOptions()
	opts.Width, opts.Height = 8, 8
	opts.StairsCount = 1

	for seed := int64(0); seed < 20; seed++ {
		cfg, err := Generate(ctx, opts, seed)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		if got := cfg.Count(StairsUp); got != 1 {
			t.Errorf("seed %d: %d up stairs, want 1", seed, got)
		}
		if got := cfg.Count(StairsDown); got != 1 {
			t.Errorf("seed %d: %d down stairs, want 1", seed, got)
		}
		if tile, _ := cfg.TileAt(cfg.StartPosition.X, cfg.StartPosition.Y); tile.IsTransition() {
			t.Errorf("seed %d: start tile is %s", seed, tile)
		}
	}
}

func TestDungeonNoStairs(t *testing.T) {
	opts := DefaultOptions()
	opts.StairsCount = 0
	cfg, err := Generate(context.Background(), opts, 9)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if cfg.Count(StairsUp)+cfg.Count(StairsDown) != 0 {
		t.Errorf("stairs placed with StairsCount 0:\n%s", cfg.Format())
	}
}

func TestDungeonFixedStartDirection(t *testing.T) {
	opts := DefaultOptions()
	opts.StartDirection = "south"
	for seed := int64(0); seed < 5; seed++ {
		cfg, err := Generate(context.Background(), opts, seed)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if cfg.StartDirection != South {
			t.Errorf("seed %d: start direction %s, want S", seed, cfg.StartDirection)
		}
	}
}

func TestDungeonDeadEndLimit(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxDeadEnds = 2
	opts.BranchChance = 0.9
	for seed := int64(0); seed < 10; seed++ {
		_, stats, err := generate(opts, seed)
		if err != nil {
			t.Fatalf("generate() error = %v", err)
		}
		// The start tile may hold one extra unprunable end.
		if stats.DeadEnds > opts.MaxDeadEnds+1 {
			t.Errorf("seed %d: %d dead ends, limit %d", seed, stats.DeadEnds, opts.MaxDeadEnds)
		}
	}
}

func TestDungeonInvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"too narrow", func(o *Options) { o.Width = 2 }},
		{"too short", func(o *Options) { o.Height = 0 }},
		{"too wide", func(o *Options) { o.Width = MaxDimension + 1 }},
		{"too tall", func(o *Options) { o.Height = 3000 }},
		{"bad corner", func(o *Options) { o.StartCorner = "middle" }},
		{"bad direction", func(o *Options) { o.StartDirection = "up" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			_, err := Generate(context.Background(), opts, 1)
			if !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("Generate() error = %v, want ErrInvalidOptions", err)
			}
		})
	}
}

func TestDungeonOptionsClamped(t *testing.T) {
	opts := DefaultOptions()
	opts.TurnDensity = 4
	opts.DoorChance = -1
	opts.MinPathLength = 0
	cfg, err := Generate(context.Background(), opts, 3)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if cfg.Count(Door) != 0 {
		t.Error("negative DoorChance should place no doors")
	}
}

func TestDungeonMetadata(t *testing.T) {
	cfg, err := Generate(context.Background(), DefaultOptions(), 77)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.HasPrefix(cfg.ID, "gen-") {
		t.Errorf("ID = %q, want gen- prefix", cfg.ID)
	}
	if cfg.Metadata == nil {
		t.Fatal("Metadata is nil")
	}
	switch cfg.Metadata.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		t.Errorf("Difficulty = %q", cfg.Metadata.Difficulty)
	}
}

func TestDifficultyFor(t *testing.T) {
	tests := []struct {
		score float64
		want  Difficulty
	}{
		{0, DifficultyEasy},
		{0.079, DifficultyEasy},
		{0.08, DifficultyMedium},
		{0.159, DifficultyMedium},
		{0.16, DifficultyHard},
		{1, DifficultyHard},
	}
	for _, tt := range tests {
		if got := DifficultyFor(tt.score); got != tt.want {
			t.Errorf("DifficultyFor(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}

	s := GenerationStats{ThreeWays: 1, FourWays: 1, Doors: 1, Stairs: 2, DeadEnds: 2}
	// 2 + 3 + 1 + 4 + 3 = 13
	if got := DifficultyScore(s, 100); got != 0.13 {
		t.Errorf("DifficultyScore() = %v, want 0.13", got)
	}
	if got := DifficultyScore(s, 0); got != 0 {
		t.Errorf("DifficultyScore() with zero area = %v, want 0", got)
	}
}

func TestLCGDeterministic(t *testing.T) {
	a, b := newLCG(5), newLCG(5)
	for i := 0; i < 100; i++ {
		if x, y := a.Int63(), b.Int63(); x != y {
			t.Fatalf("draw %d differs: %d != %d", i, x, y)
		}
	}
	if newLCG(5).Int63() == newLCG(6).Int63() {
		t.Error("different seeds produced the same first draw")
	}
}
