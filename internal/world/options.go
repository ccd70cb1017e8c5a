package world

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidOptions is returned by Generate when options cannot produce a map.
var ErrInvalidOptions = errors.New("invalid generation options")

// StartCorner selects where the generator places the start tile.
type StartCorner string

const (
	CornerNW     StartCorner = "nw"
	CornerNE     StartCorner = "ne"
	CornerSW     StartCorner = "sw"
	CornerSE     StartCorner = "se"
	CornerCenter StartCorner = "center"
	CornerRandom StartCorner = "random"
)

// RandomDirection lets the generator pick the start facing.
const RandomDirection = "random"

const (
	// Default dungeon dimensions
	DefaultWidth  = 16
	DefaultHeight = 16
)

// Options tunes the dungeon generator. Probabilities are clamped to [0, 1].
type Options struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`

	// TurnDensity is the chance per step that a run long enough turns.
	TurnDensity float64 `yaml:"turn_density" json:"turnDensity"`
	// ThreeWayDensity is the chance a turn becomes a three-way junction.
	ThreeWayDensity float64 `yaml:"three_way_density" json:"threeWayDensity"`
	// FourWayDensity is the chance a three-way upgrades to a four-way.
	FourWayDensity float64 `yaml:"four_way_density" json:"fourWayDensity"`

	BranchChance  float64 `yaml:"branch_chance" json:"branchChance"`
	LoopChance    float64 `yaml:"loop_chance" json:"loopChance"`
	DoorChance    float64 `yaml:"door_chance" json:"doorChance"`
	DeadEndChance float64 `yaml:"dead_end_chance" json:"deadEndChance"`

	StairsCount int `yaml:"stairs_count" json:"stairsCount"`
	// MinPathLength is the corridor run length required before a turn.
	MinPathLength int `yaml:"min_path_length" json:"minPathLength"`
	// MaxDeadEnds caps structural dead ends; negative means unlimited.
	MaxDeadEnds int  `yaml:"max_dead_ends" json:"maxDeadEnds"`
	EnsureLoop  bool `yaml:"ensure_loop" json:"ensureLoop"`

	StartCorner StartCorner `yaml:"start_corner" json:"startCorner"`
	// StartDirection is "N", "E", "S", "W" or "random".
	StartDirection string `yaml:"start_direction" json:"startDirection"`
}

// DefaultOptions returns options that produce a medium 16x16 level.
func DefaultOptions() Options {
	return Options{
		Width:           DefaultWidth,
		Height:          DefaultHeight,
		TurnDensity:     0.3,
		ThreeWayDensity: 0.35,
		FourWayDensity:  0.2,
		BranchChance:    0.4,
		LoopChance:      0.15,
		DoorChance:      0.05,
		DeadEndChance:   0.5,
		StairsCount:     1,
		MinPathLength:   2,
		MaxDeadEnds:     8,
		EnsureLoop:      true,
		StartCorner:     CornerNW,
		StartDirection:  RandomDirection,
	}
}

// normalized clamps probabilities and fills zero values.
func (o Options) normalized() (Options, error) {
	if o.Width < MinDimension || o.Height < MinDimension {
		return o, fmt.Errorf("%w: grid %dx%d is smaller than %dx%d",
			ErrInvalidOptions, o.Width, o.Height, MinDimension, MinDimension)
	}
	if o.Width > MaxDimension || o.Height > MaxDimension {
		return o, fmt.Errorf("%w: grid %dx%d is larger than %dx%d",
			ErrInvalidOptions, o.Width, o.Height, MaxDimension, MaxDimension)
	}

	for _, p := range []*float64{
		&o.TurnDensity, &o.ThreeWayDensity, &o.FourWayDensity,
		&o.BranchChance, &o.LoopChance, &o.DoorChance, &o.DeadEndChance,
	} {
		*p = min(max(*p, 0), 1)
	}

	o.MinPathLength = max(o.MinPathLength, 1)
	o.StairsCount = max(o.StairsCount, 0)

	switch o.StartCorner {
	case CornerNW, CornerNE, CornerSW, CornerSE, CornerCenter, CornerRandom:
	case "":
		o.StartCorner = CornerNW
	default:
		return o, fmt.Errorf("%w: unknown start corner %q", ErrInvalidOptions, o.StartCorner)
	}

	o.StartDirection = strings.TrimSpace(o.StartDirection)
	if o.StartDirection == "" {
		o.StartDirection = RandomDirection
	}
	if !strings.EqualFold(o.StartDirection, RandomDirection) {
		if _, err := ParseFacing(o.StartDirection); err != nil {
			return o, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
		}
	}
	return o, nil
}

// fixedFacing returns the configured start facing, if one is set.
func (o Options) fixedFacing() (Facing, bool) {
	if strings.EqualFold(o.StartDirection, RandomDirection) {
		return North, false
	}
	f, err := ParseFacing(o.StartDirection)
	return f, err == nil
}
