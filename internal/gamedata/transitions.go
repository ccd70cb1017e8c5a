package gamedata

import (
	"fmt"

	"github.com/samdwyer/dungeoncrawl/internal/world"
)

// AnyMap matches every map id in a transition's From field.
const AnyMap = "*"

// Transition says where a door or staircase on a map leads. Either To names
// a registry map or Generate asks for a freshly generated level.
type Transition struct {
	From     string `yaml:"from"`
	Tile     string `yaml:"tile"`
	To       string `yaml:"to"`
	Generate bool   `yaml:"generate"`
}

// TransitionTable resolves door and stair tiles to destinations. Rules for a
// specific map win over AnyMap rules.
type TransitionTable struct {
	rules map[string]map[world.TileType]Transition
}

type transitionFile struct {
	Transitions []Transition `yaml:"transitions"`
}

// NewTransitionTable checks and indexes transition rules.
func NewTransitionTable(rules []Transition) (*TransitionTable, error) {
	t := &TransitionTable{rules: make(map[string]map[world.TileType]Transition)}
	for i, r := range rules {
		tile, err := parseTransitionTile(r.Tile)
		if err != nil {
			return nil, fmt.Errorf("transition %d: %w", i, err)
		}
		if r.From == "" {
			return nil, fmt.Errorf("transition %d: missing from", i)
		}
		if (r.To == "") == !r.Generate {
			return nil, fmt.Errorf("transition %d: exactly one of to and generate must be set", i)
		}
		if t.rules[r.From] == nil {
			t.rules[r.From] = make(map[world.TileType]Transition)
		}
		t.rules[r.From][tile] = r
	}
	return t, nil
}

// LoadTransitionTable loads the embedded transitions.yaml.
func LoadTransitionTable() (*TransitionTable, error) {
	file, err := LoadYAML[transitionFile]("transitions.yaml")
	if err != nil {
		return nil, err
	}
	return NewTransitionTable(file.Transitions)
}

// MustLoadTransitionTable loads the table, panicking on error.
func MustLoadTransitionTable() *TransitionTable {
	table, err := LoadTransitionTable()
	if err != nil {
		panic(err)
	}
	return table
}

// Target returns the transition for a tile on a map.
func (t *TransitionTable) Target(mapID string, tile world.TileType) (Transition, bool) {
	if r, ok := t.rules[mapID][tile]; ok {
		return r, true
	}
	r, ok := t.rules[AnyMap][tile]
	return r, ok
}

// Count returns the number of indexed rules.
func (t *TransitionTable) Count() int {
	n := 0
	for _, byTile := range t.rules {
		n += len(byTile)
	}
	return n
}

func parseTransitionTile(name string) (world.TileType, error) {
	for _, tile := range []world.TileType{world.Door, world.StairsUp, world.StairsDown} {
		if tile.String() == name {
			return tile, nil
		}
	}
	return world.Wall, fmt.Errorf("tile %q is not a transition tile", name)
}
