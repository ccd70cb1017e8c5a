package gamedata

import (
	"fmt"
	"path"
	"sort"

	"github.com/samdwyer/dungeoncrawl/internal/world"
)

const mapsDir = "maps"

// LoadMaps parses every built-in map, ordered by file name. Maps are not
// validated here; the registry does that on load.
func LoadMaps() ([]*world.MapConfig, error) {
	entries, err := dataFS.ReadDir(mapsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded maps: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	maps := make([]*world.MapConfig, 0, len(names))
	for _, name := range names {
		content, err := dataFS.ReadFile(path.Join(mapsDir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded map %s: %w", name, err)
		}
		cfg, err := world.ParseMapConfig(content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		maps = append(maps, cfg)
	}
	return maps, nil
}

// MustLoadMaps loads the built-in maps, panicking on error.
func MustLoadMaps() []*world.MapConfig {
	maps, err := LoadMaps()
	if err != nil {
		panic(err)
	}
	return maps
}
