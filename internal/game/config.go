package game

// Config holds game configuration options.
type Config struct {
	// StartMap is the registry id loaded at startup. An empty value starts
	// on a generated level.
	StartMap string `yaml:"start_map"`

	// Seed for random number generation. Used for reproducible dungeon generation.
	// A seed of 0 means a random seed will be generated.
	Seed int64 `yaml:"seed"`

	// Theme selects the UI theme by id.
	Theme string `yaml:"theme"`
}

// DefaultConfig starts on the built-in loop with the classic theme.
func DefaultConfig() Config {
	return Config{
		StartMap: "loop",
		Theme:    "classic",
	}
}
