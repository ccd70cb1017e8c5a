// Package gamedata provides embedded game data and utilities for loading it.
package gamedata

import "embed"

// dataFS embeds the built-in maps, the transition table and UI themes at
// build time.
//
//go:embed maps/*.json transitions.yaml themes.json
var dataFS embed.FS
