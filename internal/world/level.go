package world

// Level pairs a validated MapConfig with its column-major view. Both are
// read-only; a changed grid means a new Level.
type Level struct {
	Config  *MapConfig
	Columns ColumnGrid
}

// NewLevel validates cfg and derives its column view. Structurally invalid
// maps return a *StructuralError.
func NewLevel(cfg *MapConfig) (*Level, ValidationResult, error) {
	result := Validate(cfg)
	if err := result.Err(cfg.ID); err != nil {
		return nil, result, err
	}
	return &Level{Config: cfg, Columns: Transpose(cfg.Tiles)}, result, nil
}

// Rows returns the row-major grid.
func (l *Level) Rows() [][]TileType {
	return l.Config.Tiles
}

// TileAt returns the tile at (x, y), or (Wall, false) outside the grid.
func (l *Level) TileAt(x, y int) (TileType, bool) {
	return l.Config.TileAt(x, y)
}

// WithTile returns a new Level with one cell replaced and the column view
// rebuilt. The receiver is left untouched.
func (l *Level) WithTile(p Position, t TileType) *Level {
	cfg := l.Config.Clone()
	if cfg.InBounds(p.X, p.Y) {
		cfg.Tiles[p.Y][p.X] = t
	}
	return &Level{Config: cfg, Columns: Transpose(cfg.Tiles)}
}
