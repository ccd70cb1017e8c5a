package world

// ColumnGrid is the column-major view of a tile grid: ColumnGrid[x][y].
// North/south traversal walks a column of this view the same way east/west
// traversal walks a row of the row-major grid.
type ColumnGrid [][]TileType

// Transpose builds the column-major view of a row-major grid. Short rows are
// padded with Wall so every column has one entry per row.
func Transpose(rows [][]TileType) ColumnGrid {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	cols := make(ColumnGrid, width)
	for x := range cols {
		cols[x] = make([]TileType, len(rows))
		for y, row := range rows {
			if x < len(row) {
				cols[x][y] = row[x]
			} else {
				cols[x][y] = Wall
			}
		}
	}
	return cols
}

// Agrees reports whether both views hold the same tile at every coordinate.
func (c ColumnGrid) Agrees(rows [][]TileType) bool {
	for y, row := range rows {
		for x, t := range row {
			if x >= len(c) || y >= len(c[x]) || c[x][y] != t {
				return false
			}
		}
	}
	for x := range c {
		if len(c[x]) != len(rows) {
			return false
		}
	}
	return true
}
