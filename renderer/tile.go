package renderer

// A half-open pixel region rendered by a single worker.
type tile struct {
	x0, y0 int
	x1, y1 int
}

// splitTiles covers a width x height frame with non-overlapping tiles
// in row-major order. Tiles at the right and bottom edges shrink to
// fit.
func splitTiles(width, height, size int) []tile {
	cols := (width + size - 1) / size
	rows := (height + size - 1) / size

	tiles := make([]tile, 0, cols*rows)
	for y := 0; y < height; y += size {
		y1 := y + size
		if y1 > height {
			y1 = height
		}
		for x := 0; x < width; x += size {
			x1 := x + size
			if x1 > width {
				x1 = width
			}
			tiles = append(tiles, tile{x0: x, y0: y, x1: x1, y1: y1})
		}
	}
	return tiles
}
