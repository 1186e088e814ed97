package render

// Grid holds one intensity per pixel, row-major in a single buffer.
type Grid struct {
	Width, Height int

	Pix []int
}

// NewGrid allocates a zeroed grid. Non-positive dimensions give an empty grid.
func NewGrid(width, height int) *Grid {
	if width <= 0 || height <= 0 {
		return &Grid{}
	}

	return &Grid{
		Width:  width,
		Height: height,
		Pix:    make([]int, width*height),
	}
}

func (g *Grid) offset(x, y int) int {
	if x < 0 || x >= g.Width || y < 0 || y >= g.Height {
		panic("render: pixel out of bounds")
	}
	return x + y*g.Width
}

func (g *Grid) At(x, y int) int {
	return g.Pix[g.offset(x, y)]
}

func (g *Grid) Set(x, y, v int) {
	g.Pix[g.offset(x, y)] = v
}

// Row returns row y without copying.
func (g *Grid) Row(y int) []int {
	start := g.offset(0, y)
	return g.Pix[start : start+g.Width]
}

// Equal reports whether both grids have the same shape and values.
func (g *Grid) Equal(other *Grid) bool {
	if g.Width != other.Width || g.Height != other.Height || len(g.Pix) != len(other.Pix) {
		return false
	}
	for i, v := range g.Pix {
		if other.Pix[i] != v {
			return false
		}
	}
	return true
}
