package render

const (
	// PlaneMin is the lower bound of the sampled window on both axes.
	PlaneMin = -2.0
	// PlaneSize is the side length of the sampled window.
	PlaneSize = 4.0
)

// Plane maps pixels of a Width x Height image onto [-2, 2) x [-2, 2).
type Plane struct {
	// StepX and StepY are the real and imaginary size of each pixel.
	StepX, StepY float64
}

func NewPlane(width, height int) Plane {
	p := Plane{}
	if width > 0 {
		p.StepX = PlaneSize / float64(width)
	}
	if height > 0 {
		p.StepY = PlaneSize / float64(height)
	}
	return p
}

// Point is the complex value of pixel column x, row y.
// Row 0 has the smallest imaginary part.
func (p Plane) Point(x, y int) complex128 {
	return complex(float64(x)*p.StepX+PlaneMin, float64(y)*p.StepY+PlaneMin)
}
