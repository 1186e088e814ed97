package transforms

// A Seeder decides where a pixel's orbit starts and which constant drives it.
//
// p is the pixel's point in the complex plane.
type Seeder interface {
	Seed(p complex128) (z0, c complex128)
}

// Quadratic is one step of the recurrence z <- z*z + C.
type Quadratic struct {
	C complex128
}

func (q Quadratic) Next(z complex128) complex128 {
	return z*z + q.C
}

var (
	_ Seeder = Mandelbrot{}
	_ Seeder = Julia{}
)
