package escape

import "github.com/willbeason/escape-fractal/pkg/transforms"

const (
	// Radius2 is the squared escape radius. Orbits with |z|^2 above this are
	// guaranteed to diverge.
	Radius2 = 4.0
)

// Time iterates z <- z*z + c from z0 and returns how many steps were taken
// before |z| exceeded 2, capped at maxIter.
//
// Points already outside the radius return 0. Points that never escape return
// maxIter. A non-positive maxIter returns 0.
func Time(z0, c complex128, maxIter int) int {
	z := z0
	q := transforms.Quadratic{C: c}

	n := 0
	for n < maxIter && abs2(z) <= Radius2 {
		z = q.Next(z)
		n++
	}

	return n
}

// abs2 is |z|^2, avoiding the square root in cmplx.Abs.
func abs2(z complex128) float64 {
	return real(z)*real(z) + imag(z)*imag(z)
}
