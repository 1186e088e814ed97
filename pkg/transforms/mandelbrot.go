package transforms

// Mandelbrot starts every orbit at the origin and uses the pixel as the constant.
type Mandelbrot struct{}

func (Mandelbrot) Seed(p complex128) (complex128, complex128) {
	return 0, p
}
