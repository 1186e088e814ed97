package transforms

// Julia starts each orbit at the pixel and holds the constant C fixed.
type Julia struct {
	C complex128
}

func (j Julia) Seed(p complex128) (complex128, complex128) {
	return p, j.C
}

