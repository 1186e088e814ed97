package server

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/willbeason/escape-fractal/pkg/pgm"
	"github.com/willbeason/escape-fractal/pkg/render"
)

const (
	ModeMandelbrot = "mandelbrot"
	ModeJulia      = "julia"
)

var ErrInvalidRequest = errors.New("invalid render request")

// Request describes one render. Re and Im are the Julia constant and are
// ignored for the Mandelbrot set.
type Request struct {
	Mode    string  `json:"mode"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	MaxIter int     `json:"maxIter"`
	Re      float64 `json:"re"`
	Im      float64 `json:"im"`
}

// NewRequest returns a request for mode with the default iteration cap and
// Julia constant.
func NewRequest(mode string, width, height int) Request {
	return Request{
		Mode:    mode,
		Width:   width,
		Height:  height,
		MaxIter: render.DefaultMaxIter,
		Re:      real(render.DefaultJuliaC),
		Im:      imag(render.DefaultJuliaC),
	}
}

// Validate rejects unknown modes, non-positive sizes, images above maxPixels,
// and iteration caps above maxIter. Non-positive limits are not enforced.
func (r Request) Validate(maxPixels, maxIter int) error {
	switch r.Mode {
	case ModeMandelbrot, ModeJulia:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, r.Mode)
	}

	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidRequest, r.Width, r.Height)
	}
	if r.MaxIter <= 0 {
		return fmt.Errorf("%w: maxIter %d", ErrInvalidRequest, r.MaxIter)
	}
	if maxIter > 0 && r.MaxIter > maxIter {
		return fmt.Errorf("%w: maxIter %d exceeds %d", ErrInvalidRequest, r.MaxIter, maxIter)
	}
	if math.IsNaN(r.Re) || math.IsInf(r.Re, 0) || math.IsNaN(r.Im) || math.IsInf(r.Im, 0) {
		return fmt.Errorf("%w: constant %v+%vi is not finite", ErrInvalidRequest, r.Re, r.Im)
	}
	if maxPixels > 0 && r.Width > maxPixels/r.Height {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidRequest, r.Width, r.Height, maxPixels)
	}

	return nil
}

// EncodedSize is an upper bound on the size of the encoded image: every value
// takes at most as many digits as MaxIter plus a separator.
func (r Request) EncodedSize() int {
	digits := len(strconv.Itoa(r.MaxIter))
	header := len(pgm.Magic) + len(strconv.Itoa(r.Width)) + len(strconv.Itoa(r.Height)) + digits + 4
	return r.Width*r.Height*(digits+1) + header
}

func (r Request) Render() *render.Grid {
	if r.Mode == ModeJulia {
		return render.Julia(r.Width, r.Height, r.MaxIter, complex(r.Re, r.Im))
	}
	return render.Mandelbrot(r.Width, r.Height, r.MaxIter)
}

// parseQuery fills a request from URL query values, keeping defaults for
// anything absent.
func parseQuery(mode string, q url.Values) (Request, error) {
	req := NewRequest(mode, 0, 0)

	ints := []struct {
		key string
		dst *int
	}{
		{key: "width", dst: &req.Width},
		{key: "height", dst: &req.Height},
		{key: "maxIter", dst: &req.MaxIter},
	}
	for _, f := range ints {
		if !q.Has(f.key) {
			continue
		}
		n, err := strconv.Atoi(q.Get(f.key))
		if err != nil {
			return Request{}, fmt.Errorf("%w: %s=%q", ErrInvalidRequest, f.key, q.Get(f.key))
		}
		*f.dst = n
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{key: "re", dst: &req.Re},
		{key: "im", dst: &req.Im},
	}
	for _, f := range floats {
		if !q.Has(f.key) {
			continue
		}
		v, err := strconv.ParseFloat(q.Get(f.key), 64)
		if err != nil {
			return Request{}, fmt.Errorf("%w: %s=%q", ErrInvalidRequest, f.key, q.Get(f.key))
		}
		*f.dst = v
	}

	return req, nil
}
