// Package pgm reads and writes plain (P2) grayscale rasters.
package pgm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/willbeason/escape-fractal/pkg/render"
)

// Magic is the marker on the first line of a plain PGM.
const Magic = "P2"

// ContentType is the media type served for encoded images.
const ContentType = "image/x-portable-graymap"

var ErrFormat = errors.New("pgm: invalid format")

// Encode writes g with maximum gray value maxVal.
//
// The header is the magic line, "width height", then maxVal. Each grid row is
// one line of space-separated values.
func Encode(w io.Writer, g *render.Grid, maxVal int) error {
	bw := bufio.NewWriter(w)

	_, err := fmt.Fprintf(bw, "%s\n%d %d\n%d\n", Magic, g.Width, g.Height, maxVal)
	if err != nil {
		return err
	}

	line := make([]byte, 0, g.Width*4)
	for y := 0; y < g.Height; y++ {
		line = line[:0]
		for x, v := range g.Row(y) {
			if x > 0 {
				line = append(line, ' ')
			}
			line = strconv.AppendInt(line, int64(v), 10)
		}
		line = append(line, '\n')

		if _, err = bw.Write(line); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// WriteFile encodes g to a new file at path, replacing any existing file.
func WriteFile(path string, g *render.Grid, maxVal int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %q: %w", path, err)
	}

	err = Encode(f, g, maxVal)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %q: %w", path, err)
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("closing %q: %w", path, err)
	}

	return nil
}

// maxLine bounds a single line of input; one grid row is one line.
const maxLine = 64 << 20

// Decode parses a plain PGM, returning the grid and its maximum gray value.
// Comments starting with '#' are skipped.
//
// Headers describing more than maxPixels pixels are rejected before anything
// is allocated. A non-positive maxPixels only rejects sizes that overflow int.
func Decode(r io.Reader, maxPixels int) (*render.Grid, int, error) {
	s := bufio.NewScanner(r)
	s.Buffer(nil, maxLine)
	var words []string

	next := func() (string, bool) {
		for len(words) == 0 {
			if !s.Scan() {
				return "", false
			}
			line := s.Text()
			if i := strings.IndexByte(line, '#'); i >= 0 {
				line = line[:i]
			}
			words = strings.Fields(line)
		}
		word := words[0]
		words = words[1:]
		return word, true
	}

	magic, ok := next()
	if !ok || magic != Magic {
		return nil, 0, fmt.Errorf("%w: missing %s marker", ErrFormat, Magic)
	}

	var header [3]int
	for i, name := range []string{"width", "height", "max value"} {
		word, ok := next()
		if !ok {
			return nil, 0, fmt.Errorf("%w: missing %s", ErrFormat, name)
		}
		n, err := strconv.Atoi(word)
		if err != nil || n < 0 {
			return nil, 0, fmt.Errorf("%w: bad %s %q", ErrFormat, name, word)
		}
		header[i] = n
	}
	width, height, maxVal := header[0], header[1], header[2]

	if width != 0 && height > math.MaxInt/width {
		return nil, 0, fmt.Errorf("%w: size %dx%d overflows", ErrFormat, width, height)
	}
	if maxPixels > 0 && width*height > maxPixels {
		return nil, 0, fmt.Errorf("%w: size %dx%d exceeds %d pixels", ErrFormat, width, height, maxPixels)
	}

	g := render.NewGrid(width, height)
	for i := range g.Pix {
		word, ok := next()
		if !ok {
			return nil, 0, fmt.Errorf("%w: got %d of %d values", ErrFormat, i, len(g.Pix))
		}
		v, err := strconv.Atoi(word)
		if err != nil || v < 0 || v > maxVal {
			return nil, 0, fmt.Errorf("%w: bad value %q at %d", ErrFormat, word, i)
		}
		g.Pix[i] = v
	}

	if err := s.Err(); err != nil {
		return nil, 0, err
	}

	return g, maxVal, nil
}
