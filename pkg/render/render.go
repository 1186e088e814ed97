package render

import (
	"runtime"
	"sync"

	"github.com/willbeason/escape-fractal/pkg/escape"
	"github.com/willbeason/escape-fractal/pkg/transforms"
)

const (
	// DefaultMaxIter is the iteration cap used when none is given.
	DefaultMaxIter = 400

	// DefaultJuliaC is the Julia constant used when none is given.
	DefaultJuliaC = complex(-0.8, 0.156)
)

// Mandelbrot renders the Mandelbrot set over the fixed plane window.
//
// Each value is maxIter minus the escape time, so points inside the set are 0.
func Mandelbrot(width, height, maxIter int) *Grid {
	return Render(width, height, maxIter, transforms.Mandelbrot{})
}

// Julia renders the filled Julia set for constant c over the fixed plane window.
func Julia(width, height, maxIter int, c complex128) *Grid {
	return Render(width, height, maxIter, transforms.Julia{C: c})
}

// Render evaluates every pixel with the orbit seeded by seeder.
//
// Rows are split across runtime.NumCPU() goroutines. Each goroutine only writes
// the rows it receives, so the result does not depend on scheduling.
// A negative maxIter is treated as 0, giving an all-zero grid.
func Render(width, height, maxIter int, seeder transforms.Seeder) *Grid {
	maxIter = max(maxIter, 0)

	g := NewGrid(width, height)
	plane := NewPlane(g.Width, g.Height)

	yChannel := make(chan int)

	go func() {
		for y := 0; y < g.Height; y++ {
			yChannel <- y
		}
		close(yChannel)
	}()

	parallel := min(runtime.NumCPU(), g.Height)

	wg := sync.WaitGroup{}
	wg.Add(parallel)
	for i := 0; i < parallel; i++ {
		go func() {
			defer wg.Done()

			for y := range yChannel {
				row := g.Row(y)
				for x := range row {
					z0, c := seeder.Seed(plane.Point(x, y))
					row[x] = maxIter - escape.Time(z0, c, maxIter)
				}
			}
		}()
	}

	wg.Wait()

	return g
}
