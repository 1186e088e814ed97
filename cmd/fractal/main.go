package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/willbeason/escape-fractal/pkg/pgm"
	"github.com/willbeason/escape-fractal/pkg/render"
)

type options struct {
	width, height int
	maxIter       int

	juliaRe, juliaIm float64

	mandelbrotOut string
	juliaOut      string
}

var errInvalidOption = errors.New("invalid option")

func mainCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "fractal",
		Short: "Render the Mandelbrot set and a Julia set as plain PGM images",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCmd(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.width, "width", 0, "image width in pixels; prompted for if not set")
	flags.IntVar(&opts.height, "height", 0, "image height in pixels; prompted for if not set")
	flags.IntVar(&opts.maxIter, "max-iter", render.DefaultMaxIter, "iteration cap, also the maximum gray value")
	flags.Float64Var(&opts.juliaRe, "julia-re", real(render.DefaultJuliaC), "real part of the Julia constant")
	flags.Float64Var(&opts.juliaIm, "julia-im", imag(render.DefaultJuliaC), "imaginary part of the Julia constant")
	flags.StringVar(&opts.mandelbrotOut, "mandelbrot-out", "mandelbrot.pgm", "Mandelbrot output path")
	flags.StringVar(&opts.juliaOut, "julia-out", "julia.pgm", "Julia output path")

	cmd.AddCommand(serveCmd(), fetchCmd())

	return cmd
}

func runCmd(cmd *cobra.Command, opts *options) error {
	// At this point usage information has already been printed if obviously incorrect.
	cmd.SilenceUsage = true

	if opts.maxIter <= 0 {
		return fmt.Errorf("%w: --max-iter must be positive, got %d", errInvalidOption, opts.maxIter)
	}

	in := bufio.NewReader(cmd.InOrStdin())

	width, err := dimension(in, cmd.OutOrStdout(), "width", opts.width)
	if err != nil {
		return err
	}
	height, err := dimension(in, cmd.OutOrStdout(), "height", opts.height)
	if err != nil {
		return err
	}

	logger := newLogger(cmd)
	c := complex(opts.juliaRe, opts.juliaIm)

	renders := []struct {
		name   string
		path   string
		render func() *render.Grid
	}{
		{
			name:   "mandelbrot",
			path:   opts.mandelbrotOut,
			render: func() *render.Grid { return render.Mandelbrot(width, height, opts.maxIter) },
		},
		{
			name:   "julia",
			path:   opts.juliaOut,
			render: func() *render.Grid { return render.Julia(width, height, opts.maxIter, c) },
		},
	}

	// A failed write only skips that image.
	for _, r := range renders {
		err = pgm.WriteFile(r.path, r.render(), opts.maxIter)
		if err != nil {
			logger.Printf("skipping %s: %v", r.name, err)
			continue
		}
		logger.Printf("wrote %s %dx%d to %q", r.name, width, height, r.path)
	}

	return nil
}

func newLogger(cmd *cobra.Command) *log.Logger {
	return log.New(cmd.ErrOrStderr(), "", log.LstdFlags)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := mainCmd().ExecuteContext(ctx)
	if err != nil {
		// At this point the error has already been printed; no need to print again.
		stop()
		os.Exit(1)
	}
}
