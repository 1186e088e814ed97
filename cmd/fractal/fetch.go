package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/willbeason/escape-fractal/pkg/pgm"
	"github.com/willbeason/escape-fractal/pkg/render"
	"github.com/willbeason/escape-fractal/pkg/server"
)

func fetchCmd() *cobra.Command {
	var (
		url string
		out string
		req server.Request
	)

	cmd := &cobra.Command{
		Use:       "fetch {mandelbrot|julia}",
		Short:     "Render on a remote server over a websocket and save the image",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{server.ModeMandelbrot, server.ModeJulia},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			req.Mode = args[0]
			if out == "" {
				out = req.Mode + ".pgm"
			}

			g, maxVal, err := server.Fetch(cmd.Context(), url, req)
			if err != nil {
				return fmt.Errorf("fetching %s: %w", req.Mode, err)
			}

			err = pgm.WriteFile(out, g, maxVal)
			if err != nil {
				return err
			}

			newLogger(cmd).Printf("wrote %s %dx%d to %q", req.Mode, g.Width, g.Height, out)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&url, "url", "ws://localhost:8080/ws", "websocket endpoint of a fractal server")
	flags.StringVarP(&out, "out", "o", "", "output path (default <mode>.pgm)")
	flags.IntVar(&req.Width, "width", 0, "image width in pixels")
	flags.IntVar(&req.Height, "height", 0, "image height in pixels")
	flags.IntVar(&req.MaxIter, "max-iter", render.DefaultMaxIter, "iteration cap")
	flags.Float64Var(&req.Re, "julia-re", real(render.DefaultJuliaC), "real part of the Julia constant")
	flags.Float64Var(&req.Im, "julia-im", imag(render.DefaultJuliaC), "imaginary part of the Julia constant")

	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("height")

	return cmd
}
