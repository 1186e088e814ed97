package main

import (
	"github.com/spf13/cobra"

	"github.com/willbeason/escape-fractal/pkg/server"
)

func serveCmd() *cobra.Command {
	var (
		addr       string
		maxPixels  int
		maxIterCap int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve renders over HTTP and websockets",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true

			s := server.New(maxPixels, maxIterCap, newLogger(cmd))
			return s.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().IntVar(&maxPixels, "max-pixels", server.DefaultMaxPixels, "largest image a client may request")
	cmd.Flags().IntVar(&maxIterCap, "max-iter-cap", server.DefaultMaxIterCap, "largest iteration cap a client may request")

	return cmd
}
