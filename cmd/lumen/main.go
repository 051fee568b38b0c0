// lumen - forward scene renderer
// Render YAML scenes and glTF models in your terminal or to PNG files.
//
// Viewer controls:
//
//	Mouse drag  - Orbit the camera
//	Scroll      - Zoom in/out
//	W/A/S/D     - Orbit (arrow keys too)
//	+/-         - Zoom
//	M           - Cycle shading mode
//	1-4         - Flat, textured, multi-pass, single-pass
//	X           - Toggle wireframe
//	B           - Toggle bounding boxes
//	P           - Toggle shadow map tiles
//	G           - Toggle specular
//	R           - Reset view
//	?           - Toggle HUD overlay
//	Esc         - Quit
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/taigrr/lumen/pkg/render"
)

var version = "dev"

// options are the flags shared by every command.
type options struct {
	configPath string
	mode       string
	verbose    bool
	logFile    string
}

func main() {
	if err := fang.Execute(context.Background(), newRootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "lumen",
		Short:        "Forward scene renderer for the terminal",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			logger, err := newLogger(opts.verbose, opts.logFile)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			render.SetLogger(logger)
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = render.Logger().Sync()
		},
	}

	f := root.PersistentFlags()
	f.StringVarP(&opts.configPath, "config", "c", "", "renderer config file (TOML)")
	f.StringVar(&opts.mode, "mode", "", "shading mode: flat, textured, multipass or singlepass")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging, to stderr unless --log-file is set")
	f.StringVar(&opts.logFile, "log-file", "", "write logs to this file")

	root.AddCommand(newViewCmd(opts), newRenderCmd(opts))
	return root
}
