package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/esimov/carve"
	"github.com/esimov/carve/utils"
	"github.com/spf13/cobra"
)

const helpBanner = `
┌─┐┌─┐┬─┐┬  ┬┌─┐
│  ├─┤├┬┘└┐┌┘├┤
└─┘┴ ┴┴└─ └┘ └─┘

Content aware image resize for plain text RGB images.
    Version: %s
`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// options holds the command line flags.
type options struct {
	source      string
	destination string
	configPath  string
	verbose     bool
	cfg         carve.Config
}

func newRootCmd() *cobra.Command {
	opts := options{cfg: carve.DefaultConfig()}

	cmd := &cobra.Command{
		Use:           "carve",
		Short:         "Content aware image resize",
		Long:          fmt.Sprintf(helpBanner, Version),
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if opts.verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(carve.WithLogger(cmd.Context(), carve.NewLogger(cmd.ErrOrStderr(), level)))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			err := run(cmd, &opts)
			if err != nil {
				carve.LoggerFromContext(cmd.Context()).Error(
					utils.DecorateText("error resizing the image", utils.ErrorMessage), "err", err)
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.source, "in", pipeName, "source image, directory or URL")
	f.StringVar(&opts.destination, "out", pipeName, "destination image or directory")
	f.StringVar(&opts.configPath, "config", "", "TOML file with preset options")
	f.IntVar(&opts.cfg.Width, "width", 0, "new width")
	f.IntVar(&opts.cfg.Height, "height", 0, "new height")
	f.BoolVar(&opts.cfg.Percentage, "perc", false, "reduce image by percentage")
	f.IntVar(&opts.cfg.Workers, "conc", opts.cfg.Workers, "number of workers used for the seam search and for directories")
	f.BoolVar(&opts.cfg.Fit, "fit", false, "downscale raster sources exceeding the maximum size")
	f.BoolVar(&opts.cfg.Debug, "debug", false, "write the seam map and the energy map next to the output")
	f.StringVar(&opts.cfg.SeamColor, "color", opts.cfg.SeamColor, "seam color used by the debug seam map")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")

	return cmd
}

// run merges the preset file with the explicitly set flags and starts the resize.
func run(cmd *cobra.Command, opts *options) error {
	cfg := opts.cfg
	if opts.configPath != "" {
		preset, err := carve.LoadConfig(opts.configPath)
		if err != nil {
			return err
		}
		cfg = mergeFlags(cmd, preset, opts.cfg)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	proc := cfg.Processor()
	return proc.Execute(cmd.Context(), &carve.Ops{
		Src:      opts.source,
		Dst:      opts.destination,
		PipeName: pipeName,
		Workers:  cfg.Workers,
		Stderr:   cmd.ErrOrStderr(),
	})
}

// mergeFlags overrides the preset values with the flags given on the command line.
func mergeFlags(cmd *cobra.Command, preset, flags carve.Config) carve.Config {
	changed := cmd.Flags().Changed
	if changed("width") {
		preset.Width = flags.Width
	}
	if changed("height") {
		preset.Height = flags.Height
	}
	if changed("perc") {
		preset.Percentage = flags.Percentage
	}
	if changed("conc") {
		preset.Workers = flags.Workers
	}
	if changed("fit") {
		preset.Fit = flags.Fit
	}
	if changed("debug") {
		preset.Debug = flags.Debug
	}
	if changed("color") {
		preset.SeamColor = flags.SeamColor
	}
	return preset
}
