// Package cli implements the rrsched command line.
package cli

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var flagLogLevel string

// NewRootCmd creates the root cobra command for the rrsched CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "rrsched",
		Short:        "Priority and round robin scheduler for task scenarios",
		Long:         "rrsched runs YAML task scenarios on a single logical CPU and reports every scheduling decision.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the scenario")

	root.AddCommand(
		newRunCmd(),
		newValidateCmd(),
	)

	return root
}

// newLogger builds a console logger. The flag wins over the scenario level.
func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if w == nil {
		w = os.Stderr
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05.000"}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
