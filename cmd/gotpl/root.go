package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var verbose bool

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gotpl",
		Short:         "gotpl generates Go rendering methods from annotated templates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging and print=-style AST/code dumps")
	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// newLogger builds a console-pretty zerolog.Logger, the structured
// upgrade SPEC_FULL.md calls for over the teacher's plain log.Printf,
// sized for a short-lived CLI process rather than a long-running
// service (no file rotation, no sampling, just a chainable console
// writer to stderr).
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
