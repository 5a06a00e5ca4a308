package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tigerx8/gotpl/internal/config"
	"github.com/tigerx8/gotpl/internal/printer"
	"github.com/tigerx8/gotpl/internal/resolve"
	"github.com/tigerx8/gotpl/internal/scanner"
)

var checkDir, checkConfig string

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "validate every annotated type generates without writing output",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd)
		},
	}
	cmd.Flags().StringVar(&checkDir, "dir", ".", "directory to scan for gotpl-annotated struct declarations")
	cmd.Flags().StringVar(&checkConfig, "config", "gotpl.toml", "path to the project's gotpl.toml")
	return cmd
}

// runCheck mirrors the teacher's ValidateAllTemplates: walk every
// annotated type, attempt generation, and keep going past individual
// failures so one bad template doesn't hide every other problem in the
// same run — unlike `gotpl generate`, which aborts on the first error
// since it is about to write files.
func runCheck(cmd *cobra.Command) error {
	log := newLogger()

	cfg, err := config.Load(checkConfig)
	if err != nil {
		return err
	}
	anns, err := scanner.Scan(checkDir)
	if err != nil {
		return err
	}

	resolver := resolve.New(cfg.Main.Dir)
	pr := printer.New(cmd.OutOrStdout())

	var failures []string
	for _, ann := range anns {
		fmt.Fprintf(cmd.OutOrStdout(), "checking %s (%s)\n", ann.TypeName, ann.Path)
		if _, err := generateOne(log, pr, resolver, "check", ann, false); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", ann.TypeName, err))
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("gotpl check: %d template(s) failed:\n%s", len(failures), strings.Join(failures, "\n"))
	}
	log.Info().Int("checked", len(anns)).Msg("all templates generate cleanly")
	return nil
}
