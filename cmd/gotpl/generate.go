package main

import (
	"runtime"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tigerx8/gotpl/internal/config"
	"github.com/tigerx8/gotpl/internal/printer"
	"github.com/tigerx8/gotpl/internal/resolve"
	"github.com/tigerx8/gotpl/internal/scanner"
)

var (
	generateDir     string
	generateConfig  string
	generateAdapter string
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "generate Go rendering methods for every annotated type in a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd)
		},
	}
	cmd.Flags().StringVar(&generateDir, "dir", ".", "directory to scan for gotpl-annotated struct declarations")
	cmd.Flags().StringVar(&generateConfig, "config", "gotpl.toml", "path to the project's gotpl.toml")
	cmd.Flags().StringVar(&generateAdapter, "adapter", "", "note which response adapter this project targets (\"fiber\"); informational only, since internal/adapter/fiberadapter is a static package rather than per-run generated code")
	return cmd
}

// runGenerate scans generateDir for annotated types and generates each
// one's companion file, parallelized across targets the way spec.md §5
// permits for a whole-module run: each target gets its own
// Resolver-backed TemplateSet and Generator instance (no shared mutable
// state across goroutines), while a bounded errgroup caps concurrency at
// GOMAXPROCS so a monorepo-sized generate run scales without spawning a
// goroutine per file.
func runGenerate(cmd *cobra.Command) error {
	log := newLogger()

	cfg, err := config.Load(generateConfig)
	if err != nil {
		return err
	}

	anns, err := scanner.Scan(generateDir)
	if err != nil {
		return err
	}
	if len(anns) == 0 {
		log.Warn().Str("dir", generateDir).Msg("no gotpl-annotated types found")
		return nil
	}

	// -adapter doesn't change what gets generated: internal/adapter/fiberadapter
	// is a plain importable package (TemplateViews/RenderWithCtx), not text
	// emitted per run. The flag exists so a project's go:generate line
	// documents its target adapter and gets a warning on a typo.
	if generateAdapter != "" && generateAdapter != "fiber" {
		log.Warn().Str("adapter", generateAdapter).Msg("unrecognized adapter; only \"fiber\" is wired")
	}

	runID := uuid.NewString()
	resolver := resolve.New(cfg.Main.Dir)
	pr := printer.New(cmd.OutOrStdout())

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, ann := range anns {
		ann := ann
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := generateOne(log, pr, resolver, runID, ann, true)
			return err
		})
	}
	return g.Wait()
}
