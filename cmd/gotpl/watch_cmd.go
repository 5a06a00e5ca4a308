package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tigerx8/gotpl/internal/config"
	"github.com/tigerx8/gotpl/internal/gencache"
	"github.com/tigerx8/gotpl/internal/printer"
	"github.com/tigerx8/gotpl/internal/resolve"
	"github.com/tigerx8/gotpl/internal/scanner"
	"github.com/tigerx8/gotpl/internal/watch"
)

var watchDir, watchConfig string

// templateExtensions is the set of source extensions a change to which
// should trigger regeneration; unrelated files under the watched
// directories (READMEs, fixtures) are ignored.
var templateExtensions = []string{".html", ".htm", ".xml", ".hbs", ".handlebars", ".mustache", ".tmpl", ".gotpl"}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "regenerate annotated types whenever their templates change",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd)
		},
	}
	cmd.Flags().StringVar(&watchDir, "dir", ".", "directory to scan for gotpl-annotated struct declarations")
	cmd.Flags().StringVar(&watchConfig, "config", "gotpl.toml", "path to the project's gotpl.toml")
	return cmd
}

// runWatch is the long-running single-worker analogue of spec.md §6's
// build-hook surface: rather than emitting rerun-if-changed lines for a
// build script to consume (that is EmitRerunDirectives's job, for
// one-shot tooling), it drives its own fsnotify loop and regenerates
// directly, the way the teacher's engine/watcher.go drove cache
// invalidation directly rather than delegating it to a caller.
func runWatch(cmd *cobra.Command) error {
	log := newLogger()

	cfg, err := config.Load(watchConfig)
	if err != nil {
		return err
	}
	resolver := resolve.New(cfg.Main.Dir)
	pr := printer.New(cmd.OutOrStdout())

	cache, err := gencache.New("")
	if err != nil {
		return err
	}

	regenerateAll := func() {
		anns, err := scanner.Scan(watchDir)
		if err != nil {
			log.Error().Err(err).Msg("scan failed")
			return
		}
		runID := uuid.NewString()
		for _, ann := range anns {
			regenerateIfChanged(log, pr, resolver, cache, runID, ann)
		}
	}

	regenerateAll()

	w, err := watch.New(cfg.Main.Dir, templateExtensions)
	if err != nil {
		return err
	}
	w.OnChange = func(path string) {
		log.Info().Str("path", path).Msg("template changed")
		regenerateAll()
	}
	w.OnError = func(err error) {
		log.Error().Err(err).Msg("watch error")
	}
	w.Start()
	defer w.Stop()

	log.Info().Strs("dirs", cfg.Main.Dir).Msg("watching for changes, press Ctrl-C to stop")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}

// regenerateIfChanged skips regeneration when ann's resolved source
// hashes to the same value gencache already has on file for it, so an
// unrelated sibling template's change doesn't cause every annotated
// type in the package to be rewritten on every tick.
func regenerateIfChanged(log zerolog.Logger, pr *printer.Printer, resolver *resolve.Resolver, cache *gencache.Cache, runID string, ann scanner.Annotation) {
	t, err := resolveTarget(resolver, ann)
	if err != nil {
		log.Error().Err(err).Str("type", ann.TypeName).Msg("resolve failed")
		return
	}
	src, readErr := os.ReadFile(t.rootPath)
	if t.cleanup != nil {
		t.cleanup()
	}
	if readErr != nil {
		log.Error().Err(readErr).Str("type", ann.TypeName).Msg("read failed")
		return
	}

	hash := gencache.Hash(src)
	if _, ok := cache.Lookup(ann.TypeName, hash); ok {
		return
	}

	generated, err := generateOne(log, pr, resolver, runID, ann, true)
	if err != nil {
		log.Error().Err(err).Str("type", ann.TypeName).Msg("generate failed")
		return
	}
	if err := cache.Store(ann.TypeName, hash, generated); err != nil {
		log.Error().Err(err).Str("type", ann.TypeName).Msg("cache store failed")
	}
}
