// Package watch implements the build-hook surface (spec.md §6) that, in
// a build-script world, would emit `cargo:rerun-if-changed` lines: here
// it both emits the nearest Go equivalent for one-shot build tooling and
// drives a long-running fsnotify watch loop for `gotpl watch`, adapted
// from the teacher's engine/watcher.go (which watched template files to
// invalidate a runtime render cache; this package watches them to
// trigger regeneration instead, since there is no runtime cache here).
package watch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// EmitRerunDirectives walks each directory in dirs and writes one
// `//go:generate_rerun <path>` marker line per file found, to w. This is
// the build-hook surface spec.md §6 names — the nearest Go analogue of
// Cargo's `cargo:rerun-if-changed=<path>` protocol, since Go has no
// build-script phase of its own to hook into.
func EmitRerunDirectives(w io.Writer, dirs []string) error {
	for _, dir := range dirs {
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			_, err = fmt.Fprintf(w, "//go:generate_rerun %s\n", path)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Watcher watches a set of template directories and invokes OnChange
// once per changed file whose extension is in Extensions.
type Watcher struct {
	watcher    *fsnotify.Watcher
	dirs       []string
	extensions map[string]bool

	// OnChange is invoked from the watch goroutine with the changed
	// file's path. It is never called concurrently with itself.
	OnChange func(path string)
	// OnError is invoked for watcher-internal errors (e.g. a removed
	// directory the OS can no longer stat). Optional.
	OnError func(err error)
}

// New creates a Watcher rooted at dirs, recursively registering every
// subdirectory the way engine/watcher.go's addWatchRecursive does.
// extensions restricts which changed files trigger OnChange; a nil or
// empty slice means every file qualifies.
func New(dirs []string, extensions []string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		watcher:    fsw,
		dirs:       dirs,
		extensions: make(map[string]bool, len(extensions)),
	}
	for _, ext := range extensions {
		w.extensions[ext] = true
	}
	for _, dir := range dirs {
		if err := w.addRecursive(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) isWatchedFile(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	return w.extensions[filepath.Ext(path)]
}

// Start launches the watch loop in a background goroutine. Call Stop to
// terminate it.
func (w *Watcher) Start() {
	go func() {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !w.isWatchedFile(event.Name) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if w.OnChange != nil {
					w.OnChange(event.Name)
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				if w.OnError != nil {
					w.OnError(err)
				}
			}
		}
	}()
}

// Stop closes the underlying fsnotify watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}
