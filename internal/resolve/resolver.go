// Package resolve implements the compiler's template-path resolution:
// given an including file and a partial name, find the file on disk it
// refers to. The resolution order is sibling-first, then search-path,
// and is load-bearing (see DESIGN.md) — do not reorder it.
package resolve

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tigerx8/gotpl/internal/compileerr"
)

// FS is the minimal filesystem surface the resolver needs. The default
// Resolver talks to the OS directly; HybridFS (hybridfs.go) lets it prefer a
// disk override during development and fall back to an embedded tree in
// production, the way the teacher's engine.HybridFS does for BladeEngine.
type FS interface {
	Stat(name string) (os.FileInfo, error)
}

type osFS struct{}

func (osFS) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }

// Resolver resolves partial template names against an including file and
// a declared list of search directories.
type Resolver struct {
	Dirs []string
	FS   FS // nil means the real OS filesystem
}

// New builds a Resolver over the given search directories, defaulting to
// ["templates"] when none are given (gotpl.toml's documented default).
func New(dirs []string) *Resolver {
	if len(dirs) == 0 {
		dirs = []string{"templates"}
	}
	return &Resolver{Dirs: dirs, FS: osFS{}}
}

func (r *Resolver) fs() FS {
	if r.FS == nil {
		return osFS{}
	}
	return r.FS
}

func (r *Resolver) exists(path string) bool {
	_, err := r.fs().Stat(path)
	return err == nil
}

// Resolve implements spec.md §4.1's algorithm exactly: try
// dirname(includingPath)/partialName first; if partialName has no
// extension, inherit the including file's extension before checking
// existence; otherwise walk Dirs in declared order and return the first
// hit, as an absolute path. includingPath == "" skips the sibling check
// (used for top-level template lookups that have no including file).
func (r *Resolver) Resolve(includingPath, partialName string) (string, error) {
	name := partialName
	if filepath.Ext(name) == "" && includingPath != "" {
		name += filepath.Ext(includingPath)
	}

	if includingPath != "" {
		candidate := filepath.Join(filepath.Dir(includingPath), name)
		if r.exists(candidate) {
			return filepath.Abs(candidate)
		}
	}

	for _, dir := range r.Dirs {
		candidate := filepath.Join(dir, name)
		if r.exists(candidate) {
			return filepath.Abs(candidate)
		}
	}

	// When an extension was inherited above and nothing matched, retry
	// both locations with the raw, extensionless partial name.
	if name != partialName {
		if includingPath != "" {
			candidate := filepath.Join(filepath.Dir(includingPath), partialName)
			if r.exists(candidate) {
				return filepath.Abs(candidate)
			}
		}
		for _, dir := range r.Dirs {
			candidate := filepath.Join(dir, partialName)
			if r.exists(candidate) {
				return filepath.Abs(candidate)
			}
		}
	}

	return "", &compileerr.TemplateNotFoundError{Name: partialName, Dirs: r.Dirs}
}

// Chain tracks the path of includes currently being resolved so cycles
// can be detected the way spec.md §3 requires ("the resolver maintains
// the set of already-visited paths"). A Chain is cheap to copy-extend so
// sibling partial trees can branch without interfering with each other.
type Chain struct {
	visited map[string]bool
	order   []string
}

// NewChain starts an empty resolution chain rooted at the top-level
// template path.
func NewChain(rootAbsPath string) *Chain {
	c := &Chain{visited: map[string]bool{rootAbsPath: true}, order: []string{rootAbsPath}}
	return c
}

// ErrCycle reports a partial-inclusion cycle, naming the path that would
// be visited a second time and the chain that led to it.
type ErrCycle struct {
	Path  string
	Chain []string
}

func (e *ErrCycle) Error() string {
	return "gotpl: circular partial inclusion: " + strings.Join(append(append([]string{}, e.Chain...), e.Path), " -> ")
}

// Push returns a new Chain extended with absPath, or an ErrCycle if
// absPath is already on the chain.
func (c *Chain) Push(absPath string) (*Chain, error) {
	if c.visited[absPath] {
		return nil, &ErrCycle{Path: absPath, Chain: append([]string{}, c.order...)}
	}
	visited := make(map[string]bool, len(c.visited)+1)
	for k := range c.visited {
		visited[k] = true
	}
	visited[absPath] = true
	return &Chain{visited: visited, order: append(append([]string{}, c.order...), absPath)}, nil
}
