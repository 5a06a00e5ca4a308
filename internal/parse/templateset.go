package parse

import (
	"os"
	"sync"

	"github.com/tigerx8/gotpl/internal/compileerr"
	"github.com/tigerx8/gotpl/internal/resolve"
)

// TemplateSet loads and parses templates on demand, memoizing by
// absolute path, and shares one Resolver across every load so partial
// resolution ordering (spec.md §9: sibling-first, then search path) is
// consistent for every caller — internal/analyze and internal/generate
// both walk partials through the same TemplateSet instance.
type TemplateSet struct {
	Resolver *resolve.Resolver

	mu    sync.Mutex
	trees map[string]*Tree
}

// NewTemplateSet builds a TemplateSet over r.
func NewTemplateSet(r *resolve.Resolver) *TemplateSet {
	return &TemplateSet{Resolver: r, trees: make(map[string]*Tree)}
}

// Root parses the top-level template at absPath (no partial resolution
// performed on it — it already IS an absolute path) and seeds a fresh
// resolve.Chain for the caller to extend while walking partials.
func (ts *TemplateSet) Root(absPath string) (*Tree, *resolve.Chain, error) {
	tree, err := ts.load(absPath)
	if err != nil {
		return nil, nil, err
	}
	return tree, resolve.NewChain(absPath), nil
}

// Partial resolves name relative to includingPath, checks it against
// chain for a cycle, loads+parses it if needed, and returns the parsed
// tree, its absolute path, and the chain extended with that path.
func (ts *TemplateSet) Partial(includingPath, name string, chain *resolve.Chain) (*Tree, string, *resolve.Chain, error) {
	abs, err := ts.Resolver.Resolve(includingPath, name)
	if err != nil {
		return nil, "", nil, err
	}
	nextChain, err := chain.Push(abs)
	if err != nil {
		return nil, "", nil, err
	}
	tree, err := ts.load(abs)
	if err != nil {
		return nil, "", nil, err
	}
	return tree, abs, nextChain, nil
}

func (ts *TemplateSet) load(absPath string) (*Tree, error) {
	ts.mu.Lock()
	if tree, ok := ts.trees[absPath]; ok {
		ts.mu.Unlock()
		return tree, nil
	}
	ts.mu.Unlock()

	src, err := os.ReadFile(absPath)
	if err != nil {
		return nil, &compileerr.IOError{Path: absPath, Err: err}
	}
	tree, err := Parse(absPath, string(src))
	if err != nil {
		return nil, err
	}

	ts.mu.Lock()
	ts.trees[absPath] = tree
	ts.mu.Unlock()
	return tree, nil
}
