package resolve

import (
	"io/fs"
	"os"
)

// HybridFS stats name on disk first (as given), then falls back to an
// embedded fs.FS, looking name up there with baseDir stripped from its
// front. It lets a Resolver prefer on-disk template edits during
// `gotpl watch` while still resolving against an embed.FS snapshot when
// running against a built binary with no template directory on disk.
//
// Adapted from the teacher's engine.HybridFS (disk-first, embedded
// fallback), repurposed from "open a template for runtime execution" to
// "stat a candidate path during compile-time resolution".
type HybridFS struct {
	baseDir  string
	embedded fs.FS
}

// NewHybridFS builds a HybridFS rooted at baseDir. A nil embedded FS
// makes it behave exactly like a disk-only filesystem.
func NewHybridFS(baseDir string, embedded fs.FS) *HybridFS {
	return &HybridFS{baseDir: baseDir, embedded: embedded}
}

// Stat implements FS.
func (h *HybridFS) Stat(name string) (os.FileInfo, error) {
	if info, err := os.Stat(name); err == nil {
		return info, nil
	}
	if h.embedded == nil {
		return nil, fs.ErrNotExist
	}
	rel := name
	if len(rel) >= len(h.baseDir) && rel[:len(h.baseDir)] == h.baseDir {
		rel = rel[len(h.baseDir):]
		for len(rel) > 0 && (rel[0] == '/' || rel[0] == os.PathSeparator) {
			rel = rel[1:]
		}
	}
	return fs.Stat(h.embedded, rel)
}
