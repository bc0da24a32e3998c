package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// tmpSuffix marks in-flight copies. A rename moves them into place.
const tmpSuffix = ".burrow-tmp"

// globalTmpRegistry tracks in-flight temporary files so a signal handler
// can remove them if the process exits mid-copy.
var globalTmpRegistry = &tmpRegistry{}

type tmpRegistry struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

func (r *tmpRegistry) add(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.paths == nil {
		r.paths = make(map[string]struct{})
	}
	r.paths[path] = struct{}{}
}

func (r *tmpRegistry) remove(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.paths, path)
}

func (r *tmpRegistry) drain() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	paths := make([]string, 0, len(r.paths))
	for p := range r.paths {
		paths = append(paths, p)
	}
	r.paths = nil
	return paths
}

// CleanupTmpFiles removes every registered temporary file.
func CleanupTmpFiles() {
	for _, p := range globalTmpRegistry.drain() {
		_ = os.Remove(p)
	}
}

// tmpPathFor returns a hidden sibling of dest to copy into.
func tmpPathFor(dest string) string {
	name := fmt.Sprintf(".%s.%s%s", filepath.Base(dest), uuid.New().String()[:8], tmpSuffix)
	return filepath.Join(filepath.Dir(dest), name)
}
