// Package symlink resolves paths whose components may be symbolic links,
// including link kinds the platform's own path APIs do not follow (WSL links
// stored as reparse points on Windows).
//
// Resolution walks the path one component at a time and memoizes every
// partial resolution, so repeated prefixes cost one filesystem query and
// cyclic link graphs terminate on a cache hit instead of looping.
package symlink

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// maxDepth bounds nested resolutions for chains that never repeat a path.
const maxDepth = 255

// ErrTooManyLinks is returned when a link chain exceeds maxDepth nested resolutions.
var ErrTooManyLinks = errors.New("too many levels of symbolic links")

// ResolveError reports a filesystem query that failed during resolution.
type ResolveError struct {
	Path string
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// Resolver dereferences paths and caches partial resolutions. A Resolver is
// not safe for concurrent use; create one per operation.
type Resolver struct {
	dir string

	// cache maps an accumulated path to its fully resolved form. Non-link
	// components map to themselves.
	cache map[string]string
	// pending holds links currently being resolved further up the stack.
	pending map[string]struct{}

	readLink func(path string) (target string, isLink bool, err error)
}

// NewResolver returns a Resolver that anchors relative paths at dir. An empty
// dir means the process working directory.
func NewResolver(dir string) *Resolver {
	return &Resolver{
		dir:      dir,
		cache:    make(map[string]string),
		pending:  make(map[string]struct{}),
		readLink: readLink,
	}
}

// Dereference returns path with every symbolic-link component replaced by
// its target. The result is absolute but otherwise not canonicalized.
func (r *Resolver) Dereference(path string) (string, error) {
	return r.resolve(path, 0)
}

// Resolve dereferences path when follow is set and returns it unchanged otherwise.
func (r *Resolver) Resolve(path string, follow bool) (string, error) {
	if !follow {
		return path, nil
	}
	return r.Dereference(path)
}

func (r *Resolver) resolve(path string, depth int) (string, error) {
	if depth > maxDepth {
		return "", &ResolveError{Path: path, Err: ErrTooManyLinks}
	}

	acc, comps, err := r.start(path)
	if err != nil {
		return "", err
	}

	for _, c := range comps {
		switch c {
		case ".":
			continue
		case "..":
			acc = popComponent(acc)
			continue
		}

		acc = pushComponent(acc, c)
		if v, ok := r.cache[acc]; ok {
			acc = v
			continue
		}
		if _, busy := r.pending[acc]; busy {
			// Cycle: leave the link unresolved.
			continue
		}

		target, isLink, err := r.readLink(acc)
		if err != nil {
			return "", &ResolveError{Path: acc, Err: err}
		}
		if !isLink {
			r.cache[acc] = acc
			continue
		}

		next := target
		if !filepath.IsAbs(target) {
			next = pushComponent(popComponent(acc), target)
		}

		r.pending[acc] = struct{}{}
		resolved, err := r.resolve(next, depth+1)
		delete(r.pending, acc)
		if err != nil {
			return "", err
		}
		r.cache[acc] = resolved
		acc = resolved
	}

	return acc, nil
}

// start splits path into the absolute prefix the walk begins from and the
// components still to be visited.
func (r *Resolver) start(path string) (string, []string, error) {
	vol := filepath.VolumeName(path)
	rest := path[len(vol):]
	comps := strings.FieldsFunc(rest, isSeparator)

	if filepath.IsAbs(path) {
		return vol + string(filepath.Separator), comps, nil
	}

	dir := r.dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", nil, &ResolveError{Path: path, Err: err}
		}
		dir = wd
	}
	if !filepath.IsAbs(dir) {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", nil, &ResolveError{Path: dir, Err: err}
		}
		dir = abs
	}
	return dir, comps, nil
}

func isSeparator(r rune) bool {
	return r < 0x80 && os.IsPathSeparator(uint8(r))
}

// pushComponent appends elem to base without cleaning, so ".." inside elem
// survives for the next walk.
func pushComponent(base, elem string) string {
	if base == "" {
		return elem
	}
	if os.IsPathSeparator(base[len(base)-1]) {
		return base + elem
	}
	return base + string(filepath.Separator) + elem
}

// popComponent removes the last component of p. The root is never popped.
func popComponent(p string) string {
	vol := filepath.VolumeName(p)
	rest := p[len(vol):]
	i := strings.LastIndexFunc(rest, isSeparator)
	switch {
	case i < 0:
		return vol
	case i == 0:
		return vol + rest[:1]
	default:
		return vol + rest[:i]
	}
}

// IsLink reports whether path is a symbolic link or a foreign link.
func IsLink(path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return true, nil
	}
	_, ok, err := readForeignLink(path, info)
	return ok, err
}

// readLink returns the target of path when it is a link of any kind.
func readLink(path string) (string, bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return "", false, err
	}

	target, ok, err := readForeignLink(path, info)
	if err != nil || ok {
		return target, ok, err
	}

	if info.Mode()&os.ModeSymlink == 0 {
		return "", false, nil
	}
	target, err = os.Readlink(path)
	if err != nil {
		return "", false, err
	}
	return target, true, nil
}
