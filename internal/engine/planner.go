package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bamsammich/burrow/internal/event"
	"github.com/bamsammich/burrow/internal/interrupt"
	"github.com/bamsammich/burrow/internal/platform"
	"github.com/bamsammich/burrow/internal/symlink"
)

// planner walks the source arguments and builds a Plan. It only reads the
// filesystem.
type planner struct {
	cfg      Config
	check    interrupt.Checker
	resolver *symlink.Resolver
	log      *slog.Logger

	dest       string // dereferenced destination
	destExists bool
	destIsDir  bool
	// newRoot is set when the destination does not exist and the only
	// source is a directory: the destination becomes that tree's root.
	newRoot bool

	plan    *Plan
	visited map[platform.ID]struct{}
}

// walk carries the per-argument context of a traversal.
type walk struct {
	origin string // command-line token
	parent string // base that destination paths are relative to
	root   string // dereferenced top-level path, base for filter rules
}

func newPlanner(cfg Config, check interrupt.Checker) *planner {
	return &planner{
		cfg:      cfg,
		check:    check,
		resolver: symlink.NewResolver(cfg.Dir),
		log:      cfg.Logger,
		plan:     newPlan(),
		visited:  make(map[platform.ID]struct{}),
	}
}

// build returns the plan, whether planning ran to completion, and any
// planning error. An interrupted build is not an error.
func (p *planner) build() (*Plan, bool, error) {
	switch {
	case len(p.cfg.Sources) == 0 && p.cfg.Dest == "":
		return p.plan, false, &PlanError{Reason: "missing source and destination"}
	case p.cfg.Dest == "":
		return p.plan, false, &PlanError{Reason: "missing destination"}
	case len(p.cfg.Sources) == 0:
		return p.plan, false, &PlanError{Reason: "missing source"}
	}

	if err := p.resolveDest(); err != nil {
		return p.plan, false, err
	}
	p.cfg.Events.Emit(event.Event{Type: event.ScanStarted, Path: p.dest})

	for _, src := range p.cfg.Sources {
		path, err := p.resolver.Dereference(p.absolute(src))
		if err != nil {
			return p.plan, false, p.fail(src, src, "cannot stat", err)
		}
		w := walk{origin: src, parent: parentOf(path), root: path}
		if p.newRoot {
			w.parent = path
		}
		p.log.Debug("collect", "src", src, "resolved", path)

		ok, err := p.visit(w, path, true)
		if err != nil {
			return p.plan, false, err
		}
		if !ok {
			return p.plan, false, nil
		}
	}

	// Replaced items were counted twice while scanning.
	p.cfg.Stats.SetTotals(int64(p.plan.Count(Copy)), p.plan.TotalSize())
	p.cfg.Events.Emit(event.Event{
		Type:      event.ScanComplete,
		Total:     int64(p.plan.Len()),
		TotalSize: p.plan.TotalSize(),
	})
	return p.plan, true, nil
}

// resolveDest dereferences the destination. A destination that does not
// exist yet is resolved through its parent.
func (p *planner) resolveDest() error {
	raw := p.absolute(p.cfg.Dest)
	dest, err := p.resolver.Dereference(raw)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return p.destError("cannot resolve destination", err)
		}
		parent, perr := p.resolver.Dereference(filepath.Dir(raw))
		if perr != nil {
			return p.destError("cannot resolve destination", perr)
		}
		dest = filepath.Join(parent, filepath.Base(raw))
	}
	p.dest = dest

	info, err := os.Stat(dest)
	switch {
	case err == nil:
		p.destExists = true
		p.destIsDir = info.IsDir()
	case errors.Is(err, fs.ErrNotExist):
		p.newRoot = p.singleDirSource()
	default:
		return p.destError("cannot stat destination", err)
	}
	p.log.Debug("destination", "path", dest, "exists", p.destExists, "dir", p.destIsDir, "new_root", p.newRoot)
	return nil
}

func (p *planner) singleDirSource() bool {
	if len(p.cfg.Sources) != 1 || !p.cfg.Recursive {
		return false
	}
	path, err := p.resolver.Dereference(p.absolute(p.cfg.Sources[0]))
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// visit plans path and, for directories, everything below it. It returns
// false when interrupted.
func (p *planner) visit(w walk, path string, top bool) (bool, error) {
	if p.check.Interrupted() {
		return false, nil
	}

	info, err := os.Lstat(path)
	if err != nil {
		return false, p.fail(w.origin, path, "cannot stat", err)
	}
	isLink, err := symlink.IsLink(path)
	if err != nil {
		return false, p.fail(w.origin, path, "cannot stat", err)
	}

	if isLink && p.cfg.NoDereference {
		p.log.Debug("skip link", "path", path)
		return true, nil
	}
	if p.cfg.NoHidden && strings.HasPrefix(filepath.Base(path), ".") {
		p.log.Debug("skip hidden", "path", path)
		return true, nil
	}
	if !top && !p.cfg.Filter.Match(relTo(w.root, path), info.IsDir(), info.Size()) {
		p.log.Debug("skip excluded", "path", path)
		return true, nil
	}

	switch {
	case isLink:
		return true, p.addLink(w, path)

	case info.IsDir():
		if !p.cfg.Recursive {
			p.warn(path, "is a directory (not copied, use -r)")
			return true, nil
		}
		id, err := platform.FileID(path)
		if err != nil {
			return false, p.fail(w.origin, path, "cannot stat", err)
		}
		if _, seen := p.visited[id]; seen {
			p.log.Debug("already seen", "path", path)
			return true, nil
		}
		p.visited[id] = struct{}{}

		if err := p.addDir(w, path); err != nil {
			return false, err
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return false, p.fail(w.origin, path, "cannot read directory", err)
		}
		for _, e := range entries {
			ok, err := p.visit(w, filepath.Join(path, e.Name()), false)
			if err != nil || !ok {
				return ok, err
			}
		}
		return true, nil

	default:
		return true, p.addCopy(w, path, info)
	}
}

func (p *planner) addCopy(w walk, path string, info fs.FileInfo) error {
	if err := p.checkCollapse(); err != nil {
		return err
	}
	dest := p.destFor(w.parent, path)

	same, err := sameFile(path, dest)
	if err != nil {
		return p.fail(w.origin, dest, "cannot stat", err)
	}
	if same {
		return &PlanError{
			Path:   dest,
			Reason: "source and destination are the same",
			Arg:    p.cfg.argIndex(w.origin),
		}
	}

	var size int64
	if info.Mode().IsRegular() {
		size = info.Size()
	}
	if err := p.put(dest, WorkItem{Origin: w.origin, Action: Copy, Src: path, Size: size}); err != nil {
		return err
	}

	p.cfg.Stats.AddFilesTotal(1)
	p.cfg.Stats.AddBytesTotal(size)
	p.cfg.Events.Emit(event.Event{
		Type:      event.ScanProgress,
		Path:      path,
		Size:      size,
		Total:     int64(p.plan.Len()),
		TotalSize: p.plan.TotalSize(),
	})
	return nil
}

func (p *planner) addDir(w walk, path string) error {
	if err := p.checkCollapse(); err != nil {
		return err
	}
	dest := p.destFor(w.parent, path)

	if info, err := os.Stat(dest); err == nil && !info.IsDir() {
		return &PlanError{
			Path:   dest,
			Reason: "cannot overwrite non-directory with directory",
			Arg:    p.cfg.argIndex(w.origin),
		}
	}
	return p.put(dest, WorkItem{Origin: w.origin, Action: CreateDir, Src: path})
}

func (p *planner) addLink(w walk, path string) error {
	target, err := p.resolver.Dereference(path)
	if err != nil {
		return p.fail(w.origin, path, "could not get link target", err)
	}
	if err := p.checkCollapse(); err != nil {
		return err
	}

	dest := p.destFor(w.parent, path)
	targetDest := p.destFor(w.parent, target)
	p.log.Debug("link", "src", path, "target", target, "dest", dest, "dest_target", targetDest)

	// Keyed by dest: several links may share a target.
	return p.put(dest, WorkItem{Origin: w.origin, Action: Link, Src: targetDest})
}

// put records w, rejecting a destination already claimed by another
// argument. Within one argument the later item wins.
func (p *planner) put(dest string, w WorkItem) error {
	if prev, ok := p.plan.Get(dest); ok && prev.Origin != w.Origin {
		return &PlanError{
			Path:   dest,
			Reason: fmt.Sprintf("planned twice, from %q and %q", prev.Origin, w.Origin),
			Arg:    p.cfg.argIndex(w.Origin),
		}
	}
	p.plan.put(dest, w)
	return nil
}

// checkCollapse rejects a second item when everything maps onto one
// literal destination path.
func (p *planner) checkCollapse() error {
	if p.destIsDir || p.newRoot || p.plan.Len() == 0 {
		return nil
	}
	if p.destExists {
		return p.destError("copying multiple sources into single destination", nil)
	}
	return p.destError("copying multiple sources to non-existing directory", nil)
}

// destFor maps a source path to its destination.
func (p *planner) destFor(parent, src string) string {
	switch {
	case p.newRoot:
		if rel, ok := stripPrefix(src, parent); ok {
			return joinRel(p.dest, rel)
		}
		return src
	case p.destIsDir:
		if src == parent {
			return filepath.Join(p.dest, filepath.Base(src))
		}
		if rel, ok := stripPrefix(src, parent); ok {
			return joinRel(p.dest, rel)
		}
		// Reached through a link outside the tree.
		return src
	default:
		return p.dest
	}
}

func (p *planner) absolute(path string) string {
	if filepath.IsAbs(path) || p.cfg.Dir == "" {
		return path
	}
	return filepath.Join(p.cfg.Dir, path)
}

func (p *planner) warn(path, msg string) {
	p.cfg.Stats.AddWarnings(1)
	p.log.Warn(path + ": " + msg)
	p.cfg.Events.Emit(event.Event{Type: event.Warning, Path: path, Message: msg})
}

func (p *planner) fail(origin, path, reason string, err error) error {
	return &PlanError{Path: path, Reason: reason, Err: err, Arg: p.cfg.argIndex(origin)}
}

func (p *planner) destError(reason string, err error) error {
	return &PlanError{Path: p.cfg.Dest, Reason: reason, Err: err, Arg: p.cfg.argIndex(p.cfg.Dest)}
}

// sameFile reports whether dest exists and is the same object as src.
func sameFile(src, dest string) (bool, error) {
	destID, err := platform.FileID(dest)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	srcID, err := platform.FileID(src)
	if err != nil {
		// Special files and dangling paths have nothing to clobber.
		return false, nil //nolint:nilerr // identity unavailable
	}
	return srcID == destID, nil
}

func parentOf(path string) string {
	parent := filepath.Dir(path)
	if parent == "" {
		return path
	}
	return parent
}

// stripPrefix returns path relative to prefix when prefix is path or one
// of its ancestors.
func stripPrefix(path, prefix string) (string, bool) {
	if path == prefix {
		return "", true
	}
	if prefix != "" && !os.IsPathSeparator(prefix[len(prefix)-1]) {
		prefix += string(filepath.Separator)
	}
	if rest, ok := strings.CutPrefix(path, prefix); ok {
		return rest, true
	}
	return "", false
}

func joinRel(base, rel string) string {
	if rel == "" {
		return base
	}
	return filepath.Join(base, rel)
}

// relTo returns path relative to root for filter matching.
func relTo(root, path string) string {
	if rel, ok := stripPrefix(path, root); ok {
		return rel
	}
	return filepath.Base(path)
}
