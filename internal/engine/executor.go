package engine

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"golang.org/x/time/rate"

	"github.com/bamsammich/burrow/internal/event"
	"github.com/bamsammich/burrow/internal/interrupt"
	"github.com/bamsammich/burrow/internal/platform"
)

var (
	errNotDir = errors.New("not a directory")
	errIsDir  = errors.New("cannot overwrite directory with non-directory")
)

// preservedBits are the mode bits copied with --preserve.
const preservedBits = fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky

// executor runs a Plan: directories and file contents in the first pass,
// symbolic links in the second.
type executor struct {
	cfg     Config
	plan    *Plan
	check   interrupt.Checker
	log     *slog.Logger
	limiter *rate.Limiter

	confirm bool // cleared by an All answer
	many    bool

	copied []copiedFile
	dirs   []createdDir
}

type copiedFile struct {
	origin string
	src    string
	dest   string
}

type createdDir struct {
	origin string
	dest   string
	info   fs.FileInfo
}

func newExecutor(cfg Config, plan *Plan, check interrupt.Checker) *executor {
	return &executor{
		cfg:     cfg,
		plan:    plan,
		check:   check,
		log:     cfg.Logger,
		limiter: NewBWLimiter(cfg.BWLimit),
		confirm: cfg.Interactive && cfg.Confirmer != nil,
		many:    plan.Len() > 1,
	}
}

func (x *executor) run(ctx context.Context) (State, error) {
	done, err := x.pass(ctx, Pass1, func(a Action) bool { return a == CreateDir || a == Copy })
	if err != nil {
		return Failed, err
	}
	if !done {
		return Aborted, nil
	}

	done, err = x.pass(ctx, Pass2, func(a Action) bool { return a == Link })
	if err != nil {
		return Failed, err
	}
	if !done {
		return Aborted, nil
	}

	if x.cfg.Preserve {
		if err := x.stampDirs(); err != nil {
			return Failed, err
		}
	}
	if x.cfg.Verify {
		done, err := x.verify()
		if err != nil {
			return Failed, err
		}
		if !done {
			return Aborted, nil
		}
	}
	return Done, nil
}

// pass runs the items whose action want accepts, in plan order. It returns
// false when the run was interrupted or the user quit.
func (x *executor) pass(ctx context.Context, state State, want func(Action) bool) (bool, error) {
	x.log.Debug("executing", "pass", state)
	for _, dest := range x.plan.Keys() {
		w, _ := x.plan.Get(dest)
		if !want(w.Action) {
			continue
		}
		if x.check.Interrupted() {
			return false, nil
		}

		ok, err := x.do(ctx, dest, w)
		if errors.Is(err, errQuit) {
			x.log.Debug("quit requested")
			return false, nil
		}
		if err != nil || !ok {
			return ok, err
		}
	}
	return true, nil
}

func (x *executor) do(ctx context.Context, dest string, w WorkItem) (bool, error) {
	switch w.Action {
	case Copy:
		x.log.Debug("COPY", "src", w.Src, "dest", dest)
		return x.copy(ctx, dest, w)
	case CreateDir:
		x.log.Debug("CREATE", "dest", dest, "src", w.Src)
		return true, x.mkdir(dest, w)
	case Link:
		x.log.Debug("LINK", "dest", dest, "target", w.Src)
		return x.link(dest, w)
	default:
		return false, x.fail("plan", dest, errors.New("unknown action"), w)
	}
}

func (x *executor) copy(ctx context.Context, dest string, w WorkItem) (bool, error) {
	info, err := os.Lstat(w.Src)
	if err != nil {
		return false, x.fail("stat", w.Src, err, w)
	}

	kind := platform.Kind(info.Mode())
	switch kind {
	case platform.Socket, platform.Device, platform.Other:
		x.skip(w.Src, "skipping "+kind.String())
		return true, nil
	}

	if di, err := os.Lstat(dest); err == nil && di.IsDir() {
		return false, x.fail("copy", dest, errIsDir, w)
	}
	proceed, err := x.confirmOverwrite(dest, w)
	if err != nil || !proceed {
		return err == nil, err
	}

	if kind == platform.FIFO {
		return x.mkfifo(dest, info, w)
	}
	return x.copyContents(ctx, dest, info, w)
}

// copyContents streams w.Src into a temporary sibling of dest and renames
// it into place, so an interrupted copy never leaves a partial dest.
func (x *executor) copyContents(ctx context.Context, dest string, info fs.FileInfo, w WorkItem) (bool, error) {
	x.cfg.Events.Emit(event.Event{Type: event.FileStarted, Path: dest, Size: info.Size()})

	tmp := tmpPathFor(dest)
	globalTmpRegistry.add(tmp)
	defer func() {
		globalTmpRegistry.remove(tmp)
		_ = os.Remove(tmp) // no-op after a successful rename
	}()

	fd, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return false, x.fail("create", dest, err, w)
	}

	result, err := platform.CopyFile(platform.CopyFileParams{
		SrcPath:   w.Src,
		DstFd:     fd,
		SizeHint:  info.Size(),
		ChunkSize: x.cfg.ChunkSize,
		OnChunk: func(n int64) error {
			x.cfg.Stats.AddBytesCopied(n)
			x.cfg.Events.Emit(event.Event{Type: event.FileProgress, Path: dest, Size: n})
			if err := waitBytes(ctx, x.limiter, n); err != nil {
				return errInterrupted
			}
			if x.check.Interrupted() {
				return errInterrupted
			}
			return nil
		},
	})
	if err != nil {
		fd.Close()
		if errors.Is(err, errInterrupted) {
			x.log.Debug("copy interrupted", "dest", dest)
			return false, nil
		}
		x.cfg.Stats.AddFilesFailed(1)
		x.cfg.Events.Emit(event.Event{Type: event.FileFailed, Path: dest, Error: err})
		return false, x.fail("copy", w.Src, err, w)
	}

	if x.cfg.Preserve {
		if err := x.preserve(tmp, info); err != nil {
			fd.Close()
			return false, x.fail("preserve", dest, err, w)
		}
	}
	if err := fd.Close(); err != nil {
		return false, x.fail("close", dest, err, w)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return false, x.fail("rename", dest, err, w)
	}

	x.cfg.Stats.AddFilesCopied(1)
	x.cfg.Events.Emit(event.Event{Type: event.FileCompleted, Path: dest, Size: result.BytesWritten})
	x.copied = append(x.copied, copiedFile{origin: w.Origin, src: w.Src, dest: dest})
	return true, nil
}

// mkfifo recreates a named pipe instead of reading from it.
func (x *executor) mkfifo(dest string, info fs.FileInfo, w WorkItem) (bool, error) {
	if err := removeExisting(dest); err != nil {
		return false, x.fail("remove", dest, err, w)
	}
	if err := platform.Mkfifo(dest, 0o600); err != nil {
		if errors.Is(err, platform.ErrUnsupported) {
			x.skip(w.Src, "skipping fifo")
			return true, nil
		}
		return false, x.fail("mkfifo", dest, err, w)
	}
	if x.cfg.Preserve {
		if err := x.preserve(dest, info); err != nil {
			return false, x.fail("preserve", dest, err, w)
		}
	}

	x.cfg.Stats.AddFifosCreated(1)
	x.cfg.Events.Emit(event.Event{Type: event.FifoCreated, Path: dest})
	return true, nil
}

func (x *executor) mkdir(dest string, w WorkItem) error {
	if di, err := os.Stat(dest); err == nil {
		if !di.IsDir() {
			return x.fail("mkdir", dest, errNotDir, w)
		}
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return x.fail("stat", dest, err, w)
	}

	info, err := os.Stat(w.Src)
	if err != nil {
		return x.fail("stat", w.Src, err, w)
	}
	// Owner rwx until stampDirs, so the copy can fill the directory.
	if err := os.Mkdir(dest, info.Mode().Perm()|0o700); err != nil {
		return x.fail("mkdir", dest, err, w)
	}

	x.cfg.Stats.AddDirsCreated(1)
	x.cfg.Events.Emit(event.Event{Type: event.DirCreated, Path: dest})
	if x.cfg.Preserve {
		x.dirs = append(x.dirs, createdDir{origin: w.Origin, dest: dest, info: info})
	}
	return nil
}

func (x *executor) link(dest string, w WorkItem) (bool, error) {
	if _, err := os.Lstat(dest); err == nil {
		proceed, err := x.confirmOverwrite(dest, w)
		if err != nil || !proceed {
			return err == nil, err
		}
		if err := os.Remove(dest); err != nil {
			return false, x.linkErr(dest, err, w)
		}
	}

	if err := os.Symlink(w.Src, dest); err != nil {
		return false, x.linkErr(dest, err, w)
	}
	x.cfg.Stats.AddLinksCreated(1)
	x.cfg.Events.Emit(event.Event{Type: event.LinkCreated, Path: dest})
	return true, nil
}

// confirmOverwrite asks before replacing an existing dest. It returns
// errQuit when the user quits.
func (x *executor) confirmOverwrite(dest string, w WorkItem) (bool, error) {
	if !x.confirm {
		return true, nil
	}
	if _, err := os.Lstat(dest); err != nil {
		return true, nil
	}

	ans, err := x.cfg.Confirmer.Confirm("Overwrite "+dest, x.many)
	if err != nil {
		return false, x.fail("confirm", dest, err, w)
	}
	switch ans {
	case Yes:
		return true, nil
	case All:
		x.confirm = false
		return true, nil
	case Quit:
		return false, errQuit
	default:
		x.skip(dest, "not overwritten")
		return false, nil
	}
}

// preserve copies ownership, mode bits and timestamps from info onto path.
// Ownership goes first since chown clears setuid and setgid.
func (x *executor) preserve(path string, info fs.FileInfo) error {
	if err := platform.Chown(path, info); err != nil {
		if !errors.Is(err, fs.ErrPermission) {
			return err
		}
		x.log.Debug("ownership not preserved", "path", path, "error", err)
	}
	if err := os.Chmod(path, info.Mode()&preservedBits); err != nil {
		return err
	}
	return platform.SetTimes(path, platform.Atime(info), info.ModTime())
}

// stampDirs applies directory metadata once nothing more is written
// inside, deepest first.
func (x *executor) stampDirs() error {
	for i := len(x.dirs) - 1; i >= 0; i-- {
		d := x.dirs[i]
		if err := x.preserve(d.dest, d.info); err != nil {
			return &ExecError{Op: "preserve", Path: d.dest, Err: err, Arg: x.cfg.argIndex(d.origin)}
		}
	}
	return nil
}

func (x *executor) skip(path, msg string) {
	x.cfg.Stats.AddFilesSkipped(1)
	x.cfg.Stats.AddWarnings(1)
	x.log.Warn(path + ": " + msg)
	x.cfg.Events.Emit(event.Event{Type: event.FileSkipped, Path: path, Message: msg})
}

func (x *executor) fail(op, path string, err error, w WorkItem) error {
	return &ExecError{Op: op, Path: path, Err: err, Arg: x.cfg.argIndex(w.Origin)}
}

func (x *executor) linkErr(dest string, err error, w WorkItem) error {
	return &ExecError{Op: "symlink", Path: dest, Err: err, Arg: x.cfg.argIndex(w.Origin), Hint: linkHint}
}

func removeExisting(path string) error {
	if _, err := os.Lstat(path); err != nil {
		return nil //nolint:nilerr // nothing to remove
	}
	return os.Remove(path)
}
