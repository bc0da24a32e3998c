package builtin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/bamsammich/burrow/internal/config"
	"github.com/bamsammich/burrow/internal/engine"
	"github.com/bamsammich/burrow/internal/event"
	"github.com/bamsammich/burrow/internal/filter"
	"github.com/bamsammich/burrow/internal/stats"
	"github.com/bamsammich/burrow/internal/ui"
)

const (
	cpUsage       = "cp [OPTIONS] SOURCE... DEST"
	cpDescription = "Copy SOURCE(s) to DESTination."
)

// Cp is the cp builtin.
type Cp struct {
	session *Session
}

// NewCp returns the cp builtin bound to s. A nil s uses an empty config
// and no interruption flag.
func NewCp(s *Session) *Cp {
	if s == nil {
		s = &Session{}
	}
	return &Cp{session: s}
}

func (*Cp) Name() string  { return "cp" }
func (*Cp) Usage() string { return cpUsage }

func (*Cp) Description() string { return cpDescription }

// cpFlags holds the parsed cp command line.
type cpFlags struct {
	help          bool
	debug         bool
	progress      bool
	recursive     bool
	interactive   bool
	force         bool
	noDereference bool
	noHidden      bool
	noPreserve    bool
	verify        bool
	bwlimit       string
	filterFile    string
	minSize       string
	maxSize       string

	chain     *filter.Chain
	operands  []string
	positions []int // indexes of operands in the command line
}

// parse reads args[1:] into cpFlags and applies config defaults for every
// flag not given explicitly.
func (c *Cp) parse(args []string) (*cpFlags, error) {
	f := &cpFlags{chain: filter.NewChain()}
	fs := c.flagSet(f)
	if err := fs.Parse(args[1:]); err != nil {
		return nil, &UsageError{Err: err}
	}
	f.operands = fs.Args()
	f.positions = operandPositions(fs, args)
	if f.help {
		return f, nil
	}

	applyCpDefaults(fs, c.session.Config.Cp, f)
	if f.force {
		f.interactive = false
	}
	return f, nil
}

func (c *Cp) flagSet(f *cpFlags) *pflag.FlagSet {
	fs := newFlagSet("cp")
	fs.BoolVarP(&f.help, "help", "?", false, "display this help and exit")
	fs.BoolVarP(&f.debug, "debug", "d", false, "print the copy plan and trace every action")
	fs.BoolVarP(&f.progress, "progress", "v", false, "show progress")
	fs.BoolVarP(&f.recursive, "recursive", "r", false, "copy directories recursively")
	fs.BoolVarP(&f.interactive, "interactive", "i", true, "prompt before overwriting")
	fs.BoolVarP(&f.force, "force", "f", false, "overwrite without prompting (same as --interactive=false)")
	fs.BoolVarP(&f.noDereference, "no-dereference", "P", false, "ignore symbolic links in SOURCE")
	fs.BoolVar(&f.noHidden, "no-hidden", false, "ignore files and directories starting with '.'")
	fs.BoolVar(&f.noPreserve, "no-preserve", false, "do not preserve permissions, ownership and timestamps")
	fs.BoolVar(&f.verify, "verify", false, "verify copied files with BLAKE3 checksums")
	fs.StringVar(&f.bwlimit, "bwlimit", "", "bandwidth limit in bytes per second (e.g. 100M, 1G)")
	fs.Var(&filterFlag{chain: f.chain}, "exclude", "skip entries matching PATTERN (repeatable)")
	fs.Var(&filterFlag{chain: f.chain, include: true}, "include", "copy entries matching PATTERN (repeatable)")
	fs.StringVar(&f.filterFile, "filter", "", "read filter rules from FILE")
	fs.StringVar(&f.minSize, "min-size", "", "skip files smaller than SIZE (e.g. 1M, 100K)")
	fs.StringVar(&f.maxSize, "max-size", "", "skip files larger than SIZE (e.g. 1G, 500M)")
	return fs
}

// applyCpDefaults applies [cp] config values for flags not explicitly set
// on the command line.
func applyCpDefaults(fs *pflag.FlagSet, defaults config.CpConfig, f *cpFlags) {
	if !fs.Changed("force") {
		setBoolDefault(fs, "interactive", &f.interactive, defaults.Interactive)
	}
	setBoolDefault(fs, "progress", &f.progress, defaults.Progress)
	setBoolDefault(fs, "no-hidden", &f.noHidden, defaults.NoHidden)
	setBoolDefault(fs, "verify", &f.verify, defaults.Verify)
	if defaults.Preserve != nil && !fs.Changed("no-preserve") {
		f.noPreserve = !*defaults.Preserve
	}
	if defaults.BWLimit != nil && !fs.Changed("bwlimit") {
		f.bwlimit = *defaults.BWLimit
	}
}

// Run executes cp. An interrupted or quit copy is not an error.
func (c *Cp) Run(ctx context.Context, args []string) error {
	hc := GetHandlerContext(ctx)

	f, err := c.parse(args)
	if err != nil {
		return err
	}
	if f.help {
		writeHelp(hc.Stdout, cpUsage, cpDescription, c.flagSet(&cpFlags{chain: filter.NewChain()}))
		return nil
	}

	cfg, err := c.engineConfig(hc, f)
	if err != nil {
		return err
	}
	cfg.Args = args
	cfg.Operands = f.positions

	collector := stats.NewCollector()
	cfg.Stats = collector

	isTTY, width := terminal(hc.Stdout)
	presenter := ui.NewPresenter(ui.Config{
		Writer:   hc.Stdout,
		Stats:    collector,
		DstRoot:  absPath(hc.Dir, cfg.Dest),
		IsTTY:    isTTY,
		Progress: f.progress,
		Width:    width,
	})

	prompter := ui.NewPrompter(hc.Stdin, hc.Stdout, hc.lookup)
	prompter.Before = presenter.Clear
	cfg.Confirmer = prompter

	logger := c.logger(hc, f.debug)
	cfg.Logger = logger
	cfg.Events = ui.Sink(presenter)
	if c.session.LogHandler != nil {
		cfg.Events = event.Tee(eventLog(c.session.LogHandler), cfg.Events)
	}
	if c.session.Interrupt != nil {
		cfg.Interrupt = c.session.Interrupt
	}

	res := engine.Run(ctx, cfg)
	logger.Debug("cp finished", "state", res.State, "planned", res.Planned, "total_size", res.TotalSize)
	if f.progress {
		fmt.Fprintln(hc.Stderr, presenter.Summary())
	}

	switch res.State {
	case engine.PlanningFailed, engine.Failed:
		return res.Err
	}
	return nil
}

// engineConfig maps the parsed flags onto an engine.Config.
func (c *Cp) engineConfig(hc *HandlerContext, f *cpFlags) (engine.Config, error) {
	cfg := engine.Config{
		Options: engine.Options{
			Recursive:     f.recursive,
			NoDereference: f.noDereference,
			NoHidden:      f.noHidden,
			Preserve:      !f.noPreserve,
			Interactive:   f.interactive,
			Verify:        f.verify,
		},
		Dir:    hc.Dir,
		Filter: f.chain,
	}

	// Missing operands are reported by the planner.
	switch n := len(f.operands); n {
	case 0:
	case 1:
		cfg.Sources = f.operands
	default:
		cfg.Sources = f.operands[:n-1]
		cfg.Dest = f.operands[n-1]
	}

	if f.bwlimit != "" {
		limit, err := filter.ParseSize(f.bwlimit)
		if err != nil {
			return cfg, &UsageError{Err: fmt.Errorf("invalid --bwlimit: %w", err)}
		}
		cfg.BWLimit = limit
	}

	if f.filterFile != "" {
		if err := f.chain.LoadFile(absPath(hc.Dir, f.filterFile)); err != nil {
			return cfg, err
		}
	}
	for _, glob := range c.session.Config.Cp.Exclude {
		if err := f.chain.AddExclude(glob); err != nil {
			return cfg, fmt.Errorf("config exclude %q: %w", glob, err)
		}
	}

	var minSize, maxSize int64
	if f.minSize != "" {
		n, err := filter.ParseSize(f.minSize)
		if err != nil {
			return cfg, &UsageError{Err: fmt.Errorf("invalid --min-size: %w", err)}
		}
		minSize = n
	}
	if f.maxSize != "" {
		n, err := filter.ParseSize(f.maxSize)
		if err != nil {
			return cfg, &UsageError{Err: fmt.Errorf("invalid --max-size: %w", err)}
		}
		maxSize = n
	}
	if minSize > 0 && maxSize > 0 && minSize > maxSize {
		return cfg, &UsageError{Err: errors.New("--min-size is larger than --max-size")}
	}
	f.chain.SetSizeRange(minSize, maxSize)

	return cfg, nil
}

// logger writes warnings (everything with -d) to the command's stderr, and
// a copy of every record to the session log when one is configured.
func (c *Cp) logger(hc *HandlerContext, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	var h slog.Handler = slog.NewTextHandler(hc.Stderr, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: dropTime,
	})
	if c.session.LogHandler != nil {
		h = ui.NewMultiHandler(h, c.session.LogHandler)
	}
	return slog.New(h).With("cmd", "cp")
}

func dropTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}

// eventLog returns a sink writing one structured record per event.
// Per-chunk progress is logged at debug level.
func eventLog(h slog.Handler) event.Sink {
	log := slog.New(h)
	return func(ev event.Event) {
		level := slog.LevelInfo
		if ev.Type == event.FileProgress || ev.Type == event.ScanProgress {
			level = slog.LevelDebug
		}
		attrs := []slog.Attr{
			slog.String("type", ev.Type.String()),
			slog.String("path", ev.Path),
			slog.Int64("size", ev.Size),
		}
		if ev.Message != "" {
			attrs = append(attrs, slog.String("message", ev.Message))
		}
		if ev.Type == event.Finished {
			attrs = append(attrs, slog.Bool("aborted", ev.Aborted))
		}
		if ev.Error != nil {
			attrs = append(attrs, slog.String("error", ev.Error.Error()))
		}
		log.LogAttrs(context.Background(), level, "burrow.event", attrs...)
	}
}

// absPath anchors p at dir unless it is already absolute.
func absPath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if dir == "" {
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
		return p
	}
	return filepath.Join(dir, p)
}
