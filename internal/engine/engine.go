// Package engine plans and executes recursive copies.
//
// A copy runs in two stages. The planner walks every source argument and
// builds a destination-keyed Plan without writing anything. The executor
// then runs the plan in two passes: directories and file contents first,
// symbolic links second.
package engine

import (
	"context"
	"io"
	"log/slog"

	"github.com/bamsammich/burrow/internal/event"
	"github.com/bamsammich/burrow/internal/filter"
	"github.com/bamsammich/burrow/internal/interrupt"
	"github.com/bamsammich/burrow/internal/stats"
)

// Options is the immutable behavior snapshot of one copy.
type Options struct {
	Recursive     bool // descend into directories
	NoDereference bool // skip links met during traversal
	NoHidden      bool // skip entries whose name starts with "."
	Preserve      bool // copy times, permissions and ownership
	Interactive   bool // confirm before overwriting
	Verify        bool // compare BLAKE3 digests after copying
}

// Answer is a reply to an overwrite confirmation.
type Answer int

const (
	No Answer = iota
	Yes
	All  // yes, and stop asking
	Quit // abort the rest of the plan
)

func (a Answer) String() string {
	switch a {
	case Yes:
		return "yes"
	case All:
		return "all"
	case Quit:
		return "quit"
	default:
		return "no"
	}
}

// Confirmer asks the user whether to overwrite. many is set when the plan
// has more than one item, enabling the All and Quit answers.
type Confirmer interface {
	Confirm(prompt string, many bool) (Answer, error)
}

// Config describes a copy operation.
type Config struct {
	Options

	Sources []string
	Dest    string
	// Args is the full command line, command name included. Errors report
	// positions into it.
	Args []string
	// Operands are the indexes into Args of Sources and Dest. Nil means any
	// token after the command name may be an operand.
	Operands []int
	// Dir anchors relative paths. Empty means the process working directory.
	Dir string

	Filter    *filter.Chain
	BWLimit   int64 // bytes per second, 0 = unlimited
	ChunkSize int   // transfer unit, 0 = platform default

	Confirmer Confirmer
	Interrupt interrupt.Checker
	Events    event.Sink
	Logger    *slog.Logger
	Stats     *stats.Collector
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.Stats == nil {
		c.Stats = stats.NewCollector()
	}
	return c
}

// State is the terminal or current phase of a run.
type State int

const (
	Planning State = iota
	Pass1
	Pass2
	Done
	Aborted
	PlanningFailed
	Failed
)

var stateNames = [...]string{
	Planning:       "planning",
	Pass1:          "pass 1",
	Pass2:          "pass 2",
	Done:           "done",
	Aborted:        "aborted",
	PlanningFailed: "planning failed",
	Failed:         "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Result is the outcome of a copy operation. Err is nil for Done and Aborted.
type Result struct {
	State     State
	Stats     stats.Snapshot
	Planned   int
	TotalSize int64
	Err       error
}

// Run plans and executes a copy, blocking until complete. Cancellation of
// ctx or a tripped cfg.Interrupt ends the run in the Aborted state.
func Run(ctx context.Context, cfg Config) Result {
	cfg = cfg.withDefaults()
	check := interrupt.Any(cfg.Interrupt, interrupt.FromContext(ctx))

	p := newPlanner(cfg, check)
	plan, complete, err := p.build()
	if err != nil {
		cfg.Events.Emit(event.Event{Type: event.Finished, Aborted: true, Error: err})
		return Result{State: PlanningFailed, Stats: cfg.Stats.Snapshot(), Err: err}
	}
	if !complete {
		cfg.Logger.Debug("planning interrupted")
		cfg.Events.Emit(event.Event{Type: event.Finished, Aborted: true})
		return Result{State: Aborted, Stats: cfg.Stats.Snapshot(), Planned: plan.Len()}
	}
	dumpPlan(cfg.Logger, plan)

	x := newExecutor(cfg, plan, check)
	state, err := x.run(ctx)

	cfg.Events.Emit(event.Event{
		Type:    event.Finished,
		Aborted: state != Done,
		Error:   err,
	})
	return Result{
		State:     state,
		Stats:     cfg.Stats.Snapshot(),
		Planned:   plan.Len(),
		TotalSize: plan.TotalSize(),
		Err:       err,
	}
}

func dumpPlan(log *slog.Logger, plan *Plan) {
	if !log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	plan.Each(func(dest string, w WorkItem) bool {
		log.Debug("plan", "dest", dest, "action", w.Action, "src", w.Src, "origin", w.Origin)
		return true
	})
}

// argIndex maps an operand to its position in Args, or 0 (the command
// name) when it is not found. Flag values equal to the operand are skipped
// when Operands is set.
func (c Config) argIndex(token string) int {
	if c.Operands == nil {
		for i := 1; i < len(c.Args); i++ {
			if c.Args[i] == token {
				return i
			}
		}
		return 0
	}
	for _, i := range c.Operands {
		if i > 0 && i < len(c.Args) && c.Args[i] == token {
			return i
		}
	}
	return 0
}
