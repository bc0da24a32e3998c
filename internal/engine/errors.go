package engine

import (
	"errors"
	"fmt"
)

// linkHint is appended to failures of the link pass, which often needs
// privileges the content pass does not.
const linkHint = ". Try again with -P, --no-dereference, or elevated privileges"

// errInterrupted unwinds a copy when the interruption flag trips.
var errInterrupted = errors.New("interrupted")

// errQuit unwinds the executor when the user answers Quit.
var errQuit = errors.New("quit")

// Located is implemented by errors that know which command-line argument
// they came from.
type Located interface {
	error
	ArgIndex() int
}

// PlanError reports a plan that cannot be built.
type PlanError struct {
	Path   string
	Reason string
	Err    error
	Arg    int // index into Config.Args
}

func (e *PlanError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *PlanError) Unwrap() error { return e.Err }

// ArgIndex returns the index into Config.Args of the offending argument.
func (e *PlanError) ArgIndex() int { return e.Arg }

// ExecError reports a failed filesystem operation while executing a plan.
type ExecError struct {
	Op   string
	Path string
	Err  error
	Arg  int    // index into Config.Args
	Hint string // appended to the message
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%s %s: %v%s", e.Op, e.Path, e.Err, e.Hint)
}

func (e *ExecError) Unwrap() error { return e.Err }

// ArgIndex returns the index into Config.Args of the offending argument.
func (e *ExecError) ArgIndex() int { return e.Arg }
