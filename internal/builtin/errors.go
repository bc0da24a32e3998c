package builtin

import (
	"errors"
	"fmt"
)

// ErrNoArguments is returned by builtins that need at least one operand.
var ErrNoArguments = errors.New("No arguments provided") //nolint:staticcheck // user-facing message

// ArgError attaches a command-line position to an error.
type ArgError struct {
	Arg  int // index into the command's args
	Path string
	Err  error
}

func (e *ArgError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ArgError) Unwrap() error { return e.Err }

// ArgIndex returns the index into the command's args of the offending argument.
func (e *ArgError) ArgIndex() int { return e.Arg }

// UsageError reports an invalid command line.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error() + " (try --help)"
}

func (e *UsageError) Unwrap() error { return e.Err }

// operandIndex returns the first of positions whose args entry equals
// operand, or 0.
func operandIndex(args []string, positions []int, operand string) int {
	for _, i := range positions {
		if i < len(args) && args[i] == operand {
			return i
		}
	}
	return 0
}
