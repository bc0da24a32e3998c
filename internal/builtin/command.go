// Package builtin implements the commands the shell runs in-process instead
// of looking them up on PATH.
//
// Builtins read their streams and working directory from a HandlerContext,
// so the same command runs under the shell interpreter, directly from the
// burrow binary, and in tests.
package builtin

import "context"

// Command is a builtin command.
type Command interface {
	// Name returns the command name as typed at the prompt (e.g. "cp").
	Name() string

	// Usage returns the one-line synopsis shown in help output.
	Usage() string

	// Description returns a one-sentence summary of what the command does.
	Description() string

	// Run executes the command. args[0] is the command name, args[1:] its
	// arguments. Errors implementing ArgIndex point back into args.
	Run(ctx context.Context, args []string) error
}
