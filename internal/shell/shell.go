// Package shell hosts the command interpreter. Lines are parsed and run by
// mvdan.cc/sh; simple commands naming a builtin are dispatched to the
// builtin registry, everything else runs as an external program.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/bamsammich/burrow/internal/builtin"
)

// continuationPrompt is shown while a statement is incomplete.
const continuationPrompt = "> "

// Options configures a Shell.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Dir is the initial working directory. Empty means the process's.
	Dir string
	// Env is the initial environment as "key=value" pairs. Nil means the
	// process's.
	Env []string
	// Params are the positional parameters ($1, $2, ...).
	Params []string

	Session  *builtin.Session
	Registry *builtin.Registry
}

// Shell is an interpreter with the builtins installed.
type Shell struct {
	runner   *interp.Runner
	session  *builtin.Session
	registry *builtin.Registry
	stdout   io.Writer
	stderr   io.Writer
	prompt   PromptBuilder
}

// New creates a Shell. A nil Session gets an empty one, and a nil Registry
// the default builtins bound to that session.
func New(opts Options) (*Shell, error) {
	if opts.Session == nil {
		opts.Session = &builtin.Session{}
	}
	if opts.Registry == nil {
		opts.Registry = builtin.Defaults(opts.Session)
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}

	s := &Shell{
		session:  opts.Session,
		registry: opts.Registry,
		stdout:   opts.Stdout,
		stderr:   opts.Stderr,
	}

	var env expand.Environ
	if opts.Env != nil {
		env = expand.ListEnviron(opts.Env...)
	}
	runnerOpts := []interp.RunnerOption{
		interp.StdIO(opts.Stdin, opts.Stdout, opts.Stderr),
		interp.Env(env),
		interp.Dir(opts.Dir),
		interp.Interactive(true),
		interp.ExecHandlers(s.execHandler),
	}
	if len(opts.Params) > 0 {
		runnerOpts = append(runnerOpts, interp.Params(append([]string{"--"}, opts.Params...)...))
	}

	runner, err := interp.New(runnerOpts...)
	if err != nil {
		return nil, fmt.Errorf("create interpreter: %w", err)
	}
	s.runner = runner
	s.prompt = PromptBuilder{Lookup: s.Lookup, Elevated: os.Geteuid() == 0}
	return s, nil
}

// execHandler dispatches builtins and passes other commands to next.
// Builtin errors are reported on the command's stderr and become exit
// status 1, so the shell keeps running.
func (s *Shell) execHandler(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		cmd, ok := s.registry.Lookup(args[0])
		if !ok {
			return next(ctx, args)
		}
		err := cmd.Run(ctx, args)
		if err == nil {
			return nil
		}
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return status
		}
		builtin.Report(interp.HandlerCtx(ctx).Stderr, args, err)
		return interp.ExitStatus(1)
	}
}

// Lookup returns the value of a shell variable.
func (s *Shell) Lookup(name string) (string, bool) {
	if v, ok := s.runner.Vars[name]; ok && v.IsSet() {
		return v.String(), true
	}
	v := s.runner.Env.Get(name)
	return v.String(), v.IsSet()
}

// Dir returns the shell's working directory.
func (s *Shell) Dir() string { return s.runner.Dir }

// Prompt returns the expanded prompt for the current state.
func (s *Shell) Prompt() string {
	return s.prompt.Build(s.session.Config.Shell.PromptOrDefault(), s.runner.Dir)
}

// Run parses the whole of r and runs it. name is used in error positions.
// The returned error carries the exit status of the last command.
func (s *Shell) Run(ctx context.Context, r io.Reader, name string) error {
	prog, err := syntax.NewParser().Parse(r, name)
	if err != nil {
		return err
	}
	s.resetInterrupt()
	return s.runner.Run(ctx, prog)
}

// RunString runs src as a script.
func (s *Shell) RunString(ctx context.Context, src string) error {
	return s.Run(ctx, strings.NewReader(src), "")
}

// RunFile runs the script at path.
func (s *Shell) RunFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.Run(ctx, f, path)
}

// Interactive reads statements from in until EOF or exit, printing a prompt
// before each one. The interruption flag is reset before every statement,
// so SIGINT only cancels the command that is running.
func (s *Shell) Interactive(ctx context.Context, in io.Reader) error {
	parser := syntax.NewParser()
	fmt.Fprint(s.stdout, s.Prompt())

	var runErr error
	fn := func(stmts []*syntax.Stmt) bool {
		if parser.Incomplete() {
			fmt.Fprint(s.stdout, continuationPrompt)
			return true
		}
		for _, stmt := range stmts {
			s.resetInterrupt()
			runErr = s.runner.Run(ctx, stmt)
			if s.runner.Exited() {
				return false
			}
			if runErr != nil && !isExitStatus(runErr) {
				fmt.Fprintln(s.stderr, runErr)
			}
		}
		fmt.Fprint(s.stdout, s.Prompt())
		return true
	}
	for {
		err := parser.Interactive(in, fn)
		if err == nil || s.runner.Exited() {
			break
		}
		// Syntax errors end the parser; report and continue with a new one.
		if !isSyntaxError(err) {
			return err
		}
		fmt.Fprintln(s.stderr, err)
		parser = syntax.NewParser()
		fmt.Fprint(s.stdout, s.Prompt())
	}
	if s.runner.Exited() {
		return runErr
	}
	return nil
}

func (s *Shell) resetInterrupt() {
	if s.session.Interrupt != nil {
		s.session.Interrupt.Reset()
	}
}

func isExitStatus(err error) bool {
	var status interp.ExitStatus
	return errors.As(err, &status)
}

func isSyntaxError(err error) bool {
	var perr syntax.ParseError
	var lerr syntax.LangError
	return errors.As(err, &perr) || errors.As(err, &lerr)
}
