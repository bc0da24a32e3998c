package builtin

import (
	"context"
	"io"
	"os"

	"mvdan.cc/sh/v3/interp"

	"github.com/bamsammich/burrow/internal/ui"
)

type (
	// HandlerContext carries the streams, working directory and variables
	// a builtin runs with.
	HandlerContext struct {
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
		// Dir is the shell's working directory, which may differ from the
		// process working directory.
		Dir string
		// LookupEnv retrieves shell variables.
		LookupEnv func(string) (string, bool)
	}

	handlerContextKey struct{}
)

// ExtractHandlerContext builds a HandlerContext from the interpreter's
// handler context. ctx must come from an interp exec handler.
func ExtractHandlerContext(ctx context.Context) *HandlerContext {
	hc := interp.HandlerCtx(ctx)
	return &HandlerContext{
		Stdin:  hc.Stdin,
		Stdout: hc.Stdout,
		Stderr: hc.Stderr,
		Dir:    hc.Dir,
		LookupEnv: func(name string) (string, bool) {
			v := hc.Env.Get(name)
			return v.Str, v.Set
		},
	}
}

// ProcessHandlerContext returns a HandlerContext bound to the process's
// standard streams, working directory and environment.
func ProcessHandlerContext() (*HandlerContext, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return &HandlerContext{
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Dir:       wd,
		LookupEnv: os.LookupEnv,
	}, nil
}

// WithHandlerContext stores hc in ctx. Builtins run outside the
// interpreter (and in tests) get their context this way.
func WithHandlerContext(ctx context.Context, hc *HandlerContext) context.Context {
	return context.WithValue(ctx, handlerContextKey{}, hc)
}

// GetHandlerContext returns the HandlerContext stored by WithHandlerContext,
// falling back to the interpreter's handler context.
func GetHandlerContext(ctx context.Context) *HandlerContext {
	if hc, ok := ctx.Value(handlerContextKey{}).(*HandlerContext); ok {
		return hc
	}
	return ExtractHandlerContext(ctx)
}

// lookup returns a non-nil variable lookup function.
func (hc *HandlerContext) lookup(name string) (string, bool) {
	if hc.LookupEnv == nil {
		return "", false
	}
	return hc.LookupEnv(name)
}

// terminal reports whether w is a terminal and its width.
func terminal(w io.Writer) (bool, int) {
	f, ok := w.(*os.File)
	if !ok || !ui.IsTTY(f.Fd()) {
		return false, 0
	}
	return true, ui.TermWidth(f.Fd())
}
