package builtin

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bamsammich/burrow/internal/symlink"
)

const (
	realpathUsage       = "realpath [OPTION]... [FILE]..."
	realpathDescription = "Print the canonicalized absolute path of each FILE."
)

// Realpath is the realpath builtin.
type Realpath struct{}

// NewRealpath returns the realpath builtin.
func NewRealpath() *Realpath { return &Realpath{} }

func (*Realpath) Name() string  { return "realpath" }
func (*Realpath) Usage() string { return realpathUsage }

func (*Realpath) Description() string { return realpathDescription }

// Run prints the absolute, cleaned path of every operand. With -L every
// link component is replaced by its target first.
func (r *Realpath) Run(ctx context.Context, args []string) error {
	hc := GetHandlerContext(ctx)

	var help, follow bool
	flags := newFlagSet("realpath")
	flags.BoolVarP(&help, "help", "?", false, "display this help and exit")
	flags.BoolVarP(&follow, "follow-links", "L", false, "resolve symbolic links")
	if err := flags.Parse(args[1:]); err != nil {
		return &UsageError{Err: err}
	}
	if help {
		writeHelp(hc.Stdout, realpathUsage, realpathDescription, flags)
		return nil
	}

	operands := flags.Args()
	if len(operands) == 0 {
		return ErrNoArguments
	}

	positions := operandPositions(flags, args)
	resolver := symlink.NewResolver(hc.Dir)
	for i, op := range operands {
		p, err := realpath(resolver, hc.Dir, op, follow)
		if err != nil {
			return &ArgError{Arg: operandIndex(args, positions[min(i, len(positions)):], op), Path: op, Err: err}
		}
		fmt.Fprintln(hc.Stdout, p)
	}
	return nil
}

// realpath returns the absolute, cleaned form of path, which must exist.
func realpath(r *symlink.Resolver, dir, path string, follow bool) (string, error) {
	resolved, err := r.Resolve(path, follow)
	if err != nil {
		return "", cause(err)
	}
	resolved = filepath.Clean(absPath(dir, resolved))
	if _, err := os.Lstat(resolved); err != nil {
		return "", cause(err)
	}
	return resolved, nil
}

// cause strips the path from filesystem errors; the caller reports the
// operand as typed instead.
func cause(err error) error {
	var re *symlink.ResolveError
	if errors.As(err, &re) {
		err = re.Err
	}
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}
