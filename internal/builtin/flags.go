package builtin

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bamsammich/burrow/internal/filter"
)

// filterFlag is a pflag.Value that appends --exclude and --include rules to
// a shared filter.Chain, preserving their command-line order.
type filterFlag struct {
	chain   *filter.Chain
	include bool
}

func (*filterFlag) String() string { return "" }
func (*filterFlag) Type() string   { return "pattern" }

func (f *filterFlag) Set(val string) error {
	if f.include {
		return f.chain.AddInclude(val)
	}
	return f.chain.AddExclude(val)
}

// newFlagSet returns a FlagSet that reports errors instead of printing them
// and lists flags in declaration order.
func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	return fs
}

// writeHelp prints the usage line, a description and the flag table.
func writeHelp(w io.Writer, usage, description string, fs *pflag.FlagSet) {
	var b strings.Builder
	fmt.Fprintf(&b, "Usage: %s\n", usage)
	fmt.Fprintln(&b, description)
	fmt.Fprintln(&b, "\nOptions:")
	b.WriteString(fs.FlagUsages())
	io.WriteString(w, b.String()) //nolint:errcheck // best-effort help output
}

// setBoolDefault assigns *v from the config value when the flag was not
// given on the command line.
func setBoolDefault(fs *pflag.FlagSet, name string, v *bool, cfg *bool) {
	if cfg != nil && !fs.Changed(name) {
		*v = *cfg
	}
}

// operandPositions returns the indexes into args of the tokens fs treats as
// operands, in order. args[0] is the command name. Flag values are skipped,
// so "--exclude x x" reports only the second x.
func operandPositions(fs *pflag.FlagSet, args []string) []int {
	var pos []int
	for i := 1; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			for j := i + 1; j < len(args); j++ {
				pos = append(pos, j)
			}
			return pos
		case strings.HasPrefix(arg, "--"):
			name, _, hasValue := strings.Cut(arg[2:], "=")
			if !hasValue && takesValue(fs.Lookup(name)) {
				i++
			}
		case len(arg) > 1 && arg[0] == '-':
			for j := 1; j < len(arg); j++ {
				if takesValue(fs.ShorthandLookup(arg[j : j+1])) {
					if j == len(arg)-1 {
						i++
					}
					break
				}
			}
		default:
			pos = append(pos, i)
		}
	}
	return pos
}

// takesValue reports whether f consumes an argument when given without "=".
func takesValue(f *pflag.Flag) bool {
	return f != nil && f.NoOptDefVal == ""
}
