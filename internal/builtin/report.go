package builtin

import (
	"errors"
	"fmt"
	"io"

	"github.com/bamsammich/burrow/internal/ui"
)

// located is implemented by errors that point at a command-line argument.
type located interface {
	ArgIndex() int
}

// Report prints err as "name: message" to w. When err locates the
// argument it came from, the command line is echoed with that argument
// highlighted.
func Report(w io.Writer, args []string, err error) {
	name := "burrow"
	if len(args) > 0 {
		name = args[0]
	}
	fmt.Fprintf(w, "%s: %v\n", name, err)

	var loc located
	if errors.As(err, &loc) && len(args) > 0 {
		fmt.Fprintln(w, ui.HighlightArg(args, loc.ArgIndex()))
	}
}
