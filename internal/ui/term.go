package ui

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTTY reports whether the given file descriptor refers to a terminal.
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// TermWidth returns the terminal width in columns, or 80 if it cannot be determined.
func TermWidth(fd uintptr) int {
	w, _, err := term.GetSize(int(fd))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// WantColor reports whether output to f should be styled: f is a terminal
// and neither NO_COLOR nor CLICOLOR=0 is set.
func WantColor(f *os.File) bool {
	if termenv.EnvNoColor() {
		return false
	}
	return IsTTY(f.Fd())
}
