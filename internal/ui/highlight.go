package ui

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// HighlightArg renders a command line with the argument at idx marked.
// With color the argument is styled in place; without, a caret line is
// added underneath. An out-of-range idx returns the plain command line.
func HighlightArg(args []string, idx int) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = quoteArg(a)
	}
	line := strings.Join(quoted, " ")
	if idx < 0 || idx >= len(args) {
		return line
	}

	if colorEnabled {
		quoted[idx] = paint(styleErrorArg, quoted[idx])
		return strings.Join(quoted, " ")
	}

	offset := 0
	for _, q := range quoted[:idx] {
		offset += len([]rune(q)) + 1
	}
	width := max(len([]rune(quoted[idx])), 1)
	return line + "\n" + strings.Repeat(" ", offset) + strings.Repeat("^", width)
}

// quoteArg quotes a for the shell when it would not survive as one word.
func quoteArg(a string) string {
	q, err := syntax.Quote(a, syntax.LangBash)
	if err != nil {
		return a
	}
	return q
}
