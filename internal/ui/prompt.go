package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/bamsammich/burrow/internal/engine"
)

// EnvNoConfirm, when set in the shell environment, answers every overwrite
// confirmation with yes.
const EnvNoConfirm = "NO_CONFIRM"

// Prompter asks overwrite questions on a terminal. It implements
// engine.Confirmer.
type Prompter struct {
	in     io.Reader
	out    io.Writer
	lookup func(name string) (string, bool)

	// Before runs ahead of every question, typically to clear a progress
	// display sharing the terminal.
	Before func()
}

var _ engine.Confirmer = (*Prompter)(nil)

// NewPrompter creates a Prompter reading answers from in. lookup resolves
// shell variables; nil means none are set.
func NewPrompter(in io.Reader, out io.Writer, lookup func(string) (string, bool)) *Prompter {
	return &Prompter{in: in, out: out, lookup: lookup}
}

// Confirm prints "<prompt>? (options) " and reads one line. Anything but an
// explicit yes (or all/quit when many) is No.
func (p *Prompter) Confirm(prompt string, many bool) (engine.Answer, error) {
	if p.lookup != nil {
		if _, ok := p.lookup(EnvNoConfirm); ok {
			return engine.Yes, nil
		}
	}
	if p.Before != nil {
		p.Before()
	}

	fmt.Fprintf(p.out, "%s? (%s) ", prompt, answerOptions(many))
	line, err := readLine(p.in)
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(p.out)
		return ParseAnswer(line, many), nil
	}
	if err != nil {
		return engine.No, fmt.Errorf("reading answer: %w", err)
	}
	return ParseAnswer(line, many), nil
}

// ParseAnswer maps a reply to an Answer by its first non-space character.
// All and Quit are only accepted when many is set.
func ParseAnswer(reply string, many bool) engine.Answer {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return engine.No
	}
	switch unicode.ToLower([]rune(reply)[0]) {
	case 'y':
		return engine.Yes
	case 'a':
		if many {
			return engine.All
		}
	case 'q':
		if many {
			return engine.Quit
		}
	}
	return engine.No
}

func answerOptions(many bool) string {
	if !colorEnabled {
		if many {
			return "[Y]es/[N]o/[A]ll/[Q]uit"
		}
		return "[Y]es/[N]o"
	}
	yes := paint(styleAnswerYes, "y") + "es"
	no := paint(styleAnswerNo, "N") + "o"
	if many {
		return yes + "/" + no + "/" + paint(styleAnswerAll, "a") + "ll/" + paint(styleAnswerQuit, "q") + "uit"
	}
	return yes + "/" + no
}

// readLine reads up to and excluding the next newline one byte at a time,
// so no input past the answer is consumed.
func readLine(r io.Reader) (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				return strings.TrimSuffix(sb.String(), "\r"), nil
			}
			sb.WriteByte(buf[0])
		}
		if err != nil {
			return sb.String(), err
		}
	}
}
