package builtin

import (
	"log/slog"

	"github.com/bamsammich/burrow/internal/config"
	"github.com/bamsammich/burrow/internal/interrupt"
)

// Session is the state builtins share for the lifetime of one shell.
type Session struct {
	Config config.Config
	// Interrupt is set on SIGINT and reset before each evaluated line.
	Interrupt *interrupt.Flag
	// LogHandler, when set, receives a copy of every builtin log record and
	// of every copy event (the --log file).
	LogHandler slog.Handler
}

// NewSession returns a Session with its own interruption flag.
func NewSession(cfg config.Config) *Session {
	return &Session{
		Config:    cfg,
		Interrupt: &interrupt.Flag{},
	}
}
