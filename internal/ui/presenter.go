package ui

import (
	"io"

	"github.com/bamsammich/burrow/internal/event"
	"github.com/bamsammich/burrow/internal/stats"
)

// Presenter renders engine events as they are emitted.
type Presenter interface {
	// Handle consumes one event. It is called on the engine's goroutine
	// and must not block.
	Handle(ev event.Event)
	// Clear erases any in-place display so another writer (a prompt) can
	// use the terminal. The next event redraws it.
	Clear()
	// Summary returns the final summary line.
	Summary() string
}

// Config configures a Presenter.
type Config struct {
	Writer   io.Writer
	Stats    *stats.Collector
	DstRoot  string
	IsTTY    bool
	Progress bool // -v: show progress at all
	Width    int  // terminal columns, 0 = 80
}

// NewPresenter creates the appropriate presenter based on configuration.
//
//nolint:ireturn // factory function returns interface by design
func NewPresenter(cfg Config) Presenter {
	if !cfg.Progress {
		return quietPresenter{}
	}
	if !cfg.IsTTY {
		return &plainPresenter{
			w:       cfg.Writer,
			stats:   cfg.Stats,
			dstRoot: cfg.DstRoot,
		}
	}
	width := cfg.Width
	if width <= 0 {
		width = 80
	}
	return &hudPresenter{
		w:       cfg.Writer,
		stats:   cfg.Stats,
		dstRoot: cfg.DstRoot,
		width:   width,
	}
}

// Sink adapts p to the engine's event callback.
func Sink(p Presenter) event.Sink {
	return p.Handle
}
