// Package interrupt provides the cooperative cancellation token polled by
// long-running builtins. A Flag is set from a signal handler and read by the
// copy engine between traversal steps and between content chunks.
package interrupt

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
)

// Checker reports whether the current operation should unwind.
type Checker interface {
	Interrupted() bool
}

// Flag is a process-wide interruption flag. The zero value is ready to use.
type Flag struct {
	set atomic.Bool
}

// Set marks the flag as interrupted.
func (f *Flag) Set() { f.set.Store(true) }

// Reset clears the flag. The shell calls this before each top-level evaluation.
func (f *Flag) Reset() { f.set.Store(false) }

// Interrupted reports whether Set was called since the last Reset.
func (f *Flag) Interrupted() bool { return f.set.Load() }

// Notify sets the flag whenever one of sigs is delivered, until ctx is done
// or the returned stop function is called.
func (f *Flag) Notify(ctx context.Context, sigs ...os.Signal) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ch:
				f.Set()
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		cancel()
		<-done
	}
}

type ctxChecker struct {
	ctx context.Context
}

func (c ctxChecker) Interrupted() bool { return c.ctx.Err() != nil }

// FromContext adapts ctx into a Checker that trips once ctx is done.
//
//nolint:ireturn // adapter returns the interface by design
func FromContext(ctx context.Context) Checker {
	return ctxChecker{ctx: ctx}
}

// Any returns a Checker that trips when any of cs trips. Nil entries are ignored.
//
//nolint:ireturn // adapter returns the interface by design
func Any(cs ...Checker) Checker {
	var live []Checker
	for _, c := range cs {
		if c != nil {
			live = append(live, c)
		}
	}
	return anyChecker(live)
}

type anyChecker []Checker

func (a anyChecker) Interrupted() bool {
	for _, c := range a {
		if c.Interrupted() {
			return true
		}
	}
	return false
}
