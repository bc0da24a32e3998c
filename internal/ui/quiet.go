package ui

import "github.com/bamsammich/burrow/internal/event"

// quietPresenter consumes events but produces no output.
type quietPresenter struct{}

func (quietPresenter) Handle(event.Event) {}

func (quietPresenter) Clear() {}

func (quietPresenter) Summary() string {
	return ""
}
