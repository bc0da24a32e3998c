// Package event defines the progress and diagnostic events a copy emits.
package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	ScanStarted Type = iota + 1
	ScanProgress
	ScanComplete
	FileStarted
	FileProgress
	FileCompleted
	FileFailed
	FileSkipped
	DirCreated
	LinkCreated
	FifoCreated
	VerifyStarted
	VerifyOK
	VerifyFailed
	Warning
	Finished
)

var typeNames = [...]string{
	ScanStarted:   "ScanStarted",
	ScanProgress:  "ScanProgress",
	ScanComplete:  "ScanComplete",
	FileStarted:   "FileStarted",
	FileProgress:  "FileProgress",
	FileCompleted: "FileCompleted",
	FileFailed:    "FileFailed",
	FileSkipped:   "FileSkipped",
	DirCreated:    "DirCreated",
	LinkCreated:   "LinkCreated",
	FifoCreated:   "FifoCreated",
	VerifyStarted: "VerifyStarted",
	VerifyOK:      "VerifyOK",
	VerifyFailed:  "VerifyFailed",
	Warning:       "Warning",
	Finished:      "Finished",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress event from the engine.
type Event struct {
	Type      Type
	Timestamp time.Time
	Path      string // destination path, or source path while scanning
	Size      int64  // file size or bytes in this chunk
	Total     int64  // planned items (ScanProgress, ScanComplete)
	TotalSize int64  // planned bytes (ScanProgress, ScanComplete)
	Message   string // Warning text
	Aborted   bool   // Finished: the run stopped before completing
	Error     error
}

// Sink receives events synchronously on the copying goroutine.
type Sink func(Event)

// Emit stamps e and delivers it. A nil sink drops the event.
func (s Sink) Emit(e Event) {
	if s == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	s(e)
}

// Tee returns a sink delivering to every non-nil sink in order.
func Tee(sinks ...Sink) Sink {
	var live []Sink
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}
	return func(e Event) {
		for _, s := range live {
			s(e)
		}
	}
}
