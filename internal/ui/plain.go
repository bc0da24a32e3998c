package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/burrow/internal/event"
	"github.com/bamsammich/burrow/internal/stats"
)

const plainProgressInterval = 5 * time.Second

// plainPresenter writes one line per completed file plus a periodic
// progress line, for output that is not a terminal.
type plainPresenter struct {
	w            io.Writer
	stats        *stats.Collector
	dstRoot      string
	lastProgress time.Time
}

func (p *plainPresenter) Handle(ev event.Event) {
	path := StripRoot(p.dstRoot, ev.Path)
	switch ev.Type {
	case event.ScanComplete:
		fmt.Fprintf(p.w, "collected %s files, %s\n", formatCount(ev.Total), stats.FormatBytes(ev.TotalSize))
	case event.FileCompleted:
		fmt.Fprintf(p.w, "%s  %s\n", path, stats.FormatBytes(ev.Size))
	case event.FileFailed:
		errMsg := "error"
		if ev.Error != nil {
			errMsg = ev.Error.Error()
		}
		fmt.Fprintf(p.w, "%s  %s\n", path, errMsg)
	case event.FileSkipped:
		fmt.Fprintf(p.w, "%s  skipped: %s\n", path, ev.Message)
	case event.VerifyStarted:
		fmt.Fprintln(p.w, "verifying...")
	case event.VerifyFailed:
		fmt.Fprintf(p.w, "MISMATCH: %s\n", path)
	case event.FileProgress:
		p.maybePrintProgress(ev.Timestamp)
	case event.Finished:
		status := "Ok"
		if ev.Aborted {
			status = "Aborted"
		}
		fmt.Fprintln(p.w, status)
	}
}

func (p *plainPresenter) Clear() {}

func (p *plainPresenter) maybePrintProgress(at time.Time) {
	if p.lastProgress.IsZero() {
		p.lastProgress = at
		return
	}
	if at.Sub(p.lastProgress) < plainProgressInterval {
		return
	}
	p.lastProgress = at
	p.printProgress()
}

func (p *plainPresenter) printProgress() {
	snap := p.stats.Snapshot()
	if snap.BytesTotal > 0 {
		fmt.Fprintf(p.w, "progress: %.0f%% %s/%s %s/%s files\n",
			percent(snap)*100,
			stats.FormatBytes(snap.BytesCopied), stats.FormatBytes(snap.BytesTotal),
			formatCount(snap.FilesCopied), formatCount(snap.FilesTotal),
		)
	} else {
		fmt.Fprintf(p.w, "progress: %s copied %s files\n",
			stats.FormatBytes(snap.BytesCopied),
			formatCount(snap.FilesCopied),
		)
	}
}

func (p *plainPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}
