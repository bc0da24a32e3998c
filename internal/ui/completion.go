package ui

import (
	"fmt"

	"github.com/bamsammich/burrow/internal/stats"
)

// CompletionSummary builds a final summary line from a snapshot.
// Format: done ✓  files 48,917  size 2.1 GB  avg 641 MB/s  time 3m 17s  errors 0
func CompletionSummary(snap stats.Snapshot) string {
	avgSpeed := 0.0
	if snap.Elapsed.Seconds() > 0 {
		avgSpeed = float64(snap.BytesCopied) / snap.Elapsed.Seconds()
	}

	icon := "✓"
	if snap.FilesFailed > 0 || snap.FilesVerifyFailed > 0 {
		icon = "✗"
	}

	base := fmt.Sprintf("done %s  files %s  size %s  avg %s  time %s",
		icon,
		formatCount(snap.FilesCopied),
		stats.FormatBytes(snap.BytesCopied),
		formatRate(avgSpeed),
		formatDuration(snap.Elapsed),
	)

	if snap.DirsCreated > 0 {
		base += "  dirs " + formatCount(snap.DirsCreated)
	}
	if snap.LinksCreated > 0 {
		base += "  links " + formatCount(snap.LinksCreated)
	}
	if snap.FilesSkipped > 0 {
		base += "  skipped " + formatCount(snap.FilesSkipped)
	}
	if snap.FilesVerified > 0 || snap.FilesVerifyFailed > 0 {
		base += "  verified " + formatCount(snap.FilesVerified)
	}

	base += fmt.Sprintf("  errors %d", snap.FilesFailed+snap.FilesVerifyFailed)

	return base
}
