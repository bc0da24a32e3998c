package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/muesli/termenv"

	"github.com/bamsammich/burrow/internal/event"
	"github.com/bamsammich/burrow/internal/stats"
)

// hudPresenter provides a TTY display with a scrolling feed of completed
// files and a HUD that redraws in place below it.
type hudPresenter struct {
	w       io.Writer
	out     *termenv.Output
	stats   *stats.Collector
	dstRoot string // destination root, stripped from displayed paths
	width   int

	scanning     bool
	current      string // path shown on the HUD
	hudDrawn     bool
	hudLineCount int
	rateMode     bool
	rateSwitched bool
	lastHUDDraw  time.Time
	lastTick     time.Time
}

const (
	rateThreshHigh   = 200.0
	rateThreshLow    = 100.0
	sparklineWidth   = 20
	progressBarWidth = 20
	hudMinInterval   = 50 * time.Millisecond // don't redraw faster than this
	tickInterval     = time.Second
)

func (p *hudPresenter) Handle(ev event.Event) {
	p.tick(ev.Timestamp)

	switch ev.Type {
	case event.ScanStarted:
		p.scanning = true
		p.drawHUD()

	case event.ScanProgress:
		p.current = ev.Path
		p.maybeDrawHUD()

	case event.ScanComplete:
		p.scanning = false
		p.current = ""
		p.clearHUD()
		fmt.Fprintln(p.w, paint(styleDim, fmt.Sprintf("collected %s files, %s",
			formatCount(ev.Total), stats.FormatBytes(ev.TotalSize))))
		p.drawHUD()

	case event.FileStarted:
		p.current = ev.Path
		p.maybeDrawHUD()

	case event.FileProgress:
		p.maybeSwitch()
		p.maybeDrawHUD()

	case event.FileCompleted:
		if !p.rateMode {
			p.feed(p.fileCompletedLine(ev))
		}

	case event.FileFailed:
		p.feed(p.fileFailedLine(ev))

	case event.FileSkipped:
		if !p.rateMode {
			p.feed(fmt.Sprintf("%s  %s  %s", paint(styleIconSkipped, "–"),
				p.styledPath(ev.Path), paint(styleDim, ev.Message)))
		}

	case event.VerifyStarted:
		p.feed(paint(styleDim, "verifying checksums..."))

	case event.VerifyFailed:
		p.feed(fmt.Sprintf("%s  %s  %s", paint(styleIconFailed, "✗"),
			p.styledPath(ev.Path), paint(styleError, "CHECKSUM MISMATCH")))

	case event.DirCreated, event.LinkCreated, event.FifoCreated:
		p.maybeDrawHUD()

	case event.Finished:
		p.clearHUD()
		fmt.Fprintln(p.w, p.finalLine(ev.Aborted))
	}
}

func (p *hudPresenter) Clear() {
	p.clearHUD()
}

// tick feeds the rolling-rate ring buffer about once a second.
func (p *hudPresenter) tick(at time.Time) {
	if at.IsZero() {
		at = time.Now()
	}
	if p.lastTick.IsZero() {
		p.lastTick = at
		return
	}
	if at.Sub(p.lastTick) >= tickInterval {
		p.stats.Tick()
		p.lastTick = at
	}
}

// feed prints a line above the HUD.
func (p *hudPresenter) feed(line string) {
	p.clearHUD()
	fmt.Fprintln(p.w, line)
	p.drawHUD()
}

func (p *hudPresenter) fileCompletedLine(ev event.Event) string {
	icon := paint(styleIconDone, "✓")
	size := paint(styleFileSize, fmt.Sprintf("%10s", stats.FormatBytes(ev.Size)))
	if speed := p.stats.RollingSpeed(5); speed > 0 {
		return fmt.Sprintf("%s  %s  %s  %s", icon, p.styledPath(ev.Path), size, paint(styleFileSpeed, formatRate(speed)))
	}
	return fmt.Sprintf("%s  %s  %s", icon, p.styledPath(ev.Path), size)
}

func (p *hudPresenter) fileFailedLine(ev event.Event) string {
	errMsg := "error"
	if ev.Error != nil {
		errMsg = ev.Error.Error()
	}
	return fmt.Sprintf("%s  %s  %s", paint(styleIconFailed, "✗"), p.styledPath(ev.Path), paint(styleError, errMsg))
}

func (p *hudPresenter) maybeSwitch() {
	fps := p.stats.RollingFilesPerSec(2)

	if !p.rateMode && fps > rateThreshHigh {
		p.rateMode = true
		if !p.rateSwitched {
			p.rateSwitched = true
			p.clearHUD()
			fmt.Fprintf(p.w, "↯ rate view (%s files/s)\n", formatCount(int64(fps)))
		}
	} else if p.rateMode && fps < rateThreshLow {
		p.rateMode = false
	}
}

// maybeDrawHUD redraws the HUD if enough time has passed since the last draw.
func (p *hudPresenter) maybeDrawHUD() {
	if time.Since(p.lastHUDDraw) < hudMinInterval {
		return
	}
	p.drawHUD()
}

func (p *hudPresenter) drawHUD() {
	p.clearHUD()
	snap := p.stats.Snapshot()
	lines := 0

	if p.scanning {
		fmt.Fprintf(p.w, "%s  %s files  %s  %s\n",
			paint(styleStatus, "scanning"),
			formatCount(snap.FilesTotal), stats.FormatBytes(snap.BytesTotal),
			paint(styleFileDir, truncPath(p.relPath(p.current), p.pathWidth())))
		lines++
	} else {
		speed := p.stats.RollingSpeed(10)
		spark := sparkline(p.stats.SparklineData(sparklineWidth), sparklineWidth)
		if p.rateMode {
			spark = sparkline(p.stats.FilesSparklineData(sparklineWidth), sparklineWidth)
		}
		fmt.Fprintf(p.w, "       %s   %s   %s / %s\n",
			paint(styleSparkline, spark), formatRate(speed),
			stats.FormatBytes(snap.BytesCopied), stats.FormatBytes(snap.BytesTotal))
		lines++

		pct := percent(snap)
		fmt.Fprintf(p.w, " %3.0f%%  %s   %s / %s files   eta %s  %s\n",
			pct*100, styledBar(pct, progressBarWidth),
			formatCount(snap.FilesCopied), formatCount(snap.FilesTotal),
			formatETA(p.stats.ETA()),
			paint(styleInFlight, truncPath(p.relPath(p.current), p.pathWidth())))
		lines++
	}

	p.hudDrawn = true
	p.hudLineCount = lines
	p.lastHUDDraw = time.Now()
}

func (p *hudPresenter) clearHUD() {
	if !p.hudDrawn {
		return
	}
	if p.out == nil {
		p.out = termenv.NewOutput(p.w, termenv.WithProfile(termenv.Ascii))
	}
	p.out.ClearLines(p.hudLineCount)
	p.hudDrawn = false
}

// finalLine is the last progress line: the bar plus Ok or Aborted.
func (p *hudPresenter) finalLine(aborted bool) string {
	snap := p.stats.Snapshot()
	status := paint(styleOk, "Ok")
	if aborted {
		status = paint(styleAborted, "Aborted")
	}
	return fmt.Sprintf(" %3.0f%%  %s   %s / %s   %s",
		percent(snap)*100, styledBar(percent(snap), progressBarWidth),
		stats.FormatBytes(snap.BytesCopied), stats.FormatBytes(snap.BytesTotal), status)
}

func (p *hudPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}

// pathWidth is the room left for the current path on the second HUD line.
func (p *hudPresenter) pathWidth() int {
	return max(p.width-progressBarWidth-48, 12)
}

func (p *hudPresenter) relPath(path string) string {
	return StripRoot(p.dstRoot, path)
}

// styledPath returns the path with the directory portion dimmed, making the
// actual filename stand out.
func (p *hudPresenter) styledPath(path string) string {
	path = p.relPath(path)
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if dir == "." || dir == "" {
		return paint(styleFilePath, base)
	}
	return paint(styleFileDir, dir+string(filepath.Separator)) + paint(styleFilePath, base)
}

func percent(snap stats.Snapshot) float64 {
	if snap.BytesTotal <= 0 {
		return 0
	}
	return min(float64(snap.BytesCopied)/float64(snap.BytesTotal), 1)
}

// truncPath shortens a path to fit within maxLen characters.
func truncPath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[:maxLen]
	}
	return "..." + path[len(path)-maxLen+3:]
}

// StripRoot removes a root prefix from a path, returning a clean relative path.
func StripRoot(root, path string) string {
	if root == "" {
		return path
	}
	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	if strings.HasPrefix(path, root) {
		return path[len(root):]
	}
	return path
}
