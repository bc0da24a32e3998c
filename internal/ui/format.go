package ui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/bamsammich/burrow/internal/stats"
)

// sparkBlocks are the sparkline levels, lowest first.
var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// formatRate renders a throughput in the same binary units as sizes.
func formatRate(bytesPerSec float64) string {
	if bytesPerSec < 1 {
		return "0 B/s"
	}
	return stats.FormatBytes(int64(bytesPerSec)) + "/s"
}

// formatDuration renders d as "1h 02m 03s", "3m 07s" or "9s".
func formatDuration(d time.Duration) string {
	d = max(d, 0).Round(time.Second)
	h, m, s := int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// formatETA is formatDuration with "--" for an unknown remaining time.
func formatETA(d time.Duration) string {
	if d <= 0 {
		return "--"
	}
	return formatDuration(d)
}

// formatCount groups the digits of n in thousands: 14302 -> "14,302".
func formatCount(n int64) string {
	digits := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, digits = "-", digits[1:]
	}
	var groups []string
	for len(digits) > 3 {
		groups = append(groups, digits[len(digits)-3:])
		digits = digits[:len(digits)-3]
	}
	groups = append(groups, digits)
	slices.Reverse(groups)
	return sign + strings.Join(groups, ",")
}

// progressBar renders pct (clamped to [0,1]) as width cells of ▪ and □.
func progressBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(min(max(pct, 0), 1) * float64(width))
	return strings.Repeat("▪", filled) + strings.Repeat("□", width-filled)
}

// sparkline renders the newest width samples as block glyphs scaled to the
// largest of them. Missing history is drawn as idle on the left. Any
// non-zero sample shows at least the second level, so a slow transfer is
// distinguishable from a stalled one.
func sparkline(samples []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(samples) > width {
		samples = samples[len(samples)-width:]
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(string(sparkBlocks[0]), width-len(samples)))
	peak := 0.0
	if len(samples) > 0 {
		peak = slices.Max(samples)
	}
	top := len(sparkBlocks) - 1
	for _, v := range samples {
		level := 0
		if peak > 0 && v > 0 {
			level = min(max(int(v/peak*float64(top)), 1), top)
		}
		b.WriteRune(sparkBlocks[level])
	}
	return b.String()
}
