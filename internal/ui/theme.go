package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/bamsammich/burrow/internal/config"
)

// Catppuccin Mocha palette, mutable so config can override.
var (
	ColorGreen  = lipgloss.Color("#a6e3a1")
	ColorBlue   = lipgloss.Color("#89b4fa")
	ColorYellow = lipgloss.Color("#f9e2af")
	ColorRed    = lipgloss.Color("#f38ba8")
	ColorTeal   = lipgloss.Color("#94e2d5")
	ColorOrange = lipgloss.Color("#fab387")
	ColorMuted  = lipgloss.Color("#5a6278")
	ColorDim    = lipgloss.Color("#3a4055")
	ColorBright = lipgloss.Color("#cdd6f4")
)

// Pre-built styles, rebuilt by rebuildStyles() after color changes.
var (
	styleDim            lipgloss.Style
	styleIconDone       lipgloss.Style
	styleIconFailed     lipgloss.Style
	styleIconSkipped    lipgloss.Style
	styleFilePath       lipgloss.Style
	styleFileDir        lipgloss.Style
	styleFileSize       lipgloss.Style
	styleFileSpeed      lipgloss.Style
	styleInFlight       lipgloss.Style
	styleSparkline      lipgloss.Style
	styleProgressFilled lipgloss.Style
	styleProgressEmpty  lipgloss.Style
	styleStatus         lipgloss.Style
	styleError          lipgloss.Style
	styleErrorArg       lipgloss.Style
	styleOk             lipgloss.Style
	styleAborted        lipgloss.Style
	styleAnswerYes      lipgloss.Style
	styleAnswerNo       lipgloss.Style
	styleAnswerAll      lipgloss.Style
	styleAnswerQuit     lipgloss.Style
)

// colorEnabled gates every styled render. Off means plain text.
var colorEnabled = true

func init() {
	rebuildStyles()
}

// rebuildStyles reconstructs all lipgloss styles from the current color vars.
func rebuildStyles() {
	styleDim = lipgloss.NewStyle().Foreground(ColorMuted)
	styleIconDone = lipgloss.NewStyle().Foreground(ColorGreen)
	styleIconFailed = lipgloss.NewStyle().Foreground(ColorRed)
	styleIconSkipped = lipgloss.NewStyle().Foreground(ColorMuted)
	styleFilePath = lipgloss.NewStyle().Foreground(ColorBright)
	styleFileDir = lipgloss.NewStyle().Foreground(ColorMuted)
	styleFileSize = lipgloss.NewStyle().Foreground(ColorMuted)
	styleFileSpeed = lipgloss.NewStyle().Foreground(ColorTeal)
	styleInFlight = lipgloss.NewStyle().Foreground(ColorBlue)
	styleSparkline = lipgloss.NewStyle().Foreground(ColorBlue)
	styleProgressFilled = lipgloss.NewStyle().Foreground(ColorGreen)
	styleProgressEmpty = lipgloss.NewStyle().Foreground(ColorDim)
	styleStatus = lipgloss.NewStyle().Foreground(ColorYellow).Italic(true)
	styleError = lipgloss.NewStyle().Foreground(ColorRed)
	styleErrorArg = lipgloss.NewStyle().Foreground(ColorRed).Bold(true).Underline(true)
	styleOk = lipgloss.NewStyle().Foreground(ColorGreen).Bold(true)
	styleAborted = lipgloss.NewStyle().Foreground(ColorOrange).Bold(true)
	styleAnswerYes = lipgloss.NewStyle().Foreground(ColorGreen).Bold(true)
	styleAnswerNo = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	styleAnswerAll = lipgloss.NewStyle().Foreground(ColorBlue).Bold(true)
	styleAnswerQuit = lipgloss.NewStyle().Foreground(ColorOrange).Bold(true)
}

// ApplyTheme overrides colors from a config ThemeConfig and rebuilds all styles.
func ApplyTheme(tc config.ThemeConfig) {
	set := func(dst *lipgloss.Color, v *string) {
		if v != nil {
			*dst = lipgloss.Color(*v)
		}
	}
	set(&ColorGreen, tc.Green)
	set(&ColorBlue, tc.Blue)
	set(&ColorYellow, tc.Yellow)
	set(&ColorRed, tc.Red)
	set(&ColorTeal, tc.Teal)
	set(&ColorMuted, tc.Muted)
	set(&ColorDim, tc.Dim)
	set(&ColorBright, tc.Bright)
	rebuildStyles()
}

// SetColor turns styled output on or off. On picks the richest profile the
// environment supports.
func SetColor(on bool) {
	colorEnabled = on
	if on {
		lipgloss.SetColorProfile(termenv.EnvColorProfile())
	} else {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// ColorEnabled reports whether styled output is on.
func ColorEnabled() bool {
	return colorEnabled
}

func paint(s lipgloss.Style, text string) string {
	if !colorEnabled || text == "" {
		return text
	}
	return s.Render(text)
}

// styledBar renders progressBar with the filled and empty parts colored.
func styledBar(pct float64, width int) string {
	bar := progressBar(pct, width)
	filled := strings.Count(bar, "▪")
	runes := []rune(bar)
	return paint(styleProgressFilled, string(runes[:filled])) + paint(styleProgressEmpty, string(runes[filled:]))
}
