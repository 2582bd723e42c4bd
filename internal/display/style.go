// Package display holds the read-only presentation constants used for
// console output: style tokens and the colors behind them.
package display

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Style is a named presentation token. Callers pick a token; the palette
// below decides what it looks like.
type Style int

const (
	StylePlain Style = iota
	StyleHeader
	StyleOK
	StyleFail
	StyleWarn
	StyleRunning
	StyleMuted
)

// palette maps every Style to its color attributes.
var palette = map[Style][]color.Attribute{
	StylePlain:   nil,
	StyleHeader:  {color.Bold},
	StyleOK:      {color.FgGreen, color.Bold},
	StyleFail:    {color.FgRed, color.Bold},
	StyleWarn:    {color.FgYellow},
	StyleRunning: {color.FgCyan},
	StyleMuted:   {color.FgHiBlack},
}

// String returns the token name.
func (s Style) String() string {
	switch s {
	case StyleHeader:
		return "header"
	case StyleOK:
		return "ok"
	case StyleFail:
		return "fail"
	case StyleWarn:
		return "warn"
	case StyleRunning:
		return "running"
	case StyleMuted:
		return "muted"
	default:
		return "plain"
	}
}

// Sprint renders text in style s, or returns it untouched when enabled is false.
func (s Style) Sprint(enabled bool, text string) string {
	attrs := palette[s]
	if !enabled || len(attrs) == 0 {
		return text
	}
	c := color.New(attrs...)
	// Color decisions are made by the caller, not by fatih/color's global TTY check.
	c.EnableColor()
	return c.Sprint(text)
}

// ColorMode is the user's color preference.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// UseColor decides whether output to w should be colorized.
// Auto mode colors only real terminals and honors NO_COLOR.
func UseColor(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}

	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
