package ui

import "fmt"

// ANSI256 codes for the three roles td output distinguishes: section
// headers, command names, and de-emphasized metadata.
const (
	colorAccent = 74  // blue, section headers
	colorCmd    = 250 // light gray, command names
	colorMuted  = 245 // medium gray, flag types and defaults
)

var noColor bool

func render(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent returns s in the accent color.
func RenderAccent(s string) string { return render(colorAccent, s) }

// RenderCommand returns s styled as a command name.
func RenderCommand(s string) string { return render(colorCmd, s) }

// RenderMuted returns s de-emphasized.
func RenderMuted(s string) string { return render(colorMuted, s) }

// ForceNoColor disables color output globally (the --no-color flag).
func ForceNoColor() {
	noColor = true
}
