// Package ui provides terminal styling for worklens CLI output.
// Uses an adaptive light/dark palette.
package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Semantic status colors, adaptive to light and dark terminals.
var (
	ColorPass = lipgloss.AdaptiveColor{
		Light: "#2da44e",
		Dark:  "#57d993",
	}
	ColorWarn = lipgloss.AdaptiveColor{
		Light: "#bf8700",
		Dark:  "#e3b341",
	}
	ColorFail = lipgloss.AdaptiveColor{
		Light: "#cf222e",
		Dark:  "#f47067",
	}
	ColorMuted = lipgloss.AdaptiveColor{
		Light: "#6e7781",
		Dark:  "#768390",
	}
	ColorAccent = lipgloss.AdaptiveColor{
		Light: "#0969da",
		Dark:  "#539bf5",
	}
)

// Status styles, consistent across all commands.
var (
	PassStyle   = lipgloss.NewStyle().Foreground(ColorPass)
	WarnStyle   = lipgloss.NewStyle().Foreground(ColorWarn)
	FailStyle   = lipgloss.NewStyle().Foreground(ColorFail)
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	AccentStyle = lipgloss.NewStyle().Foreground(ColorAccent)
)

// TitleStyle for story titles and section headers.
var TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)

// Status icons
const (
	IconPass = "✓"
	IconWarn = "⚠"
	IconFail = "✗"
)

// SeparatorLight divides report sections.
const SeparatorLight = "──────────────────────────────────────────"

// IsTerminal reports whether stdout is attached to a terminal. Styled
// output is suppressed for pipes and redirects.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// RenderPass renders text with pass (green) styling
func RenderPass(s string) string {
	return PassStyle.Render(s)
}

// RenderWarn renders text with warning (yellow) styling
func RenderWarn(s string) string {
	return WarnStyle.Render(s)
}

// RenderFail renders text with fail (red) styling
func RenderFail(s string) string {
	return FailStyle.Render(s)
}

// RenderMuted renders text with muted (gray) styling
func RenderMuted(s string) string {
	return MutedStyle.Render(s)
}

// RenderAccent renders text with accent (blue) styling
func RenderAccent(s string) string {
	return AccentStyle.Render(s)
}

// RenderTitle renders a section header in uppercase with accent color
func RenderTitle(s string) string {
	return TitleStyle.Render(strings.ToUpper(s))
}

// RenderSeparator renders the separator line in muted color
func RenderSeparator() string {
	return MutedStyle.Render(SeparatorLight)
}
