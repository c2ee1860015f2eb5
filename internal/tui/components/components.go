// Package components renders the bars framing every record browser
// screen. They are plain render helpers, not tea.Models.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"nathanbeddoewebdev/dnsctl/internal/tui/styles"
)

// KeyBinding is one footer hint.
type KeyBinding struct {
	Key  string
	Desc string
}

// Header renders the top bar: breadcrumb on the left, provider on the right.
func Header(width int, breadcrumb, provider string) string {
	if width < 10 {
		return ""
	}

	left := styles.Title.Foreground(styles.Blue).Render("dnsctl")
	if breadcrumb != "" {
		left += styles.MutedText.Render(" > ") + styles.Title.Render(breadcrumb)
	}
	right := ""
	if provider != "" {
		right = styles.Subtitle.Render(provider)
	}

	gap := max(width-4-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderBottom(true).
		BorderForeground(styles.DimGray).
		Render(left + strings.Repeat(" ", gap) + right)
}

// Footer renders the key binding hints.
func Footer(width int, bindings []KeyBinding) string {
	if width < 10 || len(bindings) == 0 {
		return ""
	}

	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = styles.FormatKeyBinding(b.Key, b.Desc)
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 2).
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderTop(true).
		BorderForeground(styles.DimGray).
		Render(strings.Join(parts, styles.KeySepStyle.Render("  ")))
}

// StatusBar renders a one-line message above the footer. Empty messages
// render nothing.
func StatusBar(width int, message string, isError bool) string {
	if message == "" {
		return ""
	}
	style := styles.MutedText
	if isError {
		style = styles.ErrorText
	}
	return lipgloss.NewStyle().Width(width).Padding(0, 2).Render(style.Render(message))
}
