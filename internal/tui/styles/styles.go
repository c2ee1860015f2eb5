// Package styles holds the palette and lipgloss styles used by dnsctl's
// tables, prompts and the record browser.
package styles

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var (
	White    = lipgloss.Color("#E2E2E2")
	Gray     = lipgloss.Color("#888888")
	DimGray  = lipgloss.Color("#444444")
	Muted    = lipgloss.Color("#6C6C6C")
	Blue     = lipgloss.Color("#5FAFFF")
	DarkBlue = lipgloss.Color("#1F3A5F")
	Green    = lipgloss.Color("#5FD787")
	Yellow   = lipgloss.Color("#FFD787")
	Red      = lipgloss.Color("#FF8787")
)

var (
	Title       = lipgloss.NewStyle().Bold(true).Foreground(White)
	Subtitle    = lipgloss.NewStyle().Foreground(Gray)
	Label       = lipgloss.NewStyle().Foreground(Gray).Bold(true)
	Value       = lipgloss.NewStyle().Foreground(White)
	MutedText   = lipgloss.NewStyle().Foreground(Muted)
	AccentText  = lipgloss.NewStyle().Foreground(Blue)
	ErrorText   = lipgloss.NewStyle().Foreground(Red).Bold(true)
	SuccessText = lipgloss.NewStyle().Foreground(Green).Bold(true)
)

var (
	TableBorder      = lipgloss.NewStyle().Foreground(DimGray)
	TableHeader      = lipgloss.NewStyle().Bold(true).Foreground(Gray).Padding(0, 1)
	TableCell        = lipgloss.NewStyle().Foreground(White).Padding(0, 1)
	TableSelectedRow = lipgloss.NewStyle().Foreground(White).Background(DarkBlue).Bold(true).Padding(0, 1)
)

// Card is a rounded panel; CardActive marks the focused one.
var (
	Card       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(DimGray).Padding(1, 2)
	CardActive = Card.BorderForeground(Blue)
)

var (
	KeyStyle     = lipgloss.NewStyle().Foreground(Blue).Bold(true)
	KeyDescStyle = lipgloss.NewStyle().Foreground(Muted)
	KeySepStyle  = lipgloss.NewStyle().Foreground(DimGray)
)

// FormatKeyBinding renders one "key desc" hint for a footer.
func FormatKeyBinding(key, desc string) string {
	return KeyStyle.Render(key) + " " + KeyDescStyle.Render(desc)
}

// RecordTypeStyle colours a DNS record type in lists and cards.
func RecordTypeStyle(t string) lipgloss.Style {
	switch t {
	case "A", "AAAA":
		return lipgloss.NewStyle().Foreground(Green)
	case "CNAME":
		return lipgloss.NewStyle().Foreground(Yellow)
	case "MX", "SRV":
		return lipgloss.NewStyle().Foreground(Blue)
	case "TXT":
		return MutedText
	}
	return Value
}

// StatusStyle colours a status cell. Unknown values render gray.
func StatusStyle(status string) lipgloss.Style {
	base := lipgloss.NewStyle()
	switch status {
	case "ok", "logged in", "environment", "success":
		return base.Foreground(Green).Bold(true)
	case "skipped", "partial", "not logged in", "no credentials":
		return base.Foreground(Yellow)
	case "failed", "error":
		return base.Foreground(Red).Bold(true)
	}
	return base.Foreground(Gray)
}

// FormTheme is the huh theme for credential prompts.
func FormTheme() *huh.Theme {
	t := huh.ThemeBase()
	t.Focused.Title = t.Focused.Title.Foreground(Blue).Bold(true)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(Red)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(Red)
	t.Focused.TextInput.Prompt = t.Focused.TextInput.Prompt.Foreground(Blue)
	t.Blurred.Title = t.Blurred.Title.Foreground(Gray)
	return t
}
