// Package theme holds the colour palettes and shared lipgloss styles.
//
// The active palette is package state: Apply swaps it and rebuilds every
// style, so views always read the current values at render time.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Palette is one complete set of UI colours.
type Palette struct {
	Primary   color.Color
	Secondary color.Color
	Accent    color.Color
	Success   color.Color
	Warning   color.Color
	Caution   color.Color
	Error     color.Color
	Text      color.Color
	TextDim   color.Color
	BgCard    color.Color
	Border    color.Color
}

// Dark is used on dark terminal backgrounds.
var Dark = Palette{
	Primary:   lipgloss.Color("#60A5FA"), // Sky
	Secondary: lipgloss.Color("#2DD4BF"), // Teal
	Accent:    lipgloss.Color("#FBBF24"), // Amber
	Success:   lipgloss.Color("#4ADE80"),
	Warning:   lipgloss.Color("#FACC15"),
	Caution:   lipgloss.Color("#FB923C"),
	Error:     lipgloss.Color("#F87171"),
	Text:      lipgloss.Color("#F1F5F9"),
	TextDim:   lipgloss.Color("#94A3B8"),
	BgCard:    lipgloss.Color("#1E293B"),
	Border:    lipgloss.Color("#334155"),
}

// Light is used on light terminal backgrounds.
var Light = Palette{
	Primary:   lipgloss.Color("#1D4ED8"),
	Secondary: lipgloss.Color("#0F766E"),
	Accent:    lipgloss.Color("#B45309"),
	Success:   lipgloss.Color("#15803D"),
	Warning:   lipgloss.Color("#A16207"),
	Caution:   lipgloss.Color("#C2410C"),
	Error:     lipgloss.Color("#B91C1C"),
	Text:      lipgloss.Color("#0F172A"),
	TextDim:   lipgloss.Color("#64748B"),
	BgCard:    lipgloss.Color("#E2E8F0"),
	Border:    lipgloss.Color("#CBD5E1"),
}

// Active colours.
var (
	Primary   color.Color
	Secondary color.Color
	Accent    color.Color
	Success   color.Color
	Warning   color.Color
	Caution   color.Color
	Error     color.Color
	Text      color.Color
	TextDim   color.Color
	BgCard    color.Color
	Border    color.Color
)

// Styles derived from the active palette.
var (
	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Body       lipgloss.Style
	Hint       lipgloss.Style
	Card       lipgloss.Style
	Selected   lipgloss.Style
	Unselected lipgloss.Style

	ProgressFilled lipgloss.Style
	ProgressEmpty  lipgloss.Style
	ButtonActive   lipgloss.Style
	ButtonInactive lipgloss.Style
)

var dark = true

func init() {
	Apply(true)
}

// Apply switches to the dark or light palette.
func Apply(isDark bool) {
	dark = isDark
	p := Light
	if isDark {
		p = Dark
	}

	Primary = p.Primary
	Secondary = p.Secondary
	Accent = p.Accent
	Success = p.Success
	Warning = p.Warning
	Caution = p.Caution
	Error = p.Error
	Text = p.Text
	TextDim = p.TextDim
	BgCard = p.BgCard
	Border = p.Border

	rebuild()
}

// IsDark reports whether the dark palette is active.
func IsDark() bool {
	return dark
}

// Name returns "dark" or "light" for the active palette.
func Name() string {
	if dark {
		return "dark"
	}
	return "light"
}

// BandColor maps an evaluation style tag to its colour.
func BandColor(tag string) color.Color {
	switch tag {
	case "green":
		return Success
	case "yellow":
		return Warning
	case "orange":
		return Caution
	case "red":
		return Error
	default:
		return Text
	}
}

func rebuild() {
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
		Foreground(TextDim).
		Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	Selected = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	Unselected = lipgloss.NewStyle().
		Foreground(Text)

	ProgressFilled = lipgloss.NewStyle().
		Background(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
		Background(Border)

	ButtonActive = lipgloss.NewStyle().
		Background(Primary).
		Foreground(BgCard).
		Bold(true).
		Padding(0, 2)

	ButtonInactive = lipgloss.NewStyle().
		Foreground(TextDim).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 2)
}
