package tui

import "github.com/charmbracelet/lipgloss"

// One Dark Pro color palette
var (
	// Background colors
	ColorBgPrimary   = lipgloss.Color("#282C34")
	ColorBgHighlight = lipgloss.Color("#2C313C")

	// Foreground colors
	ColorFgPrimary   = lipgloss.Color("#ABB2BF")
	ColorFgSecondary = lipgloss.Color("#828997")
	ColorFgMuted     = lipgloss.Color("#636B78")
	ColorFgComment   = lipgloss.Color("#5C6370")

	// Syntax colors
	ColorRed     = lipgloss.Color("#E06C75")
	ColorGreen   = lipgloss.Color("#98C379")
	ColorYellow  = lipgloss.Color("#E5C07B")
	ColorBlue    = lipgloss.Color("#61AFEF")
	ColorMagenta = lipgloss.Color("#C678DD")
	ColorCyan    = lipgloss.Color("#56B6C2")
	ColorOrange  = lipgloss.Color("#D19A66")

	// UI colors
	ColorBorder = lipgloss.Color("#3F4451")
)

// Component styles
var (
	// Header style
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true).
			PaddingLeft(1)

	// Panel styles
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2)

	PanelTitleStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta).
			Bold(true)

	// Form styles
	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorFgSecondary).
			Width(18)

	FocusedLabelStyle = lipgloss.NewStyle().
				Foreground(ColorBlue).
				Bold(true).
				Width(18)

	InputPromptStyle = lipgloss.NewStyle().
				Foreground(ColorGreen)

	// Todo list styles
	TodoStyle = lipgloss.NewStyle().
			Foreground(ColorFgPrimary)

	TodoSelectedStyle = lipgloss.NewStyle().
				Foreground(ColorFgPrimary).
				Background(ColorBgHighlight).
				Bold(true)

	TodoDoneStyle = lipgloss.NewStyle().
			Foreground(ColorFgComment).
			Strikethrough(true)

	PriorityLowStyle = lipgloss.NewStyle().
				Foreground(ColorCyan)

	PriorityModerateStyle = lipgloss.NewStyle().
				Foreground(ColorOrange)

	PriorityExtremeStyle = lipgloss.NewStyle().
				Foreground(ColorRed).
				Bold(true)

	// Status bar styles
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted).
			PaddingLeft(1).
			PaddingRight(1)

	StatusActiveStyle = lipgloss.NewStyle().
				Foreground(ColorGreen).
				Bold(true)

	StatusIdleStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted)

	// Tab styles for the route bar
	TabStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted).
			Padding(0, 1)

	TabActiveStyle = lipgloss.NewStyle().
			Foreground(ColorBgPrimary).
			Background(ColorBlue).
			Bold(true).
			Padding(0, 1)

	// Help overlay styles
	HelpStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2)

	HelpTitleStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	// Error styles
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	// Success styles
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	// Warning styles
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	// Dimmed/info style for less important messages
	DimStyle = lipgloss.NewStyle().
			Foreground(ColorFgComment)
)
