package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/charterdesk/charterdesk/internal/version"
)

// Application branding constants
const (
	AppName = "CHARTERDESK"
	Tagline = "yacht charter reservations"
)

// AppVersion returns the application version from the centralized version package
func AppVersion() string {
	return version.Version
}

// Layout constants for responsive terminal width
const (
	MinTerminalWidth  = 72
	MinTerminalHeight = 20
	TileWidth         = 30 // Outer width of a result tile including border
	TileHeight        = 7  // Outer height of a result tile including border
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#1F6FB2") // Harbor blue
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	ErrorColor     = lipgloss.Color("#FF5555") // Red

	TextColor      = lipgloss.Color("#FFFFFF")
	SubtleColor    = lipgloss.Color("#626262")
	BorderColor    = lipgloss.Color("#1F6FB2")
	HighlightColor = lipgloss.Color("#43BF6D")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Width(12)

	FieldErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	// Pane borders, focused and blurred
	FocusedPaneStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(PrimaryColor).
				Padding(0, 1)

	BlurredPaneStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(SubtleColor).
				Padding(0, 1)

	// Result tiles
	TileStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SubtleColor).
			Width(TileWidth-2).
			Height(TileHeight-2).
			Padding(0, 1)

	TileCursorStyle = TileStyle.
			BorderForeground(PrimaryColor).
			BorderStyle(lipgloss.ThickBorder())

	TileSelectedStyle = TileStyle.
				BorderForeground(HighlightColor)

	TileDisabledStyle = TileStyle.
				Foreground(SubtleColor).
				Faint(true)

	TileNameStyle = lipgloss.NewStyle().
			Bold(true)

	AvailableStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)

	UnavailableStyle = lipgloss.NewStyle().
				Foreground(SubtleColor)

	// Search button
	ButtonStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(PrimaryColor).
			Padding(0, 2)

	DisabledButtonStyle = lipgloss.NewStyle().
				Foreground(SubtleColor).
				Background(lipgloss.Color("236")).
				Padding(0, 2)

	// Banners
	SuccessBannerStyle = lipgloss.NewStyle().
				Foreground(SecondaryColor).
				Bold(true).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(SecondaryColor).
				Padding(0, 1)

	WarningBannerStyle = lipgloss.NewStyle().
				Foreground(WarningColor).
				Bold(true).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(WarningColor).
				Padding(0, 1)

	ErrorBannerStyle = lipgloss.NewStyle().
				Foreground(ErrorColor).
				Bold(true).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ErrorColor).
				Padding(0, 1)

	StatusOnlineStyle = lipgloss.NewStyle().
				Foreground(SecondaryColor)

	StatusOfflineStyle = lipgloss.NewStyle().
				Foreground(SubtleColor)
)

// BuildHeaderContent creates header content with app name, version and status
func BuildHeaderContent(status string) string {
	left := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render(AppName + " v" + AppVersion())

	right := lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render(Tagline)

	header := lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
	if status != "" {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, "  ", status)
	}
	return header
}

// RenderApplicationContainer wraps a screen with the header, a footer
// carrying help text and an outer border filling the terminal.
func RenderApplicationContainer(content, status, footerText string, terminalWidth, terminalHeight int) string {
	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4). // Leave room for outer border
		Padding(0, 1)

	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4).
		Padding(0, 1)

	inner := lipgloss.JoinVertical(
		lipgloss.Left,
		headerStyle.Render(BuildHeaderContent(status)),
		lipgloss.NewStyle().Width(terminalWidth-4).Render(content),
		footerStyle.Render(lipgloss.NewStyle().Foreground(SubtleColor).Render(footerText)),
	)

	bordered := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(terminalWidth - 2).
		Height(terminalHeight - 2).
		AlignVertical(lipgloss.Top).
		Render(inner)

	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Left, lipgloss.Top, bordered)
}

// paneStyle returns the border style for a pane of the given outer width.
func paneStyle(focused bool, width int) lipgloss.Style {
	style := BlurredPaneStyle
	if focused {
		style = FocusedPaneStyle
	}
	if width > 4 {
		style = style.Width(width - 2)
	}
	return style
}
