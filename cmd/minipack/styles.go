// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Color palette shared by all CLI output.
const (
	// ColorPrimary is purple - used for titles and headers.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is gray - used for subtitles and de-emphasized content.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorSuccess is green - used for completed builds.
	ColorSuccess = lipgloss.Color("#10B981")

	// ColorError is red - used for errors and error-severity diagnostics.
	ColorError = lipgloss.Color("#EF4444")

	// ColorWarning is amber - used for warnings such as import cycles.
	ColorWarning = lipgloss.Color("#F59E0B")

	// ColorHighlight is blue - used for paths and commands.
	ColorHighlight = lipgloss.Color("#3B82F6")
)

var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for error messages and failure indicators.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// PathStyle is for file paths and command names.
	PathStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	// tableHeaderStyle is for the header row of the module table.
	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorPrimary).
				Padding(0, 1)

	// tableCellStyle pads module table cells.
	tableCellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	// tableBorderStyle colors the module table border.
	tableBorderStyle = lipgloss.NewStyle().
				Foreground(ColorMuted)
)
