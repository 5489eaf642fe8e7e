package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Simple palette inspired by standard terminal dark themes
var (
	ColorPrimary   = lipgloss.Color("255") // White
	ColorSecondary = lipgloss.Color("240") // Dark Gray
	ColorAccent    = lipgloss.Color("39")  // Blue / Cyan
	ColorSuccess   = lipgloss.Color("42")  // Green
	ColorError     = lipgloss.Color("196") // Red
	ColorDim       = lipgloss.Color("240") // Dimmed text

	ColorHighlightBg = lipgloss.Color("236") // active sidebar entry
)

var (
	StyleDimmed = lipgloss.NewStyle().Foreground(ColorDim)
	StyleBold   = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSecondary)

	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)

	// Error banner above the input
	StyleBanner = lipgloss.NewStyle().
			Foreground(ColorError).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(ColorError).
			PaddingLeft(1)

	// Sidebar
	StyleThreadActive = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Background(ColorHighlightBg).
				Bold(true)

	StyleThreadInactive = lipgloss.NewStyle().
				Foreground(ColorPrimary)

	StyleSidebar = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(ColorSecondary).
			PaddingRight(1)

	StyleStatusBar = lipgloss.NewStyle().
			Foreground(ColorSecondary)

	StyleHelpKey = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	StyleHelpDesc = lipgloss.NewStyle().
			Foreground(ColorDim)
)
