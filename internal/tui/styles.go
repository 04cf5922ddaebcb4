package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	colorWhite     = lipgloss.Color("#FFFFFF")
	colorLightGray = lipgloss.Color("#CCCCCC")
	colorGray      = lipgloss.Color("#888888")
	colorDarkGray  = lipgloss.Color("#444444")
	colorTeal      = lipgloss.Color("#14b8a6")
	colorAmber     = lipgloss.Color("#f59e0b")
	colorRed       = lipgloss.Color("#f87171")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorTeal).
			MarginTop(1).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorLightGray).
			MarginBottom(1)

	menuItemStyle = lipgloss.NewStyle().
			Foreground(colorLightGray).
			PaddingLeft(2)

	menuItemSelectedStyle = lipgloss.NewStyle().
				Foreground(colorWhite).
				Bold(true).
				PaddingLeft(1).
				BorderStyle(lipgloss.ThickBorder()).
				BorderLeft(true).
				BorderForeground(colorTeal)

	commandStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)

	commandDescStyle = lipgloss.NewStyle().
				Foreground(colorGray).
				PaddingLeft(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Width(12)

	inputStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(colorLightGray)

	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorDarkGray).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Italic(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(colorAmber)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDarkGray).
			Italic(true).
			MarginTop(1)
)

const logo = `
  ███████╗██████╗     ████████╗███████╗ ██████╗██╗  ██╗
  ██╔════╝██╔══██╗    ╚══██╔══╝██╔════╝██╔════╝██║  ██║
  █████╗  ██║  ██║       ██║   █████╗  ██║     ███████║
  ██╔══╝  ██║  ██║       ██║   ██╔══╝  ██║     ██╔══██║
  ███████╗██████╔╝       ██║   ███████╗╚██████╗██║  ██║
  ╚══════╝╚═════╝        ╚═╝   ╚══════╝ ╚═════╝╚═╝  ╚═╝
`
