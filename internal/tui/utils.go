package tui

import (
	"os"

	"github.com/charmbracelet/x/term"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

// current terminal size, or a sane default when stdout is not a terminal
func terminalSize() (int, int) {
	if !term.IsTerminal(os.Stdout.Fd()) {
		return defaultWidth, defaultHeight
	}

	w, h, err := term.GetSize(os.Stdout.Fd())
	if err != nil || w == 0 {
		return defaultWidth, defaultHeight
	}

	return w, h
}
