package view

import (
	tea "github.com/charmbracelet/bubbletea"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel is embedded by all views. It holds the terminal size, zero
// until the first tea.WindowSizeMsg reaches the view.
type CommonModel struct {
	Width  int
	Height int
}

// SetSize records the terminal size carried by msg.
func (c *CommonModel) SetSize(msg tea.WindowSizeMsg) {
	c.Width, c.Height = msg.Width, msg.Height
}

// BackMsg asks the root model to return to the menu.
type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}
