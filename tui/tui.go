package tui

import (
	"github.com/DachengChen/progression/chat"
	tea "github.com/charmbracelet/bubbletea"
)

// Start launches the terminal chat for one session and blocks until the
// user quits.
func Start(ctrl *chat.Controller, providerName string) error {
	app := NewApp(ctrl, Options{ProviderName: providerName})
	p := tea.NewProgram(app, tea.WithAltScreen())

	_, err := p.Run()
	return err
}
