// app.go is the top-level Bubble Tea model.
//
// Layout: a header line, a bordered frame holding the thread sidebar and
// the chat pane, and a status bar with key help. All chat state lives in
// the controller's session; the app only routes keys and re-renders.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/DachengChen/progression/chat"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const appVersion = "0.1.0"

const sidebarWidth = 36

// KeyBinding describes a keyboard shortcut for the help bar.
type KeyBinding struct {
	Key  string
	Desc string
}

// Options configure the app's presentation.
type Options struct {
	ProviderName string
	// MarkdownStyle is a glamour standard style name; empty means "dark".
	MarkdownStyle string
}

// App is the root Bubble Tea model.
type App struct {
	ctrl     *chat.Controller
	opts     Options
	chatView *ChatView
	threads  *ThreadList

	width     int
	height    int
	statusMsg string
}

// NewApp creates the application for one session.
func NewApp(ctrl *chat.Controller, opts Options) *App {
	return &App{
		ctrl:     ctrl,
		opts:     opts,
		chatView: NewChatView(ctrl, opts.MarkdownStyle),
		threads:  NewThreadList(ctrl.Session()),
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return a.chatView.Init()
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Header(1) + Status(1) + Borders(2) = 4 lines chrome
		contentH := a.height - 4
		contentW := a.width - 2
		side := sidebarWidth
		if contentW < 3*side {
			side = contentW / 3
		}
		a.threads.SetSize(side, contentH)
		a.chatView.SetSize(contentW-side, contentH)
		return a, nil

	case StatusMsg:
		a.statusMsg = string(msg)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, a.chatView.Update(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.statusMsg = ""
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "ctrl+n":
		if err := a.ctrl.NewChat(); err != nil {
			a.setStatusErr(err)
		}
		a.chatView.refresh()
		return a, nil
	case "ctrl+p":
		return a, a.step(-1)
	case "ctrl+o":
		return a, a.step(1)
	}
	return a, a.chatView.Update(msg)
}

// step switches to the neighboring thread.
func (a *App) step(offset int) tea.Cmd {
	id, ok := a.threads.Neighbor(offset)
	if !ok {
		return nil
	}
	if err := a.ctrl.Select(id); err != nil {
		a.setStatusErr(err)
		return nil
	}
	a.chatView.refresh()
	a.chatView.viewport.End()
	return nil
}

func (a *App) setStatusErr(err error) {
	if errors.Is(err, chat.ErrBusy) {
		a.statusMsg = StyleError.Render("wait for the current answer first")
		return
	}
	a.statusMsg = StyleError.Render(err.Error())
}

// View implements tea.Model.
func (a *App) View() string {
	if a.width == 0 {
		return "loading..."
	}

	header := a.renderHeader()

	frameHeight := a.height - 4
	if frameHeight < 0 {
		frameHeight = 0
	}
	inner := lipgloss.JoinHorizontal(lipgloss.Top, a.threads.View(), a.chatView.View())
	frame := StyleBorder.
		Width(a.width - 2).
		Height(frameHeight).
		Render(inner)

	return header + "\n" + frame + "\n" + a.renderStatusBar()
}

// renderHeader draws the title, version and provider.
func (a *App) renderHeader() string {
	left := StyleBold.Render("🩺 Disease Progression Assistant") + StyleDimmed.Render(" v"+appVersion)
	if a.opts.ProviderName != "" {
		left += StyleSuccess.Render("  ⚡ " + a.opts.ProviderName)
	}

	right := StyleDimmed.Render(fmt.Sprintf("%d×%d", a.width, a.height))
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Width(a.width).
		Render(left + strings.Repeat(" ", gap) + right)
}

func (a *App) renderStatusBar() string {
	if a.statusMsg != "" {
		return StyleStatusBar.Width(a.width).Render(a.statusMsg)
	}

	items := append(a.chatView.ShortHelp(), KeyBinding{Key: "Ctrl+C", Desc: "quit"})
	parts := make([]string, 0, len(items))
	for _, h := range items {
		parts = append(parts, StyleHelpKey.Render(h.Key)+" "+StyleHelpDesc.Render(h.Desc))
	}
	return StyleStatusBar.Width(a.width).Render(strings.Join(parts, "  │  "))
}
