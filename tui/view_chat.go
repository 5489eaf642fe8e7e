// view_chat.go is the conversation pane.
//
// Submissions go through the turn controller: Begin records the user
// turn immediately, the warehouse call runs as a tea.Cmd, and the
// resulting AnswerMsg is resolved back into the session on the UI
// goroutine.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/DachengChen/progression/chat"
	"github.com/DachengChen/progression/render"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const inputPlaceholder = "Ask about patient progression, treatments, or prognosis..."

// ChatView renders the current thread and owns the input line.
type ChatView struct {
	ctrl     *chat.Controller
	term     *render.Terminal
	viewport *Viewport
	input    textinput.Model
	spinner  spinner.Model
	width    int
	height   int
}

func NewChatView(ctrl *chat.Controller, style string) *ChatView {
	ti := textinput.New()
	ti.Prompt = "❯ "
	ti.Placeholder = inputPlaceholder
	ti.CharLimit = 4096
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = StyleSuccess

	return &ChatView{
		ctrl:     ctrl,
		term:     render.NewTerminal(style, 80),
		viewport: NewViewport(80, 20),
		input:    ti,
		spinner:  sp,
	}
}

func (v *ChatView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.input.Width = width - 4
	v.term.SetWidth(width)
	// banner(2) + input(1) + scroll indicator(1)
	v.viewport.SetSize(width, height-4)
	v.refresh()
}

func (v *ChatView) ShortHelp() []KeyBinding {
	return []KeyBinding{
		{Key: "Enter", Desc: "send"},
		{Key: "Ctrl+N", Desc: "new chat"},
		{Key: "Ctrl+P/O", Desc: "prev/next chat"},
		{Key: "PgUp/PgDn", Desc: "scroll"},
	}
}

func (v *ChatView) Init() tea.Cmd {
	v.refresh()
	return textinput.Blink
}

func (v *ChatView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKey(msg)

	case spinner.TickMsg:
		if v.ctrl.State() != chat.AwaitingReply {
			return nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.refresh()
		return cmd

	case AnswerMsg:
		// The failure, if any, is kept as the controller's LastError.
		_, _ = v.ctrl.Resolve(msg.Pending, msg.Answer, msg.Err)
		v.refresh()
		v.viewport.End()
		return nil
	}
	return nil
}

func (v *ChatView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		ask, err := v.send()
		if err != nil {
			if errors.Is(err, chat.ErrBusy) {
				return statusCmd("still waiting for the previous answer")
			}
			return nil
		}
		return tea.Batch(ask, v.spinner.Tick)
	case "pgup":
		v.viewport.PageUp()
		return nil
	case "pgdown":
		v.viewport.PageDown()
		return nil
	case "esc":
		v.ctrl.DismissError()
		v.refresh()
		return nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return cmd
}

// send begins a turn for the input text and returns the command that
// performs the outbound call.
func (v *ChatView) send() (tea.Cmd, error) {
	p, err := v.ctrl.Begin(v.input.Value())
	if err != nil {
		return nil, err
	}
	v.input.SetValue("")
	v.refresh()
	v.viewport.End()

	ctrl := v.ctrl
	return func() tea.Msg {
		answer, err := ctrl.Ask(context.Background(), p)
		return AnswerMsg{Pending: p, Answer: answer, Err: err}
	}, nil
}

// refresh re-renders the transcript from the session.
func (v *ChatView) refresh() {
	lines := v.term.Render(render.Transcript(v.ctrl.Session().Messages()))
	if len(lines) == 0 {
		lines = v.welcome()
	}
	if v.ctrl.State() == chat.AwaitingReply {
		lines = append(lines, v.spinner.View()+StyleDimmed.Render(" Thinking..."))
	}
	v.viewport.SetContentLines(lines)
}

func (v *ChatView) welcome() []string {
	return []string{
		StyleTitle.Render("Disease Progression Assistant"),
		"",
		"Ask about patient progression, treatments, or prognosis.",
		"Answers are grounded in the five most similar patient records.",
		"",
		StyleDimmed.Render("Type your question and press Enter."),
	}
}

func (v *ChatView) View() string {
	banner := ""
	if err := v.ctrl.LastError(); err != nil {
		banner = StyleBanner.Width(v.width - 2).Render("Error: " + err.Error() + StyleDimmed.Render("  (esc to dismiss)"))
	}

	input := v.input.View()
	if v.ctrl.State() == chat.AwaitingReply {
		input = StyleDimmed.Render("❯ waiting for response...")
	}

	parts := []string{v.viewport.Render()}
	if banner != "" {
		parts = append(parts, banner)
	}
	parts = append(parts, input)
	return strings.Join(parts, "\n")
}

func statusCmd(s string) tea.Cmd {
	return func() tea.Msg { return StatusMsg(s) }
}
