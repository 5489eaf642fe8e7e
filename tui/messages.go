// messages.go defines Bubble Tea messages used for async communication.
//
// The warehouse round trip runs inside a tea.Cmd and reports back with
// AnswerMsg, so the UI never blocks on the network.
package tui

import "github.com/DachengChen/progression/chat"

// AnswerMsg is sent when the outbound call for a pending turn completes.
type AnswerMsg struct {
	Pending *chat.Pending
	Answer  string
	Err     error
}

// StatusMsg is a transient status message for the status bar.
type StatusMsg string
