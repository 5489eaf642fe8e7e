// Package render turns chat turns into something a surface can show.
//
// Transcript is the pure step shared by both surfaces; Terminal and HTML
// style its units for the terminal UI and the web UI respectively. Every
// state change re-renders the whole transcript.
package render

import "github.com/DachengChen/progression/chat"

// Unit is one displayed message.
type Unit struct {
	Role  chat.Role
	Label string
	Text  string
}

// Transcript maps turns to display units one to one, in order.
func Transcript(turns []chat.Turn) []Unit {
	units := make([]Unit, len(turns))
	for i, t := range turns {
		units[i] = Unit{Role: t.Role, Label: t.Role.Label(), Text: t.Text}
	}
	return units
}
