// Package chat holds the per-user conversation state and the turn
// controller that moves a user message through one warehouse round trip.
//
// Nothing here is persisted: threads live as long as the session that
// owns them.
package chat

import (
	"strings"
	"unicode/utf8"

	"github.com/lithammer/shortuuid/v4"
)

// Role identifies who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Label returns the capitalized role used in conversation history ("User").
func (r Role) Label() string {
	if r == "" {
		return ""
	}
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}

// Turn is one chat message. Turns are never edited after they are appended.
type Turn struct {
	Role Role
	Text string
}

// Thread is a named, ordered conversation.
type Thread struct {
	ID       string
	Name     string
	Messages []Turn
}

// ThreadNameLimit is the number of characters of the opening message
// kept in a thread name.
const ThreadNameLimit = 30

// ThreadNameSuffix marks a thread name as a prefix of the opening message.
const ThreadNameSuffix = "..."

// NameThread derives a thread name from its opening message.
func NameThread(first string) string {
	first = strings.TrimSpace(first)
	if utf8.RuneCountInString(first) > ThreadNameLimit {
		first = string([]rune(first)[:ThreadNameLimit])
	}
	return first + ThreadNameSuffix
}

func newThread(first string) *Thread {
	return &Thread{
		ID:   shortuuid.New(),
		Name: NameThread(first),
	}
}
