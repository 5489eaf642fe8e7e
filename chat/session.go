package chat

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrNoThread is returned by AppendTurn when no thread is current.
	ErrNoThread = errors.New("no active thread")
	// ErrUnknownThread is returned by Select for an id not in the session.
	ErrUnknownThread = errors.New("unknown thread")
)

// Session is one user's thread list plus the index of the current thread.
// All methods are safe for concurrent use.
type Session struct {
	ID string

	mu       sync.RWMutex
	threads  []*Thread
	current  int // -1 when no thread is current
	lastSeen time.Time
}

// NewSession creates an empty session with no current thread.
func NewSession(id string) *Session {
	return &Session{ID: id, current: -1, lastSeen: time.Now()}
}

// EnsureThread makes sure a thread is current, creating one named after
// first when needed. It returns the current thread's id.
func (s *Session) EnsureThread(first string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureThreadLocked(first)
}

func (s *Session) ensureThreadLocked(first string) string {
	if s.current < 0 {
		s.threads = append(s.threads, newThread(first))
		s.current = len(s.threads) - 1
	}
	return s.threads[s.current].ID
}

// AppendTurn appends a turn to the current thread.
func (s *Session) AppendTurn(role Role, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendTurnLocked(role, text)
}

func (s *Session) appendTurnLocked(role Role, text string) error {
	if s.current < 0 {
		return ErrNoThread
	}
	t := s.threads[s.current]
	t.Messages = append(t.Messages, Turn{Role: role, Text: text})
	return nil
}

// NewChat clears the current thread so the next message opens a new one.
func (s *Session) NewChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = -1
}

// Select makes the thread with the given id current.
func (s *Session) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.threads {
		if t.ID == id {
			s.current = i
			return nil
		}
	}
	return ErrUnknownThread
}

// Current returns a copy of the current thread, or false when none is current.
func (s *Session) Current() (Thread, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current < 0 {
		return Thread{}, false
	}
	return copyThread(s.threads[s.current]), true
}

// Messages returns a copy of the current thread's turns (nil when no thread is current).
func (s *Session) Messages() []Turn {
	t, ok := s.Current()
	if !ok {
		return nil
	}
	return t.Messages
}

// Threads returns copies of all threads, oldest first.
func (s *Session) Threads() []Thread {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Thread, len(s.threads))
	for i, t := range s.threads {
		out[i] = copyThread(t)
	}
	return out
}

// CurrentIndex returns the index of the current thread, or -1.
func (s *Session) CurrentIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// beginTurn opens a thread if needed, snapshots the user history that
// precedes text and appends text as a user turn, all under one lock.
func (s *Session) beginTurn(text string) (threadID string, history []Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	threadID = s.ensureThreadLocked(text)
	history = UserHistory(s.threads[s.current].Messages)
	_ = s.appendTurnLocked(RoleUser, text)
	return threadID, history
}

// appendTo appends a turn to the thread with the given id, current or not.
func (s *Session) appendTo(threadID string, role Role, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.threads {
		if t.ID == threadID {
			t.Messages = append(t.Messages, Turn{Role: role, Text: text})
			return nil
		}
	}
	return ErrUnknownThread
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return now.Sub(s.lastSeen)
}

func copyThread(t *Thread) Thread {
	msgs := make([]Turn, len(t.Messages))
	copy(msgs, t.Messages)
	return Thread{ID: t.ID, Name: t.Name, Messages: msgs}
}

// UserHistory filters turns down to the user's own messages, in order.
// Assistant replies are not part of the conversation history sent to
// the warehouse.
func UserHistory(turns []Turn) []Turn {
	var out []Turn
	for _, t := range turns {
		if t.Role == RoleUser {
			out = append(out, t)
		}
	}
	return out
}
